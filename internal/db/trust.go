package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/civitashq/trustengine/internal/models"
)

// The trust calculator only reads and writes user counters. All
// functions here are safe to call repeatedly from different review
// paths; the score itself is always recomputed from scratch.

func bumpUserCounter(ctx context.Context, db DBTX, userID int, column string) error {
	sql, args, _ := psql.
		Update("users").
		Set(column, sq.Expr(column+" + 1")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	_, err := db.Exec(ctx, sql, args...)
	return err
}

// recomputeTrustScore recalculates the score and the derived
// comment-approval gate from the stored counters.
func recomputeTrustScore(ctx context.Context, db DBTX, userID int) error {
	user, err := getUser(ctx, db, userID)
	if err != nil {
		return err
	}
	score := models.ComputeTrustScore(
		user.TotalFlagsReceived,
		user.ValidFlagsReceived,
		user.ApprovedCommentsCount,
	)
	sql, args, _ := psql.
		Update("users").
		Set("trust_score", score).
		Set("requires_comment_approval", models.RequiresCommentApproval(score)).
		Where(sq.Eq{"id": userID}).
		ToSql()
	_, err = db.Exec(ctx, sql, args...)
	return err
}

// onFlagReceived counts a new flag against the author. The score only
// moves once the flag is validated or dismissed.
func onFlagReceived(ctx context.Context, db DBTX, authorID int) error {
	return bumpUserCounter(ctx, db, authorID, "total_flags_received")
}

// onFlagValidated is invoked when flags against the author's content
// are actioned.
func onFlagValidated(ctx context.Context, db DBTX, authorID int) error {
	if err := bumpUserCounter(ctx, db, authorID, "valid_flags_received"); err != nil {
		return err
	}
	return recomputeTrustScore(ctx, db, authorID)
}

// onFlagDismissed restores the author's standing after flags against
// their content are dismissed.
func onFlagDismissed(ctx context.Context, db DBTX, authorID int) error {
	return recomputeTrustScore(ctx, db, authorID)
}

// onSuccessfulReport credits a reporter whose flag led to content
// removal.
func onSuccessfulReport(ctx context.Context, db DBTX, reporterID int) error {
	return bumpUserCounter(ctx, db, reporterID, "flags_submitted_validated")
}

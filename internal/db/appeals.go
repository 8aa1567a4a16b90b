package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

// SubmitAppeal opens the single allowed appeal against a penalty.
// A penalty that exists but belongs to someone else reads as not
// found, so penalty existence never leaks across users. The unique
// constraint on penalty_id closes the double-submit race.
func (sdb *SharedDB) SubmitAppeal(ctx context.Context, penaltyID, userID int, reason string) (*models.Appeal, error) {
	appeal := &models.Appeal{
		PenaltyID: penaltyID,
		UserID:    userID,
		Reason:    reason,
		Status:    models.AppealStatusPending,
	}
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		penalty := &models.UserPenalty{}
		sql, args, _ := psql.
			Select("*").
			From("user_penalties").
			Where(sq.Eq{"id": penaltyID, "user_id": userID}).
			Suffix("FOR UPDATE").
			ToSql()
		err := pgxscan.Get(ctx, tx, penalty, sql, args...)
		if pgxscan.NotFound(err) {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		var exists bool
		err = pgxscan.Get(ctx, tx, &exists,
			"SELECT exists(SELECT 1 FROM appeals WHERE penalty_id = $1)", penaltyID)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrAppealAlreadyExists
		}

		if !models.CanAppeal(penalty) {
			return models.ErrCannotAppeal
		}

		sql, args, _ = psql.
			Insert("appeals").
			Columns("penalty_id", "user_id", "reason").
			Values(penaltyID, userID, reason).
			Suffix("RETURNING id, created_at").
			ToSql()
		row := tx.QueryRow(ctx, sql, args...)
		err = row.Scan(&appeal.ID, &appeal.CreatedAt)
		if isUniqueViolation(err, "appeals_penalty_id_key") {
			return models.ErrAppealAlreadyExists
		}
		if err != nil {
			return err
		}

		// The penalty stays substantively in force while appealed.
		return setPenaltyStatus(ctx, tx, penaltyID, models.PenaltyStatusAppealed)
	})
	if err != nil {
		return nil, err
	}
	return appeal, nil
}

// ReviewAppeal resolves a pending appeal exactly once. A second
// review attempt reads as not found, which keeps the operation safe
// against double submission. Approval revokes the bound penalty,
// rejection puts it back in force. A penalty no longer under appeal
// (revoked directly in the meantime) is left untouched.
func (sdb *SharedDB) ReviewAppeal(ctx context.Context, appealID, reviewerID int, action models.AppealReviewAction, notes *string) (*models.Appeal, error) {
	if !action.Valid() {
		return nil, models.ErrInvalidFormat
	}
	appeal := &models.Appeal{}
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.
			Select("*").
			From("appeals").
			Where(sq.Eq{"id": appealID, "status": models.AppealStatusPending}).
			Suffix("FOR UPDATE").
			ToSql()
		err := pgxscan.Get(ctx, tx, appeal, sql, args...)
		if pgxscan.NotFound(err) {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		status := models.AppealStatusRejected
		if action == models.AppealReviewApprove {
			status = models.AppealStatusApproved
		}
		now := time.Now()
		sql, args, _ = psql.
			Update("appeals").
			Set("status", status).
			Set("reviewed_at", now).
			Set("reviewed_by", reviewerID).
			Set("review_notes", notes).
			Where(sq.Eq{"id": appealID}).
			ToSql()
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		appeal.Status = status
		appeal.ReviewedAt = &now
		appeal.ReviewedBy = &reviewerID
		appeal.ReviewNotes = notes

		penalty, err := getPenaltyForUpdate(ctx, tx, appeal.PenaltyID)
		if err != nil {
			return err
		}
		// A penalty revoked directly while under appeal stays revoked
		// with its original audit trail; the verdict only settles the
		// appeal itself.
		if penalty.Status != models.PenaltyStatusAppealed {
			return nil
		}
		if action == models.AppealReviewApprove {
			return revokePenalty(ctx, tx, penalty, reviewerID, "appeal approved")
		}
		return setPenaltyStatus(ctx, tx, appeal.PenaltyID, models.PenaltyStatusActive)
	})
	if err != nil {
		return nil, err
	}
	metrics.AppealsReviewed.WithLabelValues(string(action)).Inc()
	return appeal, nil
}

func (sdb *SharedDB) ListUserAppeals(ctx context.Context, userID int) ([]models.Appeal, error) {
	appeals := []models.Appeal{}
	sql, args, _ := psql.
		Select("*").
		From("appeals").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		ToSql()
	err := pgxscan.Select(ctx, sdb.db, &appeals, sql, args...)
	if err != nil {
		return nil, err
	}
	return appeals, nil
}

// PendingAppeals feeds the admin queue, oldest first, with penalty and
// user context attached.
func (sdb *SharedDB) PendingAppeals(ctx context.Context, page models.Page) ([]models.AppealView, int, error) {
	total := 0
	sql, args, _ := psql.
		Select("COUNT(*)").
		From("appeals").
		Where(sq.Eq{"status": models.AppealStatusPending}).
		ToSql()
	row := sdb.db.QueryRow(ctx, sql, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	appeals := []models.AppealView{}
	sql, args, _ = psql.
		Select(
			"appeals.id", "appeals.penalty_id", "appeals.user_id",
			"appeals.reason", "appeals.status", "appeals.created_at",
			"users.name AS user_name",
			"user_penalties.penalty_type",
			"user_penalties.reason AS penalty_reason",
		).
		From("appeals").
		Join("users ON users.id = appeals.user_id").
		Join("user_penalties ON user_penalties.id = appeals.penalty_id").
		Where(sq.Eq{"appeals.status": models.AppealStatusPending}).
		OrderBy("appeals.id").
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset())).
		ToSql()
	err := pgxscan.Select(ctx, sdb.db, &appeals, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return appeals, total, nil
}

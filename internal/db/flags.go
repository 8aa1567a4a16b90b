package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

type FlagSubmission struct {
	ContentType models.ContentType
	ContentID   int
	ReporterID  int
	Reason      models.FlagReason
	Details     *string
}

// SubmitFlag records one report against a content item. Deduplication
// relies on the (content_type, content_id, reporter_id) unique
// constraint, so two concurrent submissions cannot both succeed. The
// flag insert, the author counter bump and the visibility recompute
// share one transaction.
func (sdb *SharedDB) SubmitFlag(ctx context.Context, sub FlagSubmission) (*models.ContentFlag, error) {
	if !sub.ContentType.Valid() || !sub.Reason.Valid() {
		return nil, models.ErrInvalidFormat
	}
	store, err := sdb.content.For(sub.ContentType)
	if err != nil {
		return nil, err
	}

	flag := &models.ContentFlag{
		ContentType: sub.ContentType,
		ContentID:   sub.ContentID,
		ReporterID:  sub.ReporterID,
		Reason:      sub.Reason,
		Details:     sub.Details,
		Status:      models.FlagStatusPending,
	}
	err = execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		authorID, err := store.GetAuthor(ctx, tx, sub.ContentID)
		if err != nil {
			return err
		}
		if authorID == sub.ReporterID {
			return models.ErrSelfFlag
		}

		sql, args, _ := psql.
			Insert("flags").
			Columns("content_type", "content_id", "reporter_id", "reason", "details").
			Values(sub.ContentType, sub.ContentID, sub.ReporterID, sub.Reason, sub.Details).
			Suffix("RETURNING id, created_at").
			ToSql()

		row := tx.QueryRow(ctx, sql, args...)
		err = row.Scan(&flag.ID, &flag.CreatedAt)
		if isUniqueViolation(err, "flags_reporter_content_key") {
			return models.ErrDuplicateFlag
		}
		if err != nil {
			return err
		}

		// Content lock before the author-row update, matching the
		// review path's lock order.
		if err := sdb.recomputeVisibility(ctx, tx, sub.ContentType, sub.ContentID); err != nil {
			return err
		}
		return onFlagReceived(ctx, tx, authorID)
	})
	if err != nil {
		return nil, err
	}
	metrics.FlagsSubmitted.WithLabelValues(string(sub.Reason)).Inc()
	return flag, nil
}

// RetractFlag deletes a reporter's own pending flag. Flags belonging
// to someone else are indistinguishable from missing ones.
func (sdb *SharedDB) RetractFlag(ctx context.Context, flagID, requesterID int) error {
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		flag := &models.ContentFlag{}
		sql, args, _ := psql.
			Select("id", "content_type", "content_id", "reporter_id", "status").
			From("flags").
			Where(sq.Eq{"id": flagID, "reporter_id": requesterID}).
			Suffix("FOR UPDATE").
			ToSql()

		err := pgxscan.Get(ctx, tx, flag, sql, args...)
		if pgxscan.NotFound(err) {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}
		if flag.Status != models.FlagStatusPending {
			return models.ErrAlreadyReviewed
		}

		sql, args, _ = psql.Delete("flags").Where(sq.Eq{"id": flagID}).ToSql()
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		return sdb.recomputeVisibility(ctx, tx, flag.ContentType, flag.ContentID)
	})
	if err != nil {
		return err
	}
	metrics.FlagsRetracted.Inc()
	return nil
}

// reviewFlags locks the batch, checks it is pending and references a
// single content item, and stamps the verdict. Content and penalty
// side effects belong to the orchestrator.
func reviewFlags(ctx context.Context, tx DBTX, flagIDs []int, action models.ReviewAction, reviewerID int, notes *string) ([]models.ContentFlag, error) {
	if len(flagIDs) == 0 {
		return nil, models.ErrInvalidFormat
	}

	var flags []models.ContentFlag
	sql, args, _ := psql.
		Select("id", "content_type", "content_id", "reporter_id", "reason", "status").
		From("flags").
		Where(sq.Eq{"id": flagIDs}).
		Suffix("FOR UPDATE").
		ToSql()
	err := pgxscan.Select(ctx, tx, &flags, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(flags) != len(flagIDs) {
		return nil, models.ErrNotFound
	}
	for _, f := range flags {
		if f.Status != models.FlagStatusPending {
			return nil, models.ErrAlreadyReviewed
		}
		if f.ContentType != flags[0].ContentType || f.ContentID != flags[0].ContentID {
			return nil, models.ErrMixedReviewBatch
		}
	}

	status := models.FlagStatusDismissed
	if action == models.ReviewActionAction {
		status = models.FlagStatusActioned
	}
	now := time.Now()
	sql, args, _ = psql.
		Update("flags").
		Set("status", status).
		Set("reviewed_at", now).
		Set("reviewed_by", reviewerID).
		Set("review_notes", notes).
		Where(sq.Eq{"id": flagIDs}).
		ToSql()
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}
	for i := range flags {
		flags[i].Status = status
		flags[i].ReviewedAt = &now
		flags[i].ReviewedBy = &reviewerID
		flags[i].ReviewNotes = notes
	}
	return flags, nil
}

func pendingFlagCount(ctx context.Context, db DBTX, contentType models.ContentType, contentID int) (int, error) {
	sql, args, _ := psql.
		Select("COUNT(*)").
		From("flags").
		Where(sq.Eq{
			"content_type": contentType,
			"content_id":   contentID,
			"status":       models.FlagStatusPending,
		}).
		ToSql()

	count := 0
	row := db.QueryRow(ctx, sql, args...)
	err := row.Scan(&count)
	return count, err
}

// PendingFlagCount is the read-only aggregate the auto-hide policy
// derives visibility from.
func (sdb *SharedDB) PendingFlagCount(ctx context.Context, contentType models.ContentType, contentID int) (int, error) {
	return pendingFlagCount(ctx, sdb.db, contentType, contentID)
}

func flagsForContent(ctx context.Context, db DBTX, contentType models.ContentType, contentID int) ([]models.FlagWithReporter, error) {
	flags := []models.FlagWithReporter{}
	sql, args, _ := psql.
		Select(
			"flags.id", "flags.content_type", "flags.content_id",
			"flags.reporter_id", "flags.reason", "flags.details",
			"flags.status", "flags.created_at",
			"users.name AS reporter_name",
		).
		From("flags").
		Join("users ON users.id = flags.reporter_id").
		Where(sq.Eq{
			"flags.content_type": contentType,
			"flags.content_id":   contentID,
			"flags.status":       models.FlagStatusPending,
		}).
		OrderBy("flags.id").
		ToSql()

	err := pgxscan.Select(ctx, db, &flags, sql, args...)
	if err != nil {
		return nil, err
	}
	return flags, nil
}

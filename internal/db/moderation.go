package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

// ModerationH is the facade admins review the flag queue through.
// Obtaining the handle is the permission check; every method on it
// runs as the reviewer it was built for.
type ModerationH struct {
	sdb        *SharedDB
	reviewerID int
}

func (sdb *SharedDB) GetModerationH(ctx context.Context, uH UserH) (*ModerationH, error) {
	if !uH.isAdmin() {
		return nil, models.ErrPermDenied
	}
	return &ModerationH{sdb: sdb, reviewerID: uH.id}, nil
}

func (h *ModerationH) ReviewerID() int {
	return h.reviewerID
}

// Queue groups pending flags by content item, ordered by pending
// count descending, and attaches a content preview plus the
// flags-with-reporter detail for each group.
func (h *ModerationH) Queue(ctx context.Context, filter models.FlagQueueFilter, page models.Page) (items []models.ModerationQueueItem, total int, err error) {
	where := sq.Eq{"status": models.FlagStatusPending}
	if filter.ContentType != nil {
		where["content_type"] = *filter.ContentType
	}
	if filter.Reason != nil {
		where["reason"] = *filter.Reason
	}

	grouped := psql.
		Select("content_type", "content_id", "COUNT(*) AS pending_count").
		From("flags").
		Where(where).
		GroupBy("content_type", "content_id")

	countSql, countArgs, _ := grouped.
		Prefix("SELECT COUNT(*) FROM (").
		Suffix(") AS grouped").
		ToSql()
	row := h.sdb.db.QueryRow(ctx, countSql, countArgs...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	items = []models.ModerationQueueItem{}
	sql, args, _ := grouped.
		OrderBy("pending_count DESC", "content_id").
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset())).
		ToSql()
	err = pgxscan.Select(ctx, h.sdb.db, &items, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	for i := range items {
		item := &items[i]
		store, err := h.sdb.content.For(item.ContentType)
		if err != nil {
			return nil, 0, err
		}
		preview, err := store.GetPreview(ctx, h.sdb.db, item.ContentID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, 0, err
		}
		item.Preview = preview
		item.Flags, err = flagsForContent(ctx, h.sdb.db, item.ContentType, item.ContentID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Review resolves a batch of pending flags over one content item and
// fans out the side effects: visibility recompute and trust
// restoration on dismiss; soft delete, trust adjustment for author
// and reporters, and an optional penalty on action. Everything runs
// in one transaction.
func (h *ModerationH) Review(ctx context.Context, req models.ReviewRequest) (*models.ReviewSummary, error) {
	if !req.Action.Valid() {
		return nil, models.ErrInvalidFormat
	}
	if len(req.FlagIDs) == 0 || len(req.FlagIDs) > h.sdb.config.MaxReviewBatch {
		return nil, models.ErrInvalidFormat
	}
	if req.IssuePenalty && req.Action != models.ReviewActionAction {
		return nil, models.ErrInvalidFormat
	}

	summary := &models.ReviewSummary{Action: req.Action}
	err := execTx(ctx, h.sdb.db, func(ctx context.Context, tx DBTX) error {
		flags, err := reviewFlags(ctx, tx, req.FlagIDs, req.Action, h.reviewerID, req.Notes)
		if err != nil {
			return err
		}
		contentType := flags[0].ContentType
		contentID := flags[0].ContentID
		summary.ContentType = contentType
		summary.ContentID = contentID
		summary.FlagsReviewed = len(flags)

		store, err := h.sdb.content.For(contentType)
		if err != nil {
			return err
		}

		if req.Action == models.ReviewActionDismiss {
			if err := h.sdb.recomputeVisibility(ctx, tx, contentType, contentID); err != nil {
				return err
			}
			authorID, err := store.GetAuthor(ctx, tx, contentID)
			if errors.Is(err, models.ErrNotFound) {
				// Content vanished; nothing left to restore.
				return nil
			}
			if err != nil {
				return err
			}
			summary.AuthorID = authorID
			return onFlagDismissed(ctx, tx, authorID)
		}

		reason := "content removed after flag review"
		if req.Notes != nil && *req.Notes != "" {
			reason = *req.Notes
		}
		authorID, err := store.SoftDelete(ctx, tx, contentID, h.reviewerID, reason)
		if err != nil {
			return err
		}
		summary.AuthorID = authorID

		if err := onFlagValidated(ctx, tx, authorID); err != nil {
			return err
		}
		seen := map[int]bool{}
		for _, f := range flags {
			if seen[f.ReporterID] {
				continue
			}
			seen[f.ReporterID] = true
			if err := onSuccessfulReport(ctx, tx, f.ReporterID); err != nil {
				return err
			}
		}

		if req.IssuePenalty {
			related := make([]int32, 0, len(flags))
			for _, f := range flags {
				related = append(related, int32(f.ID))
			}
			penalty, err := issuePenalty(ctx, tx, PenaltyRequest{
				UserID:         authorID,
				Type:           req.PenaltyType,
				Reason:         req.PenaltyReason,
				IssuedBy:       h.reviewerID,
				RelatedFlagIDs: related,
			})
			if err != nil {
				return err
			}
			summary.Penalty = penalty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if summary.Penalty != nil {
		metrics.PenaltiesIssued.WithLabelValues(string(summary.Penalty.PenaltyType)).Inc()
	}
	return summary, nil
}

// IssuePenalty is direct admin issuance, outside any flag review.
func (h *ModerationH) IssuePenalty(ctx context.Context, userID int, penaltyType models.PenaltyType, reason string, relatedFlagIDs []int32) (*models.UserPenalty, error) {
	return h.sdb.IssuePenalty(ctx, PenaltyRequest{
		UserID:         userID,
		Type:           penaltyType,
		Reason:         reason,
		IssuedBy:       h.reviewerID,
		RelatedFlagIDs: relatedFlagIDs,
	})
}

func (h *ModerationH) RevokePenalty(ctx context.Context, penaltyID int, reason string) (*models.UserPenalty, error) {
	return h.sdb.RevokePenalty(ctx, penaltyID, h.reviewerID, reason)
}

func (h *ModerationH) ReviewAppeal(ctx context.Context, appealID int, action models.AppealReviewAction, notes *string) (*models.Appeal, error) {
	return h.sdb.ReviewAppeal(ctx, appealID, h.reviewerID, action, notes)
}

package db

import (
	"context"
	"errors"
	"time"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

// recomputeVisibility derives the content's hidden state from its
// current pending-flag count. Crossing the threshold hides, dropping
// back below it un-hides; the transition is fully reversible. Runs
// inside the transaction of whatever flag mutation triggered it.
//
// Content that vanished concurrently is a silent no-op: the recompute
// is best effort and must never fail the triggering transaction.
func (sdb *SharedDB) recomputeVisibility(ctx context.Context, tx DBTX, contentType models.ContentType, contentID int) error {
	store, err := sdb.content.For(contentType)
	if err != nil {
		return err
	}

	// The row lock serializes concurrent recomputes, so the count and
	// the write below always agree.
	err = store.Lock(ctx, tx, contentID)
	if errors.Is(err, models.ErrNotFound) {
		sdb.logger.Debug().
			Str("content_type", string(contentType)).
			Int("content_id", contentID).
			Msg("visibility recompute skipped, content gone")
		return nil
	}
	if err != nil {
		return err
	}

	count, err := pendingFlagCount(ctx, tx, contentType, contentID)
	if err != nil {
		return err
	}

	preview, err := store.GetPreview(ctx, tx, contentID)
	if errors.Is(err, models.ErrNotFound) {
		// Soft deleted; the row is gone from every public read path.
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case count >= FlagThreshold && !preview.IsHidden:
		if err := store.SetHidden(ctx, tx, contentID, true, time.Now()); err != nil {
			return err
		}
		metrics.AutoHideTransitions.WithLabelValues("hide").Inc()
	case count < FlagThreshold && preview.IsHidden:
		if err := store.SetHidden(ctx, tx, contentID, false, time.Time{}); err != nil {
			return err
		}
		metrics.AutoHideTransitions.WithLabelValues("unhide").Inc()
	}
	return store.SetFlagCount(ctx, tx, contentID, count)
}

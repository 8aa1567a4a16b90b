package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

type PenaltyRequest struct {
	UserID         int
	Type           models.PenaltyType
	Reason         string
	IssuedBy       int
	RelatedFlagIDs []int32
}

// IssuePenalty enforces strict escalation: issuance fails while the
// user holds an in-force penalty of equal or higher severity. The
// check and the insert are serialized through a lock on the user row.
func (sdb *SharedDB) IssuePenalty(ctx context.Context, req PenaltyRequest) (*models.UserPenalty, error) {
	var penalty *models.UserPenalty
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		var err error
		penalty, err = issuePenalty(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.PenaltiesIssued.WithLabelValues(string(req.Type)).Inc()
	return penalty, nil
}

func issuePenalty(ctx context.Context, tx DBTX, req PenaltyRequest) (*models.UserPenalty, error) {
	if !req.Type.Valid() {
		return nil, models.ErrInvalidFormat
	}

	// Serializes concurrent escalation checks for this user.
	sql, args, _ := psql.
		Select("id").
		From("users").
		Where(sq.Eq{"id": req.UserID}).
		Suffix("FOR UPDATE").
		ToSql()
	var userID int
	err := pgxscan.Get(ctx, tx, &userID, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	existing, err := penaltiesByStatus(ctx, tx, req.UserID,
		models.PenaltyStatusActive, models.PenaltyStatusAppealed)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range existing {
		p := &existing[i]
		if !p.IsInForce(now) {
			// Lazily expired temp ban: flip the bookkeeping status
			// while we hold the user lock anyway.
			if p.Status == models.PenaltyStatusActive && p.ExpiresAt != nil {
				if err := setPenaltyStatus(ctx, tx, p.ID, models.PenaltyStatusExpired); err != nil {
					return nil, err
				}
			}
			continue
		}
		if p.PenaltyType.Severity() >= req.Type.Severity() {
			return nil, models.ErrUserAlreadyPenalized
		}
	}

	var expiresAt *time.Time
	if d, ok := req.Type.Duration(); ok {
		t := now.Add(d)
		expiresAt = &t
	}
	related := req.RelatedFlagIDs
	if related == nil {
		related = []int32{}
	}

	penalty := &models.UserPenalty{
		UserID:         req.UserID,
		PenaltyType:    req.Type,
		Reason:         req.Reason,
		Status:         models.PenaltyStatusActive,
		IssuedBy:       req.IssuedBy,
		ExpiresAt:      expiresAt,
		RelatedFlagIDs: related,
	}
	sql, args, _ = psql.
		Insert("user_penalties").
		Columns("user_id", "penalty_type", "reason", "issued_by", "expires_at", "related_flag_ids").
		Values(req.UserID, req.Type, req.Reason, req.IssuedBy, expiresAt, related).
		Suffix("RETURNING id, issued_at").
		ToSql()
	row := tx.QueryRow(ctx, sql, args...)
	if err := row.Scan(&penalty.ID, &penalty.IssuedAt); err != nil {
		return nil, err
	}
	return penalty, nil
}

func penaltiesByStatus(ctx context.Context, db DBTX, userID int, statuses ...models.PenaltyStatus) ([]models.UserPenalty, error) {
	var penalties []models.UserPenalty
	sql, args, _ := psql.
		Select("*").
		From("user_penalties").
		Where(sq.Eq{"user_id": userID, "status": statuses}).
		OrderBy("issued_at DESC").
		ToSql()
	err := pgxscan.Select(ctx, db, &penalties, sql, args...)
	if err != nil {
		return nil, err
	}
	return penalties, nil
}

func setPenaltyStatus(ctx context.Context, db DBTX, penaltyID int, status models.PenaltyStatus) error {
	sql, args, _ := psql.
		Update("user_penalties").
		Set("status", status).
		Where(sq.Eq{"id": penaltyID}).
		ToSql()
	_, err := db.Exec(ctx, sql, args...)
	return err
}

// NextPenaltyFor proposes the next escalation step from the user's
// penalty history. Revoked penalties (lifted bans) do not escalate.
// The result is a suggestion: admins may still issue a permanent ban
// directly for a severe single incident.
func (sdb *SharedDB) NextPenaltyFor(ctx context.Context, userID int) (models.PenaltyType, error) {
	var history []models.PenaltyType
	sql, args, _ := psql.
		Select("penalty_type").
		From("user_penalties").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.NotEq{"status": models.PenaltyStatusRevoked}).
		ToSql()
	err := pgxscan.Select(ctx, sdb.db, &history, sql, args...)
	if err != nil {
		return "", err
	}
	return models.NextPenaltyType(history), nil
}

// CheckBanned returns the most severe ban currently in force, or nil.
// Expiry is evaluated lazily against now; warnings never count. The
// session layer calls this on every authentication.
func (sdb *SharedDB) CheckBanned(ctx context.Context, userID int) (*models.UserPenalty, error) {
	penalties, err := penaltiesByStatus(ctx, sdb.db, userID,
		models.PenaltyStatusActive, models.PenaltyStatusAppealed)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var ban *models.UserPenalty
	for i := range penalties {
		p := &penalties[i]
		if !p.PenaltyType.IsBan() || !p.IsInForce(now) {
			continue
		}
		if ban == nil || p.PenaltyType.Severity() > ban.PenaltyType.Severity() {
			ban = p
		}
	}
	return ban, nil
}

func (sdb *SharedDB) RevokePenalty(ctx context.Context, penaltyID, revokedBy int, reason string) (*models.UserPenalty, error) {
	var penalty *models.UserPenalty
	err := execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		p, err := getPenaltyForUpdate(ctx, tx, penaltyID)
		if err != nil {
			return err
		}
		if p.Status == models.PenaltyStatusRevoked {
			return models.ErrCannotRevokePenalty
		}
		if err := revokePenalty(ctx, tx, p, revokedBy, reason); err != nil {
			return err
		}
		penalty = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return penalty, nil
}

func getPenaltyForUpdate(ctx context.Context, tx DBTX, penaltyID int) (*models.UserPenalty, error) {
	penalty := &models.UserPenalty{}
	sql, args, _ := psql.
		Select("*").
		From("user_penalties").
		Where(sq.Eq{"id": penaltyID}).
		Suffix("FOR UPDATE").
		ToSql()
	err := pgxscan.Get(ctx, tx, penalty, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return penalty, nil
}

func revokePenalty(ctx context.Context, db DBTX, p *models.UserPenalty, revokedBy int, reason string) error {
	now := time.Now()
	sql, args, _ := psql.
		Update("user_penalties").
		Set("status", models.PenaltyStatusRevoked).
		Set("revoked_at", now).
		Set("revoked_by", revokedBy).
		Set("revoke_reason", reason).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return err
	}
	p.Status = models.PenaltyStatusRevoked
	p.RevokedAt = &now
	p.RevokedBy = &revokedBy
	p.RevokeReason = &reason
	return nil
}

// ListUserPenalties returns the user's full penalty history, newest
// first.
func (sdb *SharedDB) ListUserPenalties(ctx context.Context, userID int) ([]models.UserPenalty, error) {
	var penalties []models.UserPenalty
	sql, args, _ := psql.
		Select("*").
		From("user_penalties").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("issued_at DESC").
		ToSql()
	err := pgxscan.Select(ctx, sdb.db, &penalties, sql, args...)
	if err != nil {
		return nil, err
	}
	return penalties, nil
}

// ExpirePenaltiesSweep flips lapsed active temp bans to expired. Pure
// bookkeeping: correctness never depends on it running, every read
// path re-checks expires_at itself.
func (sdb *SharedDB) ExpirePenaltiesSweep(ctx context.Context) (int, error) {
	sql, args, _ := psql.
		Update("user_penalties").
		Set("status", models.PenaltyStatusExpired).
		Where(sq.Eq{"status": models.PenaltyStatusActive}).
		Where(sq.Expr("expires_at IS NOT NULL AND expires_at <= now()")).
		ToSql()
	tag, err := sdb.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

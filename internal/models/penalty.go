package models

import "time"

type PenaltyType string

const (
	PenaltyTypeWarning      PenaltyType = "warning"
	PenaltyTypeTempBan24h   PenaltyType = "temp_ban_24h"
	PenaltyTypeTempBan7d    PenaltyType = "temp_ban_7d"
	PenaltyTypePermanentBan PenaltyType = "permanent_ban"
)

// PenaltyLadder orders penalty types by severity. New intermediate
// tiers only need a slot here and in Duration.
var PenaltyLadder = []PenaltyType{
	PenaltyTypeWarning,
	PenaltyTypeTempBan24h,
	PenaltyTypeTempBan7d,
	PenaltyTypePermanentBan,
}

func (t PenaltyType) Valid() bool {
	return t.Severity() > 0
}

func (t PenaltyType) Severity() int {
	for i, v := range PenaltyLadder {
		if t == v {
			return i + 1
		}
	}
	return 0
}

// Duration returns how long a penalty stays in force. ok is false for
// the non-expiring types (warning, permanent ban).
func (t PenaltyType) Duration() (d time.Duration, ok bool) {
	switch t {
	case PenaltyTypeTempBan24h:
		return 24 * time.Hour, true
	case PenaltyTypeTempBan7d:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// IsBan reports whether the penalty type blocks authentication.
// Warnings never count as bans.
func (t PenaltyType) IsBan() bool {
	return t.Valid() && t != PenaltyTypeWarning
}

type PenaltyStatus string

const (
	PenaltyStatusActive   PenaltyStatus = "active"
	PenaltyStatusAppealed PenaltyStatus = "appealed"
	PenaltyStatusRevoked  PenaltyStatus = "revoked"
	PenaltyStatusExpired  PenaltyStatus = "expired"
)

type UserPenalty struct {
	ID          int           `json:"id"`
	UserID      int           `db:"user_id" json:"user_id"`
	PenaltyType PenaltyType   `db:"penalty_type" json:"penalty_type"`
	Reason      string        `json:"reason"`
	Status      PenaltyStatus `json:"status"`
	IssuedBy    int           `db:"issued_by" json:"issued_by"`
	IssuedAt    time.Time     `db:"issued_at" json:"issued_at"`
	ExpiresAt   *time.Time    `db:"expires_at" json:"expires_at,omitempty"`

	RevokedAt    *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	RevokedBy    *int       `db:"revoked_by" json:"revoked_by,omitempty"`
	RevokeReason *string    `db:"revoke_reason" json:"revoke_reason,omitempty"`

	RelatedFlagIDs []int32 `db:"related_flag_ids" json:"related_flag_ids"`
}

// IsInForce evaluates expiry lazily: a temp ban past expires_at is no
// longer in force even while its stored status still says active.
func (p *UserPenalty) IsInForce(now time.Time) bool {
	if p.Status != PenaltyStatusActive && p.Status != PenaltyStatusAppealed {
		return false
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		return false
	}
	return true
}

// CanAppeal reports whether an appeal may be opened against p.
// Warnings are not appealable, and only active penalties qualify.
func CanAppeal(p *UserPenalty) bool {
	return p.Status == PenaltyStatusActive && p.PenaltyType.IsBan()
}

// NextPenaltyType proposes the escalation step following the given
// history: no history means a warning, otherwise one tier above the
// most severe entry. The top of the ladder repeats.
func NextPenaltyType(history []PenaltyType) PenaltyType {
	max := 0
	for _, t := range history {
		if s := t.Severity(); s > max {
			max = s
		}
	}
	for _, t := range PenaltyLadder {
		if t.Severity() > max {
			return t
		}
	}
	return PenaltyLadder[len(PenaltyLadder)-1]
}

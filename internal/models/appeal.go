package models

import "time"

type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)

type AppealReviewAction string

const (
	AppealReviewApprove AppealReviewAction = "approve"
	AppealReviewReject  AppealReviewAction = "reject"
)

func (a AppealReviewAction) Valid() bool {
	return a == AppealReviewApprove || a == AppealReviewReject
}

type Appeal struct {
	ID          int          `json:"id"`
	PenaltyID   int          `db:"penalty_id" json:"penalty_id"`
	UserID      int          `db:"user_id" json:"user_id"`
	Reason      string       `json:"reason"`
	Status      AppealStatus `json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ReviewedAt  *time.Time   `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy  *int         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes *string      `db:"review_notes" json:"review_notes,omitempty"`
}

// AppealView is the admin-queue row: the appeal plus enough penalty
// and user context to judge it without extra lookups.
type AppealView struct {
	Appeal
	UserName      string      `db:"user_name" json:"user_name"`
	PenaltyType   PenaltyType `db:"penalty_type" json:"penalty_type"`
	PenaltyReason string      `db:"penalty_reason" json:"penalty_reason"`
}

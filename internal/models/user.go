package models

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	System bool   `json:"system"`

	TrustScore              int  `db:"trust_score" json:"trust_score"`
	TotalFlagsReceived      int  `db:"total_flags_received" json:"total_flags_received"`
	ValidFlagsReceived      int  `db:"valid_flags_received" json:"valid_flags_received"`
	FlagsSubmittedValidated int  `db:"flags_submitted_validated" json:"flags_submitted_validated"`
	ApprovedCommentsCount   int  `db:"approved_comments_count" json:"approved_comments_count"`
	RequiresCommentApproval bool `db:"requires_comment_approval" json:"requires_comment_approval"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

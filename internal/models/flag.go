package models

import "time"

type FlagReason string

const (
	FlagReasonSpam           FlagReason = "spam"
	FlagReasonHarassment     FlagReason = "harassment"
	FlagReasonHateSpeech     FlagReason = "hate_speech"
	FlagReasonMisinformation FlagReason = "misinformation"
	FlagReasonOther          FlagReason = "other"
)

var AvailableFlagReasons = []FlagReason{
	FlagReasonSpam,
	FlagReasonHarassment,
	FlagReasonHateSpeech,
	FlagReasonMisinformation,
	FlagReasonOther,
}

func (r FlagReason) Valid() bool {
	for _, v := range AvailableFlagReasons {
		if r == v {
			return true
		}
	}
	return false
}

type FlagStatus string

const (
	FlagStatusPending   FlagStatus = "pending"
	FlagStatusDismissed FlagStatus = "dismissed"
	FlagStatusActioned  FlagStatus = "actioned"
)

// ReviewAction is the admin verdict over a batch of pending flags.
type ReviewAction string

const (
	ReviewActionDismiss ReviewAction = "dismiss"
	ReviewActionAction  ReviewAction = "action"
)

func (a ReviewAction) Valid() bool {
	return a == ReviewActionDismiss || a == ReviewActionAction
}

type ContentFlag struct {
	ID          int         `json:"id"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	ContentID   int         `db:"content_id" json:"content_id"`
	ReporterID  int         `db:"reporter_id" json:"reporter_id"`
	Reason      FlagReason  `json:"reason"`
	Details     *string     `json:"details,omitempty"`
	Status      FlagStatus  `json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	ReviewedAt  *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy  *int        `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes *string     `db:"review_notes" json:"review_notes,omitempty"`
}

type FlagWithReporter struct {
	ContentFlag
	ReporterName string `db:"reporter_name" json:"reporter_name"`
}

type FlagQueueFilter struct {
	ContentType *ContentType
	Reason      *FlagReason
}

// Page is a 1-based page request. A zero value means first page with
// the default size.
type Page struct {
	Number int
	Size   int
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return 20
	}
	if p.Size > 100 {
		return 100
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

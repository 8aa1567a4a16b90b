package models

// ModerationQueueItem groups the pending flags of one content item,
// ordered by pending count in the queue query.
type ModerationQueueItem struct {
	ContentType  ContentType        `db:"content_type" json:"content_type"`
	ContentID    int                `db:"content_id" json:"content_id"`
	PendingCount int                `db:"pending_count" json:"pending_count"`
	Preview      *ContentPreview    `json:"preview,omitempty"`
	Flags        []FlagWithReporter `json:"flags"`
}

type ReviewRequest struct {
	FlagIDs []int        `json:"flag_ids"`
	Action  ReviewAction `json:"action"`
	Notes   *string      `json:"notes,omitempty"`

	IssuePenalty  bool        `json:"issue_penalty"`
	PenaltyType   PenaltyType `json:"penalty_type,omitempty"`
	PenaltyReason string      `json:"penalty_reason,omitempty"`
}

type ReviewSummary struct {
	ContentType   ContentType  `json:"content_type"`
	ContentID     int          `json:"content_id"`
	Action        ReviewAction `json:"action"`
	FlagsReviewed int          `json:"flags_reviewed"`
	AuthorID      int          `json:"author_id"`
	Penalty       *UserPenalty `json:"penalty,omitempty"`
}

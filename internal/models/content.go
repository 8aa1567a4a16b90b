package models

import "time"

type ContentType string

const (
	ContentTypeComment ContentType = "comment"
	ContentTypeIdea    ContentType = "idea"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeComment || t == ContentTypeIdea
}

// ContentRef identifies one moderated content item across both tables.
type ContentRef struct {
	Type ContentType `db:"content_type" json:"content_type"`
	ID   int         `db:"content_id" json:"content_id"`
}

type Idea struct {
	ID       int    `json:"id"`
	AuthorID int    `db:"author_id" json:"author_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`

	FlagCount int        `db:"flag_count" json:"flag_count"`
	IsHidden  bool       `db:"is_hidden" json:"is_hidden"`
	HiddenAt  *time.Time `db:"hidden_at" json:"hidden_at,omitempty"`

	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy    *int       `db:"deleted_by" json:"deleted_by,omitempty"`
	DeleteReason *string    `db:"delete_reason" json:"delete_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Comment struct {
	ID       int    `json:"id"`
	IdeaID   int    `db:"idea_id" json:"idea_id"`
	AuthorID int    `db:"author_id" json:"author_id"`
	Body     string `json:"body"`

	FlagCount int        `db:"flag_count" json:"flag_count"`
	IsHidden  bool       `db:"is_hidden" json:"is_hidden"`
	HiddenAt  *time.Time `db:"hidden_at" json:"hidden_at,omitempty"`

	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy    *int       `db:"deleted_by" json:"deleted_by,omitempty"`
	DeleteReason *string    `db:"delete_reason" json:"delete_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContentPreview is the cross-type view the moderation queue shows.
type ContentPreview struct {
	AuthorID  int       `db:"author_id" json:"author_id"`
	Excerpt   string    `json:"excerpt"`
	FlagCount int       `db:"flag_count" json:"flag_count"`
	IsHidden  bool      `db:"is_hidden" json:"is_hidden"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

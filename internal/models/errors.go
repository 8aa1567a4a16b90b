package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("entity not found")
	ErrPermDenied    = errors.New("not enough permissions to execute this action")
	ErrInvalidFormat = errors.New("invalid format")

	ErrSelfFlag         = errors.New("users cannot flag their own content")
	ErrDuplicateFlag    = errors.New("content already flagged by this user")
	ErrAlreadyReviewed  = errors.New("flag has already been reviewed")
	ErrMixedReviewBatch = errors.New("review batch spans more than one content item")

	ErrUserAlreadyPenalized = errors.New("user already holds a penalty of equal or higher severity")
	ErrCannotRevokePenalty  = errors.New("penalty is already revoked")
	ErrCannotAppeal         = errors.New("penalty cannot be appealed")
	ErrAppealAlreadyExists  = errors.New("an appeal already exists for this penalty")

	ErrInvalidRegex     = errors.New("invalid regex pattern")
	ErrDuplicateKeyword = errors.New("keyword is already on the watchlist")

	ErrEmailAlreadyUsed = errors.New("email already used")
)

// BannedError is returned by the login gate while the user holds an
// active ban. It carries the penalty so the caller can surface the
// reason and expiry.
type BannedError struct {
	Penalty *UserPenalty
}

func (e *BannedError) Error() string {
	if e.Penalty != nil && e.Penalty.ExpiresAt != nil {
		return fmt.Sprintf("account banned until %s: %s", e.Penalty.ExpiresAt.Format("2006-01-02 15:04"), e.Penalty.Reason)
	}
	return "account permanently banned"
}

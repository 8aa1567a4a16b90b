package models

import (
	"regexp"
	"strings"
	"time"
)

type KeywordWatchlistEntry struct {
	ID             int        `json:"id"`
	Keyword        string     `json:"keyword"`
	IsRegex        bool       `db:"is_regex" json:"is_regex"`
	AutoFlagReason FlagReason `db:"auto_flag_reason" json:"auto_flag_reason"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedBy      int        `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	MatchCount     int        `db:"match_count" json:"match_count"`
}

// CompilePattern compiles a watchlist regex case-insensitively.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// ValidatePattern is the strict check applied before a watchlist entry
// is stored or toggled to regex mode.
func ValidatePattern(pattern string, isRegex bool) error {
	if strings.TrimSpace(pattern) == "" {
		return ErrInvalidFormat
	}
	if !isRegex {
		return nil
	}
	if _, err := CompilePattern(pattern); err != nil {
		return ErrInvalidRegex
	}
	return nil
}

// TestPattern is the admin dry-run helper. A pattern that fails to
// compile falls back to literal substring matching instead of
// erroring, so ad-hoc input behaves predictably.
func TestPattern(pattern, sample string) bool {
	if re, err := CompilePattern(pattern); err == nil {
		return re.MatchString(sample)
	}
	return MatchLiteral(pattern, sample)
}

// MatchLiteral is the case-insensitive substring search used for
// non-regex entries.
func MatchLiteral(keyword, text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

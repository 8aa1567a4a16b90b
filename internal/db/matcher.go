package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/civitashq/trustengine/internal/metrics"
	"github.com/civitashq/trustengine/internal/models"
)

// WatchlistMatcher scans new content against the active watchlist and
// synthesizes flags through the regular ledger path, reported by the
// seeded system user. Compiled patterns are cached process-wide; a
// generation counter bumped by every watchlist write invalidates the
// cache instead of ambient global state.
type WatchlistMatcher struct {
	sdb *SharedDB

	mu         sync.RWMutex
	generation uint64
	loadedGen  uint64
	loaded     bool
	entries    []compiledEntry
}

type compiledEntry struct {
	entry   models.KeywordWatchlistEntry
	re      *regexp.Regexp // nil for literal entries
	literal string         // lowercased keyword for literal entries
}

func NewWatchlistMatcher(sdb *SharedDB) *WatchlistMatcher {
	return &WatchlistMatcher{sdb: sdb}
}

// Invalidate marks the compiled cache stale. Cheap; the next Scan
// reloads.
func (m *WatchlistMatcher) Invalidate() {
	m.mu.Lock()
	m.generation++
	m.mu.Unlock()
}

func (m *WatchlistMatcher) load(ctx context.Context) ([]compiledEntry, error) {
	m.mu.RLock()
	if m.loaded && m.loadedGen == m.generation {
		entries := m.entries
		m.mu.RUnlock()
		return entries, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded && m.loadedGen == m.generation {
		return m.entries, nil
	}

	raw, err := activeWatchlistEntries(ctx, m.sdb.db)
	if err != nil {
		return nil, err
	}
	compiled := make([]compiledEntry, 0, len(raw))
	for _, e := range raw {
		ce := compiledEntry{entry: e}
		if e.IsRegex {
			re, err := models.CompilePattern(e.Keyword)
			if err != nil {
				// Stored despite validation; skip it rather than
				// abort the whole scan.
				m.sdb.logger.Warn().
					Int("entry_id", e.ID).
					Str("keyword", e.Keyword).
					Err(err).
					Msg("skipping watchlist entry with malformed regex")
				continue
			}
			ce.re = re
		} else {
			ce.literal = strings.ToLower(e.Keyword)
		}
		compiled = append(compiled, ce)
	}
	m.entries = compiled
	m.loadedGen = m.generation
	m.loaded = true
	return compiled, nil
}

// Scan matches text against every active entry. Each hit increments
// the entry's match_count whether or not a flag results, then submits
// a synthetic flag citing the matched keyword. Duplicate and self
// flags are tolerated; the content pipeline calls this after every
// create or edit, so re-matches are routine.
func (m *WatchlistMatcher) Scan(ctx context.Context, text string, contentType models.ContentType, contentID int) ([]models.ContentFlag, error) {
	entries, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	systemID, err := m.sdb.SystemReporterID(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)
	var flags []models.ContentFlag
	for _, ce := range entries {
		matched := false
		if ce.re != nil {
			matched = ce.re.MatchString(text)
		} else {
			matched = strings.Contains(lower, ce.literal)
		}
		if !matched {
			continue
		}

		metrics.WatchlistMatches.Inc()
		if err := bumpMatchCount(ctx, m.sdb.db, ce.entry.ID); err != nil {
			return flags, err
		}

		details := fmt.Sprintf("automatic flag: content matched watchlist keyword %q", ce.entry.Keyword)
		flag, err := m.sdb.SubmitFlag(ctx, FlagSubmission{
			ContentType: contentType,
			ContentID:   contentID,
			ReporterID:  systemID,
			Reason:      ce.entry.AutoFlagReason,
			Details:     &details,
		})
		switch {
		case err == nil:
			flags = append(flags, *flag)
		case errors.Is(err, models.ErrDuplicateFlag),
			errors.Is(err, models.ErrSelfFlag),
			errors.Is(err, models.ErrNotFound):
			m.sdb.logger.Debug().
				Int("entry_id", ce.entry.ID).
				Str("content_type", string(contentType)).
				Int("content_id", contentID).
				Err(err).
				Msg("synthetic flag not created")
		default:
			return flags, err
		}
	}
	return flags, nil
}

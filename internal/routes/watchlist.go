package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civitashq/trustengine/internal/models"
)

func (routes *Routes) GetWatchlist(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	entries, err := routes.db.ListWatchlistEntries(r.Context())
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}

type watchlistEntryRequest struct {
	Keyword        string            `json:"keyword"`
	IsRegex        bool              `json:"is_regex"`
	AutoFlagReason models.FlagReason `json:"auto_flag_reason"`
	IsActive       *bool             `json:"is_active,omitempty"`
}

func (routes *Routes) PostWatchlistEntry(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}
	req := watchlistEntryRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	entry := &models.KeywordWatchlistEntry{
		Keyword:        req.Keyword,
		IsRegex:        req.IsRegex,
		AutoFlagReason: req.AutoFlagReason,
		IsActive:       true,
		CreatedBy:      mH.ReviewerID(),
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	if err := routes.db.CreateWatchlistEntry(r.Context(), entry); err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, entry)
	return nil
}

func (routes *Routes) PutWatchlistEntry(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	entryID, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	entry, err := routes.db.GetWatchlistEntry(r.Context(), entryID)
	if err != nil {
		return mapError(err)
	}

	req := watchlistEntryRequest{
		Keyword:        entry.Keyword,
		IsRegex:        entry.IsRegex,
		AutoFlagReason: entry.AutoFlagReason,
	}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	entry.Keyword = req.Keyword
	entry.IsRegex = req.IsRegex
	entry.AutoFlagReason = req.AutoFlagReason
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	if err := routes.db.UpdateWatchlistEntry(r.Context(), entry); err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, entry)
	return nil
}

func (routes *Routes) DeleteWatchlistEntry(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	entryID, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.db.DeleteWatchlistEntry(r.Context(), entryID); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type watchlistTestRequest struct {
	Keyword string `json:"keyword"`
	Sample  string `json:"sample"`
}

// PostWatchlistTest is a dry run: it never touches stored entries or
// match counts.
func (routes *Routes) PostWatchlistTest(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	req := watchlistTestRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if req.Keyword == "" {
		return &ErrBadRequest{Cause: models.ErrInvalidFormat}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"matched": models.TestPattern(req.Keyword, req.Sample)})
	return nil
}

package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civitashq/trustengine/internal/models"
)

func parsePage(r *http.Request) models.Page {
	page := models.Page{}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Number = n
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		page.Size = s
	}
	return page
}

type pagedResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func (routes *Routes) GetModerationQueue(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}

	filter := models.FlagQueueFilter{}
	if raw := r.URL.Query().Get("content_type"); raw != "" {
		t := models.ContentType(raw)
		if !t.Valid() {
			return &ErrBadRequest{Cause: models.ErrInvalidFormat}
		}
		filter.ContentType = &t
	}
	if raw := r.URL.Query().Get("reason"); raw != "" {
		reason := models.FlagReason(raw)
		if !reason.Valid() {
			return &ErrBadRequest{Cause: models.ErrInvalidFormat}
		}
		filter.Reason = &reason
	}

	items, total, err := mH.Queue(r.Context(), filter, parsePage(r))
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: items, Total: total})
	return nil
}

func (routes *Routes) PostReview(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}
	req := models.ReviewRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	summary, err := mH.Review(r.Context(), req)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, summary)
	return nil
}

type penaltyRequest struct {
	UserID         int                `json:"user_id"`
	PenaltyType    models.PenaltyType `json:"penalty_type"`
	Reason         string             `json:"reason"`
	RelatedFlagIDs []int32            `json:"related_flag_ids,omitempty"`
}

func (routes *Routes) PostPenalty(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}
	req := penaltyRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	penalty, err := mH.IssuePenalty(r.Context(), req.UserID, req.PenaltyType, req.Reason, req.RelatedFlagIDs)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, penalty)
	return nil
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (routes *Routes) PostPenaltyRevoke(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}
	penaltyID, err := strconv.Atoi(chi.URLParam(r, "penaltyID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	req := revokeRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	penalty, err := mH.RevokePenalty(r.Context(), penaltyID, req.Reason)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, penalty)
	return nil
}

func (routes *Routes) GetNextPenalty(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	next, err := routes.db.NextPenaltyFor(r.Context(), userID)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, map[string]models.PenaltyType{"next_penalty_type": next})
	return nil
}

func (routes *Routes) GetMyPenalties(w http.ResponseWriter, r *http.Request) AppError {
	penalties, err := routes.db.ListUserPenalties(r.Context(), getUserH(r).ID())
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, penalties)
	return nil
}

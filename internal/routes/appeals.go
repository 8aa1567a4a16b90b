package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civitashq/trustengine/internal/models"
)

type appealRequest struct {
	PenaltyID int    `json:"penalty_id"`
	Reason    string `json:"reason"`
}

func (routes *Routes) PostAppeal(w http.ResponseWriter, r *http.Request) AppError {
	req := appealRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if req.Reason == "" {
		return &ErrBadRequest{Cause: models.ErrInvalidFormat}
	}
	appeal, err := routes.db.SubmitAppeal(r.Context(), req.PenaltyID, getUserH(r).ID(), req.Reason)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, appeal)
	return nil
}

func (routes *Routes) GetMyAppeals(w http.ResponseWriter, r *http.Request) AppError {
	appeals, err := routes.db.ListUserAppeals(r.Context(), getUserH(r).ID())
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, appeals)
	return nil
}

func (routes *Routes) GetPendingAppeals(w http.ResponseWriter, r *http.Request) AppError {
	if _, appErr := routes.moderationH(r); appErr != nil {
		return appErr
	}
	appeals, total, err := routes.db.PendingAppeals(r.Context(), parsePage(r))
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: appeals, Total: total})
	return nil
}

type appealReviewRequest struct {
	Action models.AppealReviewAction `json:"action"`
	Notes  *string                   `json:"notes,omitempty"`
}

func (routes *Routes) PostAppealReview(w http.ResponseWriter, r *http.Request) AppError {
	mH, appErr := routes.moderationH(r)
	if appErr != nil {
		return appErr
	}
	appealID, err := strconv.Atoi(chi.URLParam(r, "appealID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	req := appealReviewRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	appeal, err := mH.ReviewAppeal(r.Context(), appealID, req.Action, req.Notes)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, appeal)
	return nil
}

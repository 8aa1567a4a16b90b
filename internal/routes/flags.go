package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civitashq/trustengine/internal/db"
	"github.com/civitashq/trustengine/internal/models"
)

type flagRequest struct {
	ContentType models.ContentType `json:"content_type"`
	ContentID   int                `json:"content_id"`
	Reason      models.FlagReason  `json:"reason"`
	Details     *string            `json:"details,omitempty"`
}

func (routes *Routes) PostFlag(w http.ResponseWriter, r *http.Request) AppError {
	req := flagRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	flag, err := routes.db.SubmitFlag(r.Context(), db.FlagSubmission{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ReporterID:  getUserH(r).ID(),
		Reason:      req.Reason,
		Details:     req.Details,
	})
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, flag)
	return nil
}

func (routes *Routes) DeleteFlag(w http.ResponseWriter, r *http.Request) AppError {
	flagID, err := strconv.Atoi(chi.URLParam(r, "flagID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.db.RetractFlag(r.Context(), flagID, getUserH(r).ID()); err != nil {
		return mapError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

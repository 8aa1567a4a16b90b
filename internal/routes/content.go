package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/civitashq/trustengine/internal/models"
)

type ideaRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (routes *Routes) PostIdea(w http.ResponseWriter, r *http.Request) AppError {
	req := ideaRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if req.Title == "" || req.Body == "" {
		return &ErrBadRequest{Cause: models.ErrInvalidFormat}
	}

	idea := &models.Idea{AuthorID: getUserH(r).ID(), Title: req.Title, Body: req.Body}
	if err := routes.db.CreateIdea(r.Context(), idea); err != nil {
		return mapError(err)
	}
	routes.scanContent(r, req.Title+"\n"+req.Body, models.ContentTypeIdea, idea.ID)

	created, err := routes.db.GetIdea(r.Context(), idea.ID)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, created)
	return nil
}

func (routes *Routes) GetIdea(w http.ResponseWriter, r *http.Request) AppError {
	id, err := strconv.Atoi(chi.URLParam(r, "ideaID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	idea, err := routes.db.GetIdea(r.Context(), id)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusOK, idea)
	return nil
}

type commentRequest struct {
	Body string `json:"body"`
}

func (routes *Routes) PostComment(w http.ResponseWriter, r *http.Request) AppError {
	ideaID, err := strconv.Atoi(chi.URLParam(r, "ideaID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	req := commentRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if req.Body == "" {
		return &ErrBadRequest{Cause: models.ErrInvalidFormat}
	}
	if _, err := routes.db.GetIdea(r.Context(), ideaID); err != nil {
		return mapError(err)
	}

	comment := &models.Comment{IdeaID: ideaID, AuthorID: getUserH(r).ID(), Body: req.Body}
	if err := routes.db.CreateComment(r.Context(), comment); err != nil {
		return mapError(err)
	}
	routes.scanContent(r, req.Body, models.ContentTypeComment, comment.ID)

	created, err := routes.db.GetComment(r.Context(), comment.ID)
	if err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, created)
	return nil
}

// scanContent runs the watchlist over freshly created content. A scan
// failure must not fail the create that already committed, so it is
// logged and swallowed.
func (routes *Routes) scanContent(r *http.Request, text string, contentType models.ContentType, contentID int) {
	_, err := routes.db.Matcher().Scan(r.Context(), text, contentType, contentID)
	if err != nil {
		hlog.FromRequest(r).Error().
			Str("content_type", string(contentType)).
			Int("content_id", contentID).
			Err(err).
			Msg("watchlist scan failed")
	}
}

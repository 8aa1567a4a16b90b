package routes

import (
	"errors"
	"net/http"

	"github.com/civitashq/trustengine/internal/models"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (routes *Routes) PostSignup(w http.ResponseWriter, r *http.Request) AppError {
	req := signupRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if req.Name == "" || req.Password == "" {
		return &ErrBadRequest{Cause: models.ErrInvalidFormat}
	}
	user := &models.User{Name: req.Name, Email: req.Email}
	if err := routes.db.CreateUser(r.Context(), user, req.Password); err != nil {
		return mapError(err)
	}
	writeJSON(w, http.StatusCreated, user)
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (routes *Routes) PostLogin(w http.ResponseWriter, r *http.Request) AppError {
	req := loginRequest{}
	if err := decodeJSON(r, &req); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	token, err := routes.db.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var banned *models.BannedError
		if errors.As(err, &banned) {
			return &ErrForbidden{Cause: banned}
		}
		// Wrong password and unknown email look the same to the caller.
		return &ErrUnauthorizedLogin{}
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
	return nil
}

type ErrUnauthorizedLogin struct{}

func (e *ErrUnauthorizedLogin) Error() string { return "invalid credentials" }
func (e *ErrUnauthorizedLogin) Status() int   { return http.StatusUnauthorized }

func (routes *Routes) PostSignout(w http.ResponseWriter, r *http.Request) AppError {
	if err := routes.db.Signout(r.Context(), bearerToken(r)); err != nil {
		return &ErrInternal{Cause: err}
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

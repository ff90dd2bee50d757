package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

// handleErrors maps domain errors to stable client messages.
// Store failures are logged and never echoed back.
func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusBadRequest, "invalid username or password")
	case errors.Is(err, service.ErrUserExists):
		respond.Error(w, r, http.StatusBadRequest, "user already exists")
	case errors.Is(err, repo.ErrorConflict):
		logger.Warn("conflict", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, "task already linked")
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found")
	default:
		logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func badBody(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, respond.ErrEmptyBody) {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}
	respond.Error(w, r, http.StatusBadRequest, "invalid json")
}

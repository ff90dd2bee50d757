package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

type AuthHandler struct {
	service *service.UserService
	logger  *zap.Logger
}

func NewAuthHandler(srv *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := respond.Decode(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", u.ID))
	respond.Message(w, r, http.StatusCreated, "user registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := respond.Decode(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"token": token})
}

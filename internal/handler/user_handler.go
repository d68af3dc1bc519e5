package handler

import (
	"context"
	"net/http"

	"caseguard/internal/middleware"
	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
)

type userService interface {
	Register(ctx context.Context, actorID int64, req model.RegisterRequest) (model.Principal, error)
	List(ctx context.Context) ([]model.Principal, error)
	Update(ctx context.Context, actorID int64, targetID int64, req model.UpdateUserRequest) (model.Principal, error)
	Delete(ctx context.Context, actorID int64, targetID int64) error
}

type UserHandler struct {
	service   userService
	responder *respond.Responder
}

func NewUserHandler(service userService, responder *respond.Responder) *UserHandler {
	return &UserHandler{service: service, responder: responder}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.UserListData{Users: users})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), session.PrincipalID(r.Context()), payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusCreated, model.UserData{User: user})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	targetID, err := middleware.PathID(r, middleware.ParamUserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), session.PrincipalID(r.Context()), targetID, payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.UserData{User: user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID, err := middleware.PathID(r, middleware.ParamUserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), session.PrincipalID(r.Context()), targetID); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Message(w, http.StatusOK, "user deleted")
}

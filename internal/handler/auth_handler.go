package handler

import (
	"context"
	"net/http"
	"strings"

	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
	"caseguard/pkg/apierror"
)

type authService interface {
	Login(ctx context.Context, email string, password string) (model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, principalID int64) error
	ChangePassword(ctx context.Context, principalID int64, current string, next string) (model.LoginResponse, error)
}

type AuthHandler struct {
	service   authService
	responder *respond.Responder
}

func NewAuthHandler(service authService, responder *respond.Responder) *AuthHandler {
	return &AuthHandler{service: service, responder: responder}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	resp, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, resp)
}

// Verify returns the principal the session monitor authenticated. It does not compare
// token versions, so a token minted before a logout still verifies until it idles out.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	state, ok := session.FromContext(r.Context())
	if !ok {
		h.responder.Error(w, r, apierror.Unauthorized("authentication required"))
		return
	}

	h.responder.JSON(w, http.StatusOK, model.UserData{User: state.Principal})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		h.responder.Error(w, r, apierror.Validation("refreshToken is required", map[string]any{"field": "refreshToken"}))
		return
	}

	token, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.RefreshResponse{Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), session.PrincipalID(r.Context())); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Message(w, http.StatusOK, "logged out")
}

// KeepAlive has no work of its own: the session monitor renews keep-alive requests and
// returns the new token in the Authorization response header.
func (h *AuthHandler) KeepAlive(w http.ResponseWriter, _ *http.Request) {
	h.responder.Message(w, http.StatusOK, "session extended")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ChangePasswordRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	resp, err := h.service.ChangePassword(r.Context(), session.PrincipalID(r.Context()), payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, resp)
}

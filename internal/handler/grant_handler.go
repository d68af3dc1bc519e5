package handler

import (
	"context"
	"net/http"

	"caseguard/internal/middleware"
	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
)

type grantService interface {
	ListForUser(ctx context.Context, userID int64) (model.GrantSet, error)
	SetCollectionGrant(ctx context.Context, actorID int64, userID int64, collectionID int64, req model.GrantRequest) (model.CollectionGrant, error)
	RevokeCollectionGrant(ctx context.Context, actorID int64, userID int64, collectionID int64) error
	SetItemGrant(ctx context.Context, actorID int64, userID int64, itemID int64, req model.GrantRequest) (model.ItemGrant, error)
	RevokeItemGrant(ctx context.Context, actorID int64, userID int64, itemID int64) error
}

type GrantHandler struct {
	service   grantService
	responder *respond.Responder
}

func NewGrantHandler(service grantService, responder *respond.Responder) *GrantHandler {
	return &GrantHandler{service: service, responder: responder}
}

func (h *GrantHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.PathID(r, middleware.ParamUserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	set, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, set)
}

func (h *GrantHandler) SetCollectionGrant(w http.ResponseWriter, r *http.Request) {
	userID, collectionID, ok := h.pathPair(w, r, middleware.ParamCollectionID)
	if !ok {
		return
	}

	var payload model.GrantRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	grant, err := h.service.SetCollectionGrant(r.Context(), session.PrincipalID(r.Context()), userID, collectionID, payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, grant)
}

func (h *GrantHandler) RevokeCollectionGrant(w http.ResponseWriter, r *http.Request) {
	userID, collectionID, ok := h.pathPair(w, r, middleware.ParamCollectionID)
	if !ok {
		return
	}

	if err := h.service.RevokeCollectionGrant(r.Context(), session.PrincipalID(r.Context()), userID, collectionID); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Message(w, http.StatusOK, "collection grant revoked")
}

func (h *GrantHandler) SetItemGrant(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := h.pathPair(w, r, middleware.ParamItemID)
	if !ok {
		return
	}

	var payload model.GrantRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	grant, err := h.service.SetItemGrant(r.Context(), session.PrincipalID(r.Context()), userID, itemID, payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, grant)
}

func (h *GrantHandler) RevokeItemGrant(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := h.pathPair(w, r, middleware.ParamItemID)
	if !ok {
		return
	}

	if err := h.service.RevokeItemGrant(r.Context(), session.PrincipalID(r.Context()), userID, itemID); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Message(w, http.StatusOK, "item grant revoked")
}

func (h *GrantHandler) pathPair(w http.ResponseWriter, r *http.Request, targetParam string) (int64, int64, bool) {
	userID, err := middleware.PathID(r, middleware.ParamUserID)
	if err != nil {
		h.responder.Error(w, r, err)
		return 0, 0, false
	}

	targetID, err := middleware.PathID(r, targetParam)
	if err != nil {
		h.responder.Error(w, r, err)
		return 0, 0, false
	}
	return userID, targetID, true
}

package handler

import (
	"context"
	"net/http"

	"caseguard/internal/middleware"
	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/internal/session"
)

type resourceService interface {
	CreateCollection(ctx context.Context, actorID int64, req model.CreateCollectionRequest) (model.Collection, error)
	GetCollection(ctx context.Context, id int64) (model.Collection, error)
	CreateItem(ctx context.Context, actorID int64, collectionID int64, req model.CreateItemRequest) (model.Item, error)
	GetItem(ctx context.Context, collectionID int64, itemID int64) (model.Item, error)
	UpdateItem(ctx context.Context, actorID int64, collectionID int64, itemID int64, req model.UpdateItemRequest) (model.Item, error)
	DeleteItem(ctx context.Context, actorID int64, collectionID int64, itemID int64) error
}

// ResourceHandler serves collections and items. Routes are guarded before reaching it.
type ResourceHandler struct {
	service   resourceService
	responder *respond.Responder
}

func NewResourceHandler(service resourceService, responder *respond.Responder) *ResourceHandler {
	return &ResourceHandler{service: service, responder: responder}
}

func (h *ResourceHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateCollectionRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	collection, err := h.service.CreateCollection(r.Context(), session.PrincipalID(r.Context()), payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusCreated, model.CollectionData{Collection: collection})
}

func (h *ResourceHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID, err := middleware.PathID(r, middleware.ParamCollectionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	collection, err := h.service.GetCollection(r.Context(), collectionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.CollectionData{Collection: collection})
}

func (h *ResourceHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	collectionID, err := middleware.PathID(r, middleware.ParamCollectionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	var payload model.CreateItemRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), session.PrincipalID(r.Context()), collectionID, payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusCreated, model.ItemData{Item: item})
}

func (h *ResourceHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	collectionID, itemID, ok := h.itemPath(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetItem(r.Context(), collectionID, itemID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.ItemData{Item: item})
}

func (h *ResourceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	collectionID, itemID, ok := h.itemPath(w, r)
	if !ok {
		return
	}

	var payload model.UpdateItemRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), session.PrincipalID(r.Context()), collectionID, itemID, payload)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, model.ItemData{Item: item})
}

func (h *ResourceHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	collectionID, itemID, ok := h.itemPath(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), session.PrincipalID(r.Context()), collectionID, itemID); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Message(w, http.StatusOK, "item deleted")
}

func (h *ResourceHandler) itemPath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	collectionID, err := middleware.PathID(r, middleware.ParamCollectionID)
	if err != nil {
		h.responder.Error(w, r, err)
		return 0, 0, false
	}

	itemID, err := middleware.PathID(r, middleware.ParamItemID)
	if err != nil {
		h.responder.Error(w, r, err)
		return 0, 0, false
	}
	return collectionID, itemID, true
}

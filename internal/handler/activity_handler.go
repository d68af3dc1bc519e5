package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"caseguard/internal/model"
	"caseguard/internal/respond"
	"caseguard/pkg/apierror"
)

type activityReader interface {
	Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error)
}

type ActivityHandler struct {
	service   activityReader
	responder *respond.Responder
}

func NewActivityHandler(service activityReader, responder *respond.Responder) *ActivityHandler {
	return &ActivityHandler{service: service, responder: responder}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseOptionalTime(query.Get("from"), "from")
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	to, err := parseOptionalTime(query.Get("to"), "to")
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	filter := model.ActivityQuery{
		Action:   strings.ToUpper(strings.TrimSpace(query.Get("action"))),
		Category: strings.ToUpper(strings.TrimSpace(query.Get("category"))),
		From:     from,
		To:       to,
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	}

	if raw := strings.TrimSpace(query.Get("actorId")); raw != "" {
		actorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || actorID <= 0 {
			h.responder.Error(w, r, apierror.Validation("invalid 'actorId'", map[string]any{"field": "actorId", "value": raw}))
			return
		}
		filter.ActorID = &actorID
	}

	items, meta, err := h.service.Query(r.Context(), filter)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.Page(w, model.ActivityListData{Items: items}, meta)
}

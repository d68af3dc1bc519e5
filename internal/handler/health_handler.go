package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"caseguard/internal/model"
	"caseguard/internal/respond"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db        pinger
	responder *respond.Responder
}

func NewHealthHandler(db pinger, responder *respond.Responder) *HealthHandler {
	return &HealthHandler{db: db, responder: responder}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// Probe failures stay out of the activity log.
	if err := h.db.Health(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		respond.Write(w, http.StatusServiceUnavailable, model.APIResponse{
			Status: model.StatusError,
			Error:  &model.APIError{Code: "UNAVAILABLE", Message: "database unreachable"},
		})
		return
	}

	h.responder.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

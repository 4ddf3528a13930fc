package handler

import (
	"context"
	"net/http"
	"time"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler reports healthy while ping succeeds.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		JSON(w, http.StatusServiceUnavailable, Envelope{Status: StatusError, Message: "database unavailable"})
		return
	}
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: "ok"})
}

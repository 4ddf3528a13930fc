package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type AnalyticsHandler struct {
	analytics *usecase.AnalyticsService
	rs        *Responder
}

func NewAnalyticsHandler(analytics *usecase.AnalyticsService, rs *Responder) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, rs: rs}
}

func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	record, err := h.analytics.Track(r.Context(), domain.ActorFrom(r.Context()), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, record)
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, summary)
}

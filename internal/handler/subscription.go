package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/payment"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptions *usecase.SubscriptionService
	verifier      *payment.Verifier
	rs            *Responder
}

func NewSubscriptionHandler(subscriptions *usecase.SubscriptionService, verifier *payment.Verifier, rs *Responder) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, verifier: verifier, rs: rs}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.subscriptions.List(r.Context(), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *SubscriptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.subscriptions.ListMine(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, sub)
}

func (h *SubscriptionHandler) Me(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Me(r.Context(), domain.ActorFrom(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, sub)
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateSubscriptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	sub, err := h.subscriptions.Create(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, sub)
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Cancel(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, sub)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

// PaymentWebhook ingests a signed payment provider event. The signature covers
// the raw body, so the body is read before any decoding.
func (h *SubscriptionHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		h.rs.Error(w, r, domain.BadRequest("Invalid request body"))
		return
	}
	event, err := h.verifier.Parse(body, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			h.rs.Error(w, r, domain.Unauthorized("Invalid webhook signature"))
			return
		}
		h.rs.Error(w, r, domain.BadRequest(err.Error()))
		return
	}
	sub, err := h.subscriptions.HandlePaymentEvent(r.Context(), event)
	if err != nil {
		h.rs.logger.Warn("Payment event rejected", zap.String("event_id", event.ID), zap.Error(err))
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, sub)
}

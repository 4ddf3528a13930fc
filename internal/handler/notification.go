package handler

import (
	"fmt"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notifications *usecase.NotificationService
	rs            *Responder
}

func NewNotificationHandler(notifications *usecase.NotificationService, rs *Responder) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, rs: rs}
}

func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.notifications.ListMine(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Message(w, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), domain.ActorFrom(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Message(w, fmt.Sprintf("%d notifications marked as read", n))
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	n, err := h.notifications.Send(r.Context(), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, n)
}

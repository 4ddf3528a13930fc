package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// ReviewHandler serves /reviews and the nested /companies/{id}/reviews. On the
// flat routes companyId comes from the body or the query string.
type ReviewHandler struct {
	reviews *usecase.ReviewService
	rs      *Responder
}

func NewReviewHandler(reviews *usecase.ReviewService, rs *Responder) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, rs: rs}
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *ReviewHandler) ListForCompany(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *ReviewHandler) list(w http.ResponseWriter, r *http.Request, companyID string) {
	res, err := h.reviews.List(r.Context(), domain.ActorFrom(r.Context()), companyID, r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, review)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "")
}

func (h *ReviewHandler) CreateForCompany(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, chi.URLParam(r, "id"))
}

func (h *ReviewHandler) create(w http.ResponseWriter, r *http.Request, companyID string) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	review, err := h.reviews.Create(r.Context(), domain.ActorFrom(r.Context()), companyID, payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, review)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	review, err := h.reviews.Update(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *ReviewHandler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	review, err := h.reviews.SetApproval(r.Context(), chi.URLParam(r, "id"), approved)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, review)
}

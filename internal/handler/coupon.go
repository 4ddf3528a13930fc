package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CouponHandler struct {
	coupons *usecase.CouponService
	rs      *Responder
}

func NewCouponHandler(coupons *usecase.CouponService, rs *Responder) *CouponHandler {
	return &CouponHandler{coupons: coupons, rs: rs}
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.coupons.List(r.Context(), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, coupon)
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	coupon, err := h.coupons.Create(r.Context(), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, coupon)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	coupon, err := h.coupons.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, coupon)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

// Apply redeems a coupon against an amount.
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var in usecase.ApplyCouponInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	quote, err := h.coupons.Apply(r.Context(), domain.ActorFrom(r.Context()), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, quote)
}

// Validate quotes a coupon without using it.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var in usecase.ApplyCouponInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	quote, err := h.coupons.Validate(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, quote)
}

package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type PlanHandler struct {
	plans *usecase.PlanService
	rs    *Responder
}

func NewPlanHandler(plans *usecase.PlanService, rs *Responder) *PlanHandler {
	return &PlanHandler{plans: plans, rs: rs}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.plans.List(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, plan)
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	plan, err := h.plans.Create(r.Context(), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, plan)
}

func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	plan, err := h.plans.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, plan)
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

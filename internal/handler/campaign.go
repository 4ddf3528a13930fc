package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CampaignHandler struct {
	campaigns *usecase.CampaignService
	rs        *Responder
}

func NewCampaignHandler(campaigns *usecase.CampaignService, rs *Responder) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, rs: rs}
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.campaigns.List(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.campaigns.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, campaign)
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	campaign, err := h.campaigns.Create(r.Context(), domain.ActorFrom(r.Context()), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, campaign)
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	campaign, err := h.campaigns.Update(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, campaign)
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

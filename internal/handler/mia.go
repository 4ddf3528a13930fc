package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type MiaHandler struct {
	mia *usecase.MiaService
	rs  *Responder
}

func NewMiaHandler(mia *usecase.MiaService, rs *Responder) *MiaHandler {
	return &MiaHandler{mia: mia, rs: rs}
}

func (h *MiaHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.mia.List(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *MiaHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.mia.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, item)
}

func (h *MiaHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	item, err := h.mia.Create(r.Context(), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, item)
}

func (h *MiaHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	item, err := h.mia.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, item)
}

func (h *MiaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mia.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

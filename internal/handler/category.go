package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	categories *usecase.CategoryService
	rs         *Responder
	maxUpload  int64
}

func NewCategoryHandler(categories *usecase.CategoryService, rs *Responder, maxUpload int64) *CategoryHandler {
	return &CategoryHandler{categories: categories, rs: rs, maxUpload: maxUpload}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.categories.List(r.Context(), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	category, err := h.categories.Create(r.Context(), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	category, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

func (h *CategoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	file, err := readUpload(r, "image", h.maxUpload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	category, err := h.categories.UploadImage(r.Context(), chi.URLParam(r, "id"), file)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, category)
}

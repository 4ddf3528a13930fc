package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CompanyHandler struct {
	companies *usecase.CompanyService
	rs        *Responder
	maxUpload int64
}

func NewCompanyHandler(companies *usecase.CompanyService, rs *Responder, maxUpload int64) *CompanyHandler {
	return &CompanyHandler{companies: companies, rs: rs, maxUpload: maxUpload}
}

// List also serves keyword search through the keyword parameter.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.companies.List(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CompanyHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	res, err := h.companies.ListByCategory(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CompanyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.companies.ListMine(r.Context(), domain.ActorFrom(r.Context()), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Get(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, company)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	company, err := h.companies.Create(r.Context(), domain.ActorFrom(r.Context()), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, company)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	company, err := h.companies.Update(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, company)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.Delete(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

func (h *CompanyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *CompanyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *CompanyHandler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	company, err := h.companies.SetApproval(r.Context(), chi.URLParam(r, "id"), approved)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, company)
}

func (h *CompanyHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "logo", "image")
}

func (h *CompanyHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "video", "video")
}

func (h *CompanyHandler) upload(w http.ResponseWriter, r *http.Request, target, formField string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	file, err := readUpload(r, formField, h.maxUpload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	company, err := h.companies.UploadMedia(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), target, file)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, company)
}

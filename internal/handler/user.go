package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users *usecase.UserService
	rs    *Responder
}

func NewUserHandler(users *usecase.UserService, rs *Responder) *UserHandler {
	return &UserHandler{users: users, rs: rs}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.List(r.Context(), r.URL.Query())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	List(w, res)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), domain.ActorFrom(r.Context()), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Created(w, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), domain.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in usecase.ChangePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.users.ChangeUserPassword(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, user)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetMe(r.Context(), domain.ActorFrom(r.Context()))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.users.UpdateMe(r.Context(), domain.ActorFrom(r.Context()), payload)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, user)
}

func (h *UserHandler) ChangeMyPassword(w http.ResponseWriter, r *http.Request) {
	var in usecase.ChangeMyPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.users.ChangeMyPassword(r.Context(), domain.ActorFrom(r.Context()), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.WithToken(w, http.StatusOK, res.User, res.Token)
}

func (h *UserHandler) DeactivateMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeactivateMe(r.Context(), domain.ActorFrom(r.Context())); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.NoContent(w)
}

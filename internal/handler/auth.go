package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/usecase"
)

type AuthHandler struct {
	auth *usecase.AuthService
	rs   *Responder
}

func NewAuthHandler(auth *usecase.AuthService, rs *Responder) *AuthHandler {
	return &AuthHandler{auth: auth, rs: rs}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in usecase.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.WithToken(w, http.StatusCreated, res.User, res.Token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in usecase.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.WithToken(w, http.StatusOK, res.User, res.Token)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), in.Email); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Message(w, "Reset code sent to email")
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ResetCode string `json:"resetCode"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.VerifyResetCode(r.Context(), in.ResetCode); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.Message(w, "Reset code verified")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in usecase.ResetPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.ResetPassword(r.Context(), in)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.WithToken(w, http.StatusOK, nil, res.Token)
}

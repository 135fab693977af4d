package api

import (
	"errors"
	"net/http"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/auth"
)

// Login handles POST /api/auth/login.
//
//	@Summary		Unlock the portal with the shared viewer password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Password"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.auth.ViewerLogin(req.Password)
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody("パスワードが入力されていません"))
		return
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("パスワードが正しくありません"))
		return
	case err != nil:
		writeError(w, "viewer login", err)
		return
	}
	http.SetCookie(w, h.auth.Cookie(auth.ViewerCookie, s))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Logout handles POST /api/auth/logout.
//
//	@Summary		Clear the viewer session
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Router			/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.auth.ClearCookie(auth.ViewerCookie))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// AdminLogin handles POST /api/admin/login.
//
//	@Summary		Sign in as an administrator
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AdminLoginRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Router			/admin/login [post]
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.auth.AdminLogin(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody("email and password are required"))
		return
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	case err != nil:
		writeError(w, "admin login", err)
		return
	}
	http.SetCookie(w, h.auth.Cookie(auth.AdminCookie, s))
	writeJSON(w, http.StatusOK, SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt})
}

// AdminLogout handles POST /api/admin/logout.
//
//	@Summary		Clear the admin session cookie
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Router			/admin/logout [post]
func (h *Handler) AdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.auth.ClearCookie(auth.AdminCookie))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

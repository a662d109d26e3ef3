package api

import (
	"net/http"

	"github.com/starford/jotter/internal/account"
)

// SignUp handles POST /api/auth/signup.
//
//	@Summary		Register a new account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		201		{object}	models.User
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.accounts.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "sign up", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
//
//	@Summary		Exchange credentials for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, u, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u})
}

// Logout handles POST /api/auth/logout.
//
//	@Summary		Revoke the current session
//	@Tags			auth
//	@Success		204	"Signed out"
//	@Security		BearerAuth
//	@Router			/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	models.User
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := account.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

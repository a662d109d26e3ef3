// Package api implements the Jotter REST API using chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/apperr"
)

// SessionMiddleware resolves the session token to a user and stores it in
// the request context. Requests without a live session get 401.
//
// The token is read from "Authorization: Bearer <token>", or from the
// access_token query parameter for EventSource clients that cannot set headers.
func SessionMiddleware(accounts *account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := accounts.CurrentUser(r.Context(), bearerToken(r))
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthenticated) {
					writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
					return
				}
				slog.Error("resolve session failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
				return
			}
			next.ServeHTTP(w, r.WithContext(account.WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

// owner returns the id of the user resolved by SessionMiddleware.
func owner(r *http.Request) string {
	u, ok := account.UserFromContext(r.Context())
	if !ok {
		return ""
	}
	return u.ID
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
)

type ctxKey struct{}

// ClaimsFrom returns the claims stored by the middleware, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// RequireViewer admits any valid session. Admins pass too.
func (a *Authenticator) RequireViewer(next http.Handler) http.Handler {
	return a.require(next, RoleViewer, RoleAdmin)
}

// RequireAdmin admits admin sessions only.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.require(next, RoleAdmin)
}

func (a *Authenticator) require(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.Authenticate(r)
		if err != nil {
			deny(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			deny(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

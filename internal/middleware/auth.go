package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"droneworks/opsdesk/internal/auth"
)

const AccessTokenCookie = "access_token"

// AuthMiddleware guards the API behind the access token. The dashboard
// carries it as an httpOnly cookie; a Bearer header works too for
// scripted access.
func AuthMiddleware(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(AccessTokenCookie); err == nil {
				token = c.Value
			}
			if token == "" {
				if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
					token = strings.TrimPrefix(h, "Bearer ")
				}
			}
			if token == "" {
				unauthorized(w, "Missing access token")
				return
			}

			principal, err := issuer.Verify(token)
			if err != nil {
				unauthorized(w, "Invalid or expired access token")
				return
			}

			ctx := auth.SetPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

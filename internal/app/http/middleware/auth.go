package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cotizador/quoter/internal/domain/auth"
)

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate accepts either a bearer JWT or the internal service token.
// The internal token acts as a staff principal; an empty internalToken
// disables it.
func Authenticate(tokens TokenValidator, internalToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t := r.Header.Get("X-Internal-Token"); t != "" && internalToken != "" {
				if subtle.ConstantTimeCompare([]byte(t), []byte(internalToken)) != 1 {
					deny(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				ctx := auth.WithPrincipal(r.Context(), auth.Principal{Staff: true})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			h := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || raw == "" {
				deny(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			claims, err := tokens.Validate(raw)
			if err != nil {
				deny(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{UserID: claims.UserID, Staff: claims.Staff})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok || !p.Staff {
			deny(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

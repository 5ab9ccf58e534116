package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/store"
)

// RequireAuth validates the session token and populates auth.Context.
// The household reference comes from the stored user row, not the token
// claim, so membership changes take effect immediately.
func RequireAuth(tokens *auth.TokenIssuer, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			user, err := users.GetByID(claims.UserID)
			if err != nil || user == nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ac := auth.Context{
				UserID:   user.ID,
				Username: user.Username,
			}
			if user.HouseholdID != nil {
				ac.HouseholdID = *user.HouseholdID
			}

			ctx := auth.WithContext(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireHousehold rejects callers whose resolved context carries no
// household. It must run inside RequireAuth.
func RequireHousehold(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.HouseholdID(r.Context()) == 0 {
			writeAuthError(w, http.StatusForbidden, "create or join a household first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

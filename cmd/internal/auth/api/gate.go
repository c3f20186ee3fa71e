package authapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ctxKey is private so only this package can inject request identity.
type ctxKey int

const ctxKeyUserID ctxKey = iota

// userIDFrom returns the authenticated user ID attached by the gate.
func userIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	return id, ok && id != ""
}

// authenticated is the request gate: it extracts and verifies the bearer
// token and injects the resolved user ID into the request context. Every
// protected operation goes through here; there is no other path to an
// authenticated identity.
func (h *Handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authorization denied")
			return
		}

		claims, err := h.tokens.Verify(raw, time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

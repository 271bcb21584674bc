package http

import (
	"context"
	"net/http"
	"strings"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/security"
)

type contextKey string

const actorContextKey contextKey = "actor"

// AuthMiddleware resolves the bearer token into a domain actor and
// rejects requests without a valid one.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token", Code: "unauthenticated"})
				return
			}
			actor, err := tokens.ResolveActor(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "unauthenticated"})
				return
			}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorFrom returns the authenticated actor placed by AuthMiddleware.
func actorFrom(r *http.Request) (domain.Actor, bool) {
	actor, ok := r.Context().Value(actorContextKey).(domain.Actor)
	return actor, ok
}

// requireStaff guards staff-only endpoints.
func requireStaff(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return domain.Actor{}, false
	}
	if actor.Role != domain.RoleStaff {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "staff role required", Code: "unauthorized_actor"})
		return domain.Actor{}, false
	}
	return actor, true
}

package auth

import (
	"context"
	"net/http"

	"venue-booking/internal/models"
)

type contextKey string

const viewerKey contextKey = "viewer"

// Middleware resolves the caller into a Viewer and stores it on the request
// context. Requests without a usable token are rejected here, before any
// booking operation runs.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			viewer, err := ExtractViewerFromJWT(token)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), viewerKey, viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards the administrative surface (decisions, sweep trigger).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := ViewerFromContext(r.Context())
		if !ok || !viewer.IsAdmin() {
			http.Error(w, "administrator role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ViewerFromContext returns the Viewer stored by Middleware.
func ViewerFromContext(ctx context.Context) (models.Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey).(models.Viewer)
	return viewer, ok
}

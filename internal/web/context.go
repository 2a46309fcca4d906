package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const clientCookie = "unitview_client"

type contextKey int

const clientKeyCtx contextKey = iota

// withClientCookie gives every browser a stable id so toasts and events
// reach the tab that caused them.
func (s *Server) withClientCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(clientCookie); err == nil && c.Value != "" {
			id = c.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), clientKeyCtx, "client:"+id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientKey(r *http.Request) string {
	key, _ := r.Context().Value(clientKeyCtx).(string)
	return key
}

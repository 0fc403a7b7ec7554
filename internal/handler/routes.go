package handler

import (
	"net/http"

	"github.com/msomdec/user-roster/internal/service"
	"github.com/msomdec/user-roster/internal/store"
)

// RegisterRoutes sets up the screen routes and the health check on mux.
func RegisterRoutes(mux *http.ServeMux, users *store.UserStore) {
	screen := NewScreenHandler(users)
	tagged := func(h http.HandlerFunc) http.Handler {
		return TagClient(h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /", tagged(screen.HandlePage))
	mux.Handle("GET /users/list", tagged(screen.HandleList))
	mux.Handle("GET /users/new", tagged(screen.HandleNew))
	mux.Handle("POST /users", tagged(screen.HandleCreate))
	mux.Handle("GET /users/{id}/edit", tagged(screen.HandleEdit))
	mux.Handle("PATCH /users/{id}", tagged(screen.HandleUpdate))
	mux.Handle("DELETE /users/{id}", tagged(screen.HandleDelete))
	mux.Handle("GET /modal/close", tagged(screen.HandleClose))
}

// RegisterAPIRoutes mounts the users API on mux. Every route requires a
// bearer token, and writes are rate limited per client address.
func RegisterAPIRoutes(mux *http.ServeMux, users *service.UserService, tokens *service.TokenIssuer, limiter *service.TokenBucket) {
	api := NewUserAPIHandler(users)

	read := func(h http.HandlerFunc) http.Handler {
		return RequireToken(tokens, h)
	}
	write := func(h http.HandlerFunc) http.Handler {
		return RequireToken(tokens, RateLimit(limiter, h))
	}

	mux.Handle("GET /api/users", read(api.HandleList))
	mux.Handle("GET /api/users/{id}", read(api.HandleGet))
	mux.Handle("POST /api/users", write(api.HandleCreate))
	mux.Handle("PATCH /api/users/{id}", write(api.HandleUpdate))
	mux.Handle("DELETE /api/users/{id}", write(api.HandleDelete))
}

package handler

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/msomdec/user-roster/internal/remote"
	"github.com/msomdec/user-roster/internal/service"
)

type contextKey string

const clientContextKey contextKey = "client"

// ClientFromContext returns the subject of the bearer token that
// authenticated the request, or "" when there is none.
func ClientFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(clientContextKey).(string)
	return sub
}

// RequireToken is middleware that protects the users API. It reads the
// Authorization bearer token, validates it and injects the token subject into
// the request context. Returns 401 for unauthenticated requests.
func RequireToken(tokens *service.TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token.")
			return
		}

		sub, err := tokens.Validate(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid bearer token.")
			return
		}

		ctx := context.WithValue(r.Context(), clientContextKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimit rejects requests with 429 once the caller runs out of tokens in
// limiter. See rateKey for how callers are told apart.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(rateKey(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateKey identifies the caller by address. An authenticated caller is also
// keyed by token subject and, when set, the end client it acts for, so each
// operator behind the roster screen gets their own bucket. The on-behalf
// header is ignored without a valid token.
func rateKey(r *http.Request) string {
	key := clientIP(r)
	sub := ClientFromContext(r.Context())
	if sub == "" {
		return key
	}
	key = sub + "@" + key
	if client := r.Header.Get(remote.OnBehalfOfHeader); client != "" {
		key += "/" + client
	}
	return key
}

// TagClient marks each request's context with the browser's address so the
// users API calls the store makes for it are attributed to that operator.
func TagClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(remote.OnBehalfOf(r.Context(), clientIP(r))))
	})
}

// SecurityHeaders sets conservative browser security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

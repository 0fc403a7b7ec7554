package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/user-roster/internal/handler"
	"github.com/msomdec/user-roster/internal/remote"
	"github.com/msomdec/user-roster/internal/service"
)

func TestRequireToken_ValidToken(t *testing.T) {
	tokens := newTestTokens()
	token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotClient string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClient = handler.ClientFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.RequireToken(tokens, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotClient != "roster-screen" {
		t.Fatalf("expected client roster-screen in context, got %q", gotClient)
	}
}

func TestRequireToken_MissingToken(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()

	handler.RequireToken(newTestTokens(), inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireToken_InvalidToken(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	w := httptest.NewRecorder()

	handler.RequireToken(newTestTokens(), inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2)
	defer limiter.Close()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, inner)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		req.RemoteAddr = "203.0.113.7:41000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes[i] = w.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", codes[2])
	}

	// A different address has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	req.RemoteAddr = "203.0.113.8:41000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected other address allowed, got %d", w.Code)
	}
}

func TestRateLimit_OperatorsBehindOneCallerAreSeparate(t *testing.T) {
	tokens := newTestTokens()
	limiter := service.NewTokenBucket(0, 1)
	defer limiter.Close()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RequireToken(tokens, handler.RateLimit(limiter, inner))
	token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	send := func(onBehalf string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		req.RemoteAddr = "127.0.0.1:50000"
		req.Header.Set("Authorization", "Bearer "+token)
		if onBehalf != "" {
			req.Header.Set(remote.OnBehalfOfHeader, onBehalf)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first operator: expected 200, got %d", code)
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("first operator again: expected 429, got %d", code)
	}
	if code := send("203.0.113.8"); code != http.StatusOK {
		t.Fatalf("second operator: expected own bucket, got %d", code)
	}
}

func TestRateLimit_IgnoresOnBehalfWithoutToken(t *testing.T) {
	limiter := service.NewTokenBucket(0, 1)
	defer limiter.Close()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, inner)

	codes := make([]int, 2)
	for i, who := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		req.Header.Set(remote.OnBehalfOfHeader, who)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed header to share the address bucket, got %v", codes)
	}
}

func TestTagClient(t *testing.T) {
	var got string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(remote.OnBehalfOfHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	client := remote.New(api.URL)
	h := handler.TagClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := client.DeleteUser(r.Context(), "1"); err != nil {
			t.Errorf("DeleteUser: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req.RemoteAddr = "203.0.113.9:41000"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.9" {
		t.Fatalf("expected forwarded client 203.0.113.9, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.SecurityHeaders(inner).ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

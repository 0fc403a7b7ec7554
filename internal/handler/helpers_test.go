package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/user-roster/internal/handler"
	"github.com/msomdec/user-roster/internal/remote"
	"github.com/msomdec/user-roster/internal/repository/sqlite"
	"github.com/msomdec/user-roster/internal/service"
	"github.com/msomdec/user-roster/internal/store"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

func newTestUserService(t *testing.T) *service.UserService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return service.NewUserService(db.Users())
}

func newTestTokens() *service.TokenIssuer {
	return service.NewTokenIssuer(testJWTSecret, "roster-screen", time.Hour)
}

// newAPIServer starts the users API over a fresh database.
func newAPIServer(t *testing.T, tokens *service.TokenIssuer) (*httptest.Server, *service.UserService) {
	t.Helper()
	users := newTestUserService(t)
	limiter := service.NewTokenBucket(100, 100)
	t.Cleanup(limiter.Close)

	mux := http.NewServeMux()
	handler.RegisterAPIRoutes(mux, users, tokens, limiter)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, users
}

// newScreenServer starts the roster screen backed by a store that talks to
// the users API at apiURL.
func newScreenServer(t *testing.T, apiURL string, tokens *service.TokenIssuer) (*httptest.Server, *store.UserStore) {
	t.Helper()
	client := remote.New(apiURL, remote.WithTokenSource(tokens.Issue))
	roster := store.New(client)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, roster)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv, roster
}

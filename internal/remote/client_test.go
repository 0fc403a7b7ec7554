package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/user-roster/internal/domain"
	"github.com/msomdec/user-roster/internal/remote"
)

var ann = domain.User{ID: "1", FirstName: "Ann", LastName: "Lee", Age: 30, PhoneNumber: 5551234567}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListUsers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, http.StatusOK, map[string]any{"users": []domain.User{ann}})
	}))
	defer ts.Close()

	users, err := remote.New(ts.URL).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.User{ann}, users)
}

func TestListUsers_EmptyIsNonNil(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"users": nil})
	}))
	defer ts.Close()

	users, err := remote.New(ts.URL).ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestGetUser_EscapesID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/a%2Fb", r.URL.EscapedPath())
		writeJSON(t, w, http.StatusOK, map[string]any{"user": ann})
	}))
	defer ts.Close()

	u, err := remote.New(ts.URL).GetUser(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, ann, *u)
}

func TestCreateUser(t *testing.T) {
	in := domain.UserInput{FirstName: "Ann", LastName: "Lee", Age: 30, PhoneNumber: 5551234567}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got domain.UserInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, in, got)

		writeJSON(t, w, http.StatusCreated, map[string]any{"user": ann})
	}))
	defer ts.Close()

	u, err := remote.New(ts.URL).CreateUser(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestUpdateUser(t *testing.T) {
	in := domain.UserInput{FirstName: "Ann", LastName: "Lee", Age: 31, PhoneNumber: 5551234567}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/users/1", r.URL.Path)
		updated := ann
		updated.Age = 31
		writeJSON(t, w, http.StatusOK, map[string]any{"user": updated})
	}))
	defer ts.Close()

	u, err := remote.New(ts.URL).UpdateUser(context.Background(), "1", in)
	require.NoError(t, err)
	assert.Equal(t, 31, u.Age)
}

func TestDeleteUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, remote.New(ts.URL).DeleteUser(context.Background(), "1"))
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "User not found."})
	}))
	defer ts.Close()

	err := remote.New(ts.URL).DeleteUser(context.Background(), "missing")
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "User not found.", se.Message)
	assert.Equal(t, "delete user", se.Op)
	assert.True(t, remote.IsNotFound(err))
}

func TestStatusError_PlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := remote.New(ts.URL).ListUsers(context.Background())
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Internal Server Error", se.Message)
	assert.False(t, remote.IsNotFound(err))
}

func TestBearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"users": []domain.User{}})
	}))
	defer ts.Close()

	c := remote.New(ts.URL, remote.WithTokenSource(func() (string, error) { return "abc123", nil }))
	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)
}

func TestTokenSourceError(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	errToken := errors.New("no signing key")
	c := remote.New(ts.URL, remote.WithTokenSource(func() (string, error) { return "", errToken }))
	_, err := c.ListUsers(context.Background())
	assert.ErrorIs(t, err, errToken)
	assert.False(t, called, "request must not be sent without a token")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := remote.New(ts.URL, remote.WithTimeout(20*time.Millisecond))
	_, err := c.ListUsers(context.Background())
	assert.Error(t, err)
}

func TestMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	_, err := remote.New(ts.URL).GetUser(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestOnBehalfOfHeader(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get(remote.OnBehalfOfHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := remote.New(ts.URL)
	require.NoError(t, c.DeleteUser(remote.OnBehalfOf(context.Background(), "203.0.113.7"), "1"))
	require.NoError(t, c.DeleteUser(context.Background(), "1"))

	assert.Equal(t, []string{"203.0.113.7", ""}, got)
}

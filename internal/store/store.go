// Package store holds the screen's in-memory view of the user roster.
//
// The UserStore owns the collection, the selected user and the list loading
// state. All mutation goes through its five operations, and every operation
// applies its change only after the remote call has succeeded.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/msomdec/user-roster/internal/domain"
)

// Client is the remote users API the store is backed by.
type Client interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, in domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var (
	errMissingID  = errors.New("response record has no id")
	errIDMismatch = errors.New("response record has a different id")
)

// UserStore is safe for concurrent use.
type UserStore struct {
	client Client

	mu       sync.RWMutex
	users    map[string]domain.User
	order    []string
	selected *domain.User
	loading  domain.LoadingState

	flight singleflight.Group
	keys   keyLocks
}

// New creates an empty store backed by client.
func New(client Client) *UserStore {
	return &UserStore{
		client:  client,
		users:   make(map[string]domain.User),
		loading: domain.LoadingIdle,
	}
}

// FetchAllUsers replaces the collection with the remote set. On failure the
// collection is kept as it was and the loading state becomes failed.
// Concurrent callers share a single outstanding request. The shared request
// is not cancelled with ctx; a caller whose ctx ends stops waiting for it.
func (s *UserStore) FetchAllUsers(ctx context.Context) error {
	ch := s.flight.DoChan(OpList, func() (any, error) {
		return nil, s.fetchAll(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &domain.RemoteError{Op: OpList, Err: ctx.Err()}
	}
}

func (s *UserStore) fetchAll(ctx context.Context) error {
	s.setLoading(domain.LoadingPending)

	users, err := s.client.ListUsers(ctx)
	if err != nil {
		s.setLoading(domain.LoadingFailed)
		slog.Warn("fetch all users", "error", err)
		return &domain.RemoteError{Op: OpList, Err: err}
	}

	s.mu.Lock()
	s.users = make(map[string]domain.User, len(users))
	s.order = make([]string, 0, len(users))
	for _, u := range users {
		if _, dup := s.users[u.ID]; !dup {
			s.order = append(s.order, u.ID)
		}
		s.users[u.ID] = u
	}
	s.loading = domain.LoadingSucceeded
	s.mu.Unlock()

	slog.Debug("fetched all users", "count", len(users))
	return nil
}

// FetchUserByID loads one user and makes it the selected user. On failure
// the selected user is left unchanged. Concurrent loads of the same id share
// one request, as in FetchAllUsers.
func (s *UserStore) FetchUserByID(ctx context.Context, id string) (domain.User, error) {
	ch := s.flight.DoChan(OpGet+":"+id, func() (any, error) {
		return s.fetchOne(context.WithoutCancel(ctx), id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.User{}, res.Err
		}
		return res.Val.(domain.User), nil
	case <-ctx.Done():
		return domain.User{}, &domain.RemoteError{Op: OpGet, ID: id, Err: ctx.Err()}
	}
}

func (s *UserStore) fetchOne(ctx context.Context, id string) (domain.User, error) {
	u, err := s.client.GetUser(ctx, id)
	if err == nil {
		err = checkID(u, id)
	}
	if err != nil {
		slog.Warn("fetch user", "id", id, "error", err)
		return domain.User{}, &domain.RemoteError{Op: OpGet, ID: id, Err: err}
	}

	s.mu.Lock()
	sel := *u
	s.selected = &sel
	s.mu.Unlock()

	return *u, nil
}

// CreateUser sends in to the backend and inserts the returned record, with
// its server-assigned id, at the end of the collection.
func (s *UserStore) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	u, err := s.client.CreateUser(ctx, in)
	if err == nil && (u == nil || u.ID == "") {
		err = errMissingID
	}
	if err != nil {
		slog.Warn("create user", "error", err)
		return domain.User{}, &domain.RemoteError{Op: OpCreate, Err: err}
	}

	s.put(*u)
	slog.Debug("created user", "id", u.ID)
	return *u, nil
}

// UpdateUserByID replaces the record at id with the backend-confirmed
// version. Operations on the same id run one at a time.
func (s *UserStore) UpdateUserByID(ctx context.Context, id string, in domain.UserInput) (domain.User, error) {
	unlock := s.keys.lock(id)
	defer unlock()

	u, err := s.client.UpdateUser(ctx, id, in)
	if err == nil {
		err = checkID(u, id)
	}
	if err != nil {
		slog.Warn("update user", "id", id, "error", err)
		return domain.User{}, &domain.RemoteError{Op: OpUpdate, ID: id, Err: err}
	}

	s.put(*u)
	slog.Debug("updated user", "id", id)
	return *u, nil
}

// DeleteUserByID removes id from the collection once the backend confirms.
func (s *UserStore) DeleteUserByID(ctx context.Context, id string) error {
	unlock := s.keys.lock(id)
	defer unlock()

	if err := s.client.DeleteUser(ctx, id); err != nil {
		slog.Warn("delete user", "id", id, "error", err)
		return &domain.RemoteError{Op: OpDelete, ID: id, Err: err}
	}

	s.mu.Lock()
	if _, ok := s.users[id]; ok {
		delete(s.users, id)
		s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	}
	s.mu.Unlock()

	slog.Debug("deleted user", "id", id)
	return nil
}

// Users returns the collection in listing order.
func (s *UserStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out
}

// User returns the stored record for id.
func (s *UserStore) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Len returns the number of records in the collection.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Selected returns the user most recently loaded for editing.
func (s *UserStore) Selected() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return domain.User{}, false
	}
	return *s.selected, true
}

// ClearSelected forgets the selected user, e.g. when the edit form closes.
func (s *UserStore) ClearSelected() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Loading returns the state of the most recent list fetch.
func (s *UserStore) Loading() domain.LoadingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *UserStore) setLoading(state domain.LoadingState) {
	s.mu.Lock()
	s.loading = state
	s.mu.Unlock()
}

// put replaces u in place, or appends it when the id is new.
func (s *UserStore) put(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.order = append(s.order, u.ID)
	}
	s.users[u.ID] = u
}

// checkID rejects a response that is not the record for id.
func checkID(u *domain.User, id string) error {
	switch {
	case u == nil || u.ID == "":
		return errMissingID
	case u.ID != id:
		return errIDMismatch
	}
	return nil
}

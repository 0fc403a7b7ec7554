package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/msomdec/user-roster/internal/domain"
	"github.com/msomdec/user-roster/internal/validate"
)

// UserService implements the users API behind the remote client.
type UserService struct {
	users domain.UserRepository
	newID func() string
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users, newID: uuid.NewString}
}

// List returns all users in creation order.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.users.GetByID(ctx, id)
}

// Create validates in, assigns a new id and stores the user.
func (s *UserService) Create(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	if err := validate.Input(in); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:          s.newID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Age:         in.Age,
	}

	err := s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrDuplicateID) {
		// A UUID collision is practically impossible; one retry covers it.
		user.ID = s.newID()
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update validates in and replaces the fields of the user at id.
func (s *UserService) Update(ctx context.Context, id string, in domain.UserInput) (*domain.User, error) {
	if err := validate.Input(in); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.PhoneNumber = in.PhoneNumber
	user.Age = in.Age

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes the user at id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

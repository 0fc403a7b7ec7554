package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// User is a single roster entry. ID is assigned by the backend and never
// changes once the record exists.
type User struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber int64     `json:"phoneNumber"`
	Age         int       `json:"age"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// UserInput is the payload for creating or updating a user.
type UserInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber int64  `json:"phoneNumber"`
	Age         int    `json:"age"`
}

// UserForm holds the raw string values of the add/edit form.
type UserForm struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Age         string `json:"age"`
	PhoneNumber string `json:"phoneNumber"`
}

// FieldErrors holds one message per form field. An empty string means the
// field has no error.
type FieldErrors struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Age         string `json:"age"`
	PhoneNumber string `json:"phoneNumber"`
}

// Form field names, shared by validation errors and the rendered inputs.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldAge         = "age"
	FieldPhoneNumber = "phoneNumber"
)

// Empty reports whether no field carries an error.
func (e FieldErrors) Empty() bool {
	return e == FieldErrors{}
}

// Err returns the first recorded field error as a *ValidationError, or nil.
func (e FieldErrors) Err() error {
	switch {
	case e.FirstName != "":
		return &ValidationError{Field: FieldFirstName, Message: e.FirstName}
	case e.LastName != "":
		return &ValidationError{Field: FieldLastName, Message: e.LastName}
	case e.Age != "":
		return &ValidationError{Field: FieldAge, Message: e.Age}
	case e.PhoneNumber != "":
		return &ValidationError{Field: FieldPhoneNumber, Message: e.PhoneNumber}
	}
	return nil
}

// Input converts the form into a UserInput. Callers must validate the form
// first; unparseable numbers come back as zero.
func (f UserForm) Input() UserInput {
	age, _ := strconv.Atoi(strings.TrimSpace(f.Age))
	phone, _ := strconv.ParseInt(strings.TrimSpace(f.PhoneNumber), 10, 64)
	return UserInput{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		PhoneNumber: phone,
		Age:         age,
	}
}

// FormFromUser pre-fills an edit form from a stored user.
func FormFromUser(u User) UserForm {
	return UserForm{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Age:         strconv.Itoa(u.Age),
		PhoneNumber: strconv.FormatInt(u.PhoneNumber, 10),
	}
}

// FormFromInput renders an input back into raw form values.
func FormFromInput(in UserInput) UserForm {
	return FormFromUser(User{FirstName: in.FirstName, LastName: in.LastName, Age: in.Age, PhoneNumber: in.PhoneNumber})
}

// LoadingState tracks the outcome of the most recent list fetch.
type LoadingState string

const (
	LoadingIdle      LoadingState = "idle"
	LoadingPending   LoadingState = "pending"
	LoadingSucceeded LoadingState = "succeeded"
	LoadingFailed    LoadingState = "failed"
)

func (s LoadingState) String() string { return string(s) }

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

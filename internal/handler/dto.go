package handler

import (
	"time"

	"github.com/msomdec/user-roster/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber int64  `json:"phoneNumber"`
	Age         int    `json:"age"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func toUserDTO(u *domain.User) UserDTO {
	dto := UserDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Age:         u.Age,
	}
	if !u.CreatedAt.IsZero() {
		dto.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	if !u.UpdatedAt.IsZero() {
		dto.UpdatedAt = u.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// userInputRequest is the body of create and update requests.
type userInputRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber int64  `json:"phoneNumber"`
	Age         int    `json:"age"`
}

func (r userInputRequest) toInput() domain.UserInput {
	return domain.UserInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Age:         r.Age,
	}
}

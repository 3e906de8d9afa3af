package dto

import (
	"time"

	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

// UserResponse is the public view of an account. The password hash never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to its response DTO.
func MapUserToResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

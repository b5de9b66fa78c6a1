package users

import (
	"errors"
	"time"

	"rolesapi/internal/domain/roles"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrUnknownRole       = errors.New("role does not exist")
	QueryTimeoutDuration = time.Second * 5
)

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RoleID      int64  `json:"role_id"`
	// Role is filled by the read queries that join roles.
	Role *roles.Role `json:"role,omitempty"`
}

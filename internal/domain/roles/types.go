package roles

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("role not found")
	ErrDuplicateName     = errors.New("a role with that name already exists")
	ErrInUse             = errors.New("role is assigned to users")
	QueryTimeoutDuration = time.Second * 5
)

// Role groups users. The users holding a role are not stored on it; they are
// looked up through users.role_id.
type Role struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

package rbac

import (
	"errors"
	"time"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Role represents a named bundle of permissions.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission represents an atomic named grant.
type Permission struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents an account visible on the user-permission screen,
// including the names of the roles it currently holds.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserGrants is the split view of a user's permissions: grants assigned
// straight to the user and grants obtained through role membership.
type UserGrants struct {
	DirectIDs    []int64 `json:"direct_permission_ids"`
	InheritedIDs []int64 `json:"inherited_permission_ids"`
}

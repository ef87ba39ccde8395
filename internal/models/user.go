package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleRegular       = "regular"
	RoleModerator     = "moderator"
	RoleAdministrator = "administrator"
)

// User statuses
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
	StatusPending = "pending"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdministratorOrModerator reports whether the user holds a privileged role.
// Privileged accounts are exempt from automated status changes.
func (u *User) IsAdministratorOrModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdministrator
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if u.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	if len(u.DisplayName) < 2 || len(u.DisplayName) > 100 {
		return fmt.Errorf("display name length invalid")
	}
	switch u.Role {
	case RoleRegular, RoleModerator, RoleAdministrator:
	default:
		return fmt.Errorf("unknown role: %s", u.Role)
	}
	return nil
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

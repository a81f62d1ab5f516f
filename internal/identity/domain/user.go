package domain

import (
	"errors"
	"time"
)

// Roles.
const (
	RolePassenger = "passenger"
	RoleDriver    = "driver"
	RoleAdmin     = "admin"
)

// Account statuses. Registration creates a pending account that an
// admin must approve before login is allowed.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsApproved reports whether the account may log in.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotApproved    = errors.New("account not approved yet")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyProcessed   = errors.New("user not found or already processed")
	ErrInvalidRole        = errors.New("invalid role")
)

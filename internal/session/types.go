package session

import (
	"context"
	"fmt"

	"codeberg.org/edtech/portal/internal/routes"
)

// authenticated user as mirrored from the backend
type User struct {
	ID             string      `json:"_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           routes.Role `json:"role"`
	Grade          string      `json:"grade,omitempty"`
	ProfilePicture string      `json:"profilePicture,omitempty"`
}

// login form input
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// registration form input
type Registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Grade    string `json:"grade" validate:"required,oneof=KG1 KG2 1 2 3 4 5 6 7 8 9 10 11 12"`
}

// backend reply to a registration; the account stays unverified
type RegisterResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// the REST backend as seen by the store
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*User, error)
	Register(ctx context.Context, reg Registration) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, code string) (string, error)
	CurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*User, error)
}

// session lifecycle
type Status int

const (
	StatusAnonymous Status = iota
	StatusChecking
	StatusAuthenticated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// a point-in-time copy of the store
type State struct {
	Status    Status
	User      *User
	IsLoading bool
	Err       error
}

// reports whether the state holds a confirmed user
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// the persisted part of the state
type Snapshot struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// mirrors snapshots to durable storage
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// backend response envelope
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

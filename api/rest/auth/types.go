package auth

import (
	"codeberg.org/edtech/portal/internal/session"
	"github.com/gorilla/sessions"
)

// name of the refresh token cookie set by the backend
const RefreshTokenCookie = "refreshToken"

// name of the cookie holding flash messages
const flashSessionName = "portal_flash"

// flash keys
const (
	flashError  = "error"
	flashNotice = "notice"
)

// serves the browser-facing auth pages on top of the backend client
type Handlers struct {
	client *session.Client
	flash  sessions.Store
	secure bool
}

// login form
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// registration form
type RegisterForm struct {
	Name     string `form:"name" binding:"required,max=100"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	Grade    string `form:"grade" binding:"required"`
}

// email verification form
type VerifyForm struct {
	Code string `form:"code" uri:"code" binding:"required,alphanum"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *session.User `json:"user"`
}

package pages

import "codeberg.org/edtech/portal/internal/routes"

// one sidebar entry
type NavItem struct {
	Title string
	Path  string
}

// data handed to dashboard.tmpl
type DashboardView struct {
	Title  string
	Role   routes.Role
	Page   string
	UserID string
	Email  string
	Nav    []NavItem
}

// session summary returned by /api/v1/session
type SessionResponse struct {
	UserID string      `json:"user_id"`
	Role   routes.Role `json:"role"`
	Email  string      `json:"email,omitempty"`
	Home   string      `json:"home"`
}

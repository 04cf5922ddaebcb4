package tui

import (
	"context"

	"codeberg.org/edtech/portal/internal/guard"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
)

// represents the current screen of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateForm
	StateDashboard
)

// main TUI application model
type Model struct {
	ctx       context.Context
	store     *session.Store
	states    chan session.State
	state     AppState
	mode      string
	width     int
	height    int
	err       error
	notice    string
	welcome   *Welcome
	form      *Form
	dashboard *Dashboard
}

// which backend action a form submits to
type FormKind int

const (
	FormLogin FormKind = iota
	FormRegister
	FormVerify
)

// a stack of labelled text inputs
type Form struct {
	kind    FormKind
	labels  []string
	inputs  []textinput.Model
	focused int
	busy    bool
	err     string
}

// role dashboard protected by a guard
type Dashboard struct {
	role     routes.Role
	guard    *guard.Guard
	user     *session.User
	pages    []routes.Page
	selected int
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
}

// welcome screen model
type Welcome struct {
	mode     string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent whenever the session store changes
type StateChangedMsg struct {
	State session.State
}

// sent when the persisted session has been revalidated
type InitializedMsg struct {
	err error
}

// sent to open a form
type OpenFormMsg struct {
	kind FormKind
}

// sent to open the dashboard of the current user
type OpenDashboardMsg struct{}

// sent when a login attempt completes
type LoginDoneMsg struct {
	user *session.User
	err  error
}

// sent when a registration completes
type RegisterDoneMsg struct {
	result *session.RegisterResult
	err    error
}

// sent when an email verification completes
type VerifyDoneMsg struct {
	message string
	err     error
}

// sent when logout completes; the local session is gone either way
type LogoutDoneMsg struct {
	err error
}

// sent when a guard finishes its mount-time check
type GuardResolvedMsg struct {
	err error
}

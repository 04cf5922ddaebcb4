// Package guard re-checks authorization for views that are already loaded.
//
// The web gate only runs on navigation; a view that stays on screen can
// outlive the session that opened it. A Guard watches the session store
// instead and tells its view what to show.
package guard

import (
	"context"
	"errors"
	"sync/atomic"

	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
)

// what the wrapped view should do
type Action int

const (
	ActionLoading Action = iota
	ActionRedirect
	ActionRender
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRedirect:
		return "redirect"
	case ActionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Path is set only for ActionRedirect
type Outcome struct {
	Action Action
	Path   string
}

// the part of the session store a guard needs
type Source interface {
	Snapshot() session.State
	GetUser(ctx context.Context) (*session.User, error)
}

// protects one view; RequiredRole may be empty for any authenticated user
type Guard struct {
	source       Source
	requiredRole routes.Role
	resolved     atomic.Bool
}

func New(source Source, requiredRole routes.Role) *Guard {
	return &Guard{
		source:       source,
		requiredRole: requiredRole,
	}
}

// runs the mount-time check: fetch the user unless the store already has a
// session or is fetching one. the guard is resolved when this returns.
func (g *Guard) Mount(ctx context.Context) error {
	defer g.resolved.Store(true)

	state := g.source.Snapshot()
	if state.IsAuthenticated() || state.Status == session.StatusChecking {
		return nil
	}

	if _, err := g.source.GetUser(ctx); err != nil && !errors.Is(err, session.ErrSuperseded) {
		return err
	}

	return nil
}

// reports what the view should show right now
func (g *Guard) Evaluate() Outcome {
	return Decide(g.source.Snapshot(), g.requiredRole, g.resolved.Load())
}

// the pure form of Evaluate
func Decide(state session.State, requiredRole routes.Role, resolved bool) Outcome {
	if !resolved || state.Status == session.StatusChecking || state.IsLoading {
		return Outcome{Action: ActionLoading}
	}

	if !state.IsAuthenticated() {
		return Outcome{Action: ActionRedirect, Path: routes.LoginPath}
	}

	if requiredRole != "" && state.User.Role != requiredRole {
		return Outcome{Action: ActionRedirect, Path: routes.Home(state.User.Role)}
	}

	return Outcome{Action: ActionRender}
}

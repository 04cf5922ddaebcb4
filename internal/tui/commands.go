package tui

import (
	"context"
	"time"

	"codeberg.org/edtech/portal/internal/guard"
	"codeberg.org/edtech/portal/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// upper bound for a single store action started from the UI
const actionTimeout = 30 * time.Second

// forwards store changes into the program; the channel keeps only what
// the UI has not consumed yet and drops the rest
func subscribe(store *session.Store) chan session.State {
	ch := make(chan session.State, 16)

	store.Subscribe(func(st session.State) {
		select {
		case ch <- st:
		default:
		}
	})

	return ch
}

func waitForState(ch chan session.State) tea.Cmd {
	return func() tea.Msg {
		return StateChangedMsg{State: <-ch}
	}
}

func initialize(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		return InitializedMsg{err: store.Initialize(ctx)}
	}
}

func login(ctx context.Context, store *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		user, err := store.Login(ctx, email, password)
		return LoginDoneMsg{user: user, err: err}
	}
}

func register(ctx context.Context, store *session.Store, reg session.Registration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		result, err := store.Register(ctx, reg)
		return RegisterDoneMsg{result: result, err: err}
	}
}

func verify(ctx context.Context, store *session.Store, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		message, err := store.VerifyEmail(ctx, code)
		return VerifyDoneMsg{message: message, err: err}
	}
}

func logout(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		return LogoutDoneMsg{err: store.Logout(ctx)}
	}
}

func mountGuard(ctx context.Context, g *guard.Guard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()

		return GuardResolvedMsg{err: g.Mount(ctx)}
	}
}

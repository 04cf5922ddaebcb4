package tui

import (
	"context"
	"fmt"

	"codeberg.org/edtech/portal/internal/guard"
	"codeberg.org/edtech/portal/internal/logger"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(ctx context.Context, store *session.Store, mode string) *Model {
	width, height := terminalSize()

	return &Model{
		ctx:     ctx,
		store:   store,
		states:  subscribe(store),
		state:   StateWelcome,
		mode:    mode,
		width:   width,
		height:  height,
		welcome: NewWelcome(mode),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(initialize(m.ctx, m.store), waitForState(m.states))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.err != nil {
			m.err = nil
			return m, nil
		}

		if msg.String() == "esc" && m.state != StateWelcome {
			m.toWelcome("")
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case StateChangedMsg:
		m.welcome.SetSession(msg.State)
		return m, tea.Batch(m.follow(), waitForState(m.states))

	case InitializedMsg:
		if msg.err != nil {
			logger.Warn("failed to restore session", "error", msg.err)
		}
		return m, nil

	case OpenFormMsg:
		m.form = NewForm(msg.kind)
		m.state = StateForm
		m.notice = ""
		return m, nil

	case OpenDashboardMsg:
		st := m.store.Snapshot()
		if !st.IsAuthenticated() {
			return m, openForm(FormLogin)
		}
		return m, m.openDashboard(st.User.Role)

	case logoutRequestMsg:
		return m, logout(m.ctx, m.store)

	case LoginDoneMsg:
		return m, m.loginDone(msg)

	case RegisterDoneMsg:
		if msg.err != nil {
			m.formFailed(msg.err)
			return m, nil
		}

		m.form = NewForm(FormVerify)
		m.notice = msg.result.Message
		return m, nil

	case VerifyDoneMsg:
		if msg.err != nil {
			m.formFailed(msg.err)
			return m, nil
		}

		m.form = NewForm(FormLogin)
		m.notice = msg.message
		return m, nil

	case LogoutDoneMsg:
		if msg.err != nil {
			logger.Warn("backend logout failed", "error", msg.err)
		}
		m.toWelcome("signed out")
		return m, nil

	case GuardResolvedMsg:
		if msg.err != nil {
			logger.Warn("session check failed", "error", msg.err)
		}
		return m, m.follow()
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateForm:
		return m, m.updateForm(msg)

	case StateDashboard:
		return m, m.updateDashboard(msg)

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	st := m.store.Snapshot()

	var body string
	switch m.state {
	case StateWelcome:
		body = m.welcome.View(st)
	case StateForm:
		body = m.form.View(m.spinnerView())
	case StateDashboard:
		body = m.dashboard.View(st)
	default:
		body = "Unknown state"
	}

	if m.notice != "" {
		body = noticeStyle.Render(m.notice) + "\n" + body
	}

	return body
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	submit, cmd := m.form.Update(msg)
	if !submit {
		return cmd
	}

	m.form.busy = true
	m.form.err = ""

	switch m.form.kind {
	case FormLogin:
		return login(m.ctx, m.store, m.form.value("email"), m.form.raw("password"))
	case FormRegister:
		return register(m.ctx, m.store, m.form.registration())
	case FormVerify:
		return verify(m.ctx, m.store, m.form.value("code"))
	default:
		return nil
	}
}

func (m *Model) updateDashboard(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "l":
			return logout(m.ctx, m.store)
		case "r":
			store := m.store
			ctx := m.ctx
			return func() tea.Msg {
				if _, err := store.Refresh(ctx); err != nil {
					return ErrorMsg{err: fmt.Errorf("refresh failed: %s", session.Message(err))}
				}
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)

	return cmd
}

func (m *Model) loginDone(msg LoginDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.formFailed(msg.err)
		return nil
	}

	logger.Info("logged in", "user_id", msg.user.ID, "role", msg.user.Role.String())

	m.notice = ""
	return m.openDashboard(msg.user.Role)
}

func (m *Model) formFailed(err error) {
	if m.form == nil {
		return
	}

	m.form.busy = false
	m.form.err = session.Message(err)
	m.store.DismissError()
}

func (m *Model) openDashboard(role routes.Role) tea.Cmd {
	m.dashboard = NewDashboard(m.store, role, m.width)
	m.state = StateDashboard
	m.notice = ""

	return tea.Batch(mountGuard(m.ctx, m.dashboard.guard), m.dashboard.spinner.Tick)
}

// applies the guard's verdict while a dashboard is on screen
func (m *Model) follow() tea.Cmd {
	if m.state != StateDashboard || m.dashboard == nil {
		return nil
	}

	outcome := m.dashboard.Outcome()
	if outcome.Action != guard.ActionRedirect {
		return nil
	}

	if outcome.Path == routes.LoginPath {
		m.form = NewForm(FormLogin)
		m.state = StateForm
		m.notice = "please sign in to continue"
		return nil
	}

	st := m.store.Snapshot()
	if st.IsAuthenticated() && routes.Home(st.User.Role) == outcome.Path {
		return m.openDashboard(st.User.Role)
	}

	return nil
}

func (m *Model) toWelcome(notice string) {
	m.state = StateWelcome
	m.form = nil
	m.dashboard = nil
	m.notice = notice
}

func (m *Model) spinnerView() string {
	if m.dashboard != nil {
		return m.dashboard.spinner.View()
	}

	return spinner.New().View()
}

func errorView(err error) string {
	return fmt.Sprintf("\n  %s\n\n  Press any key to continue, Ctrl+C to exit\n", errorStyle.Render("Error: "+err.Error()))
}

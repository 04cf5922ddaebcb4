package tui

import (
	"fmt"
	"strings"

	"codeberg.org/edtech/portal/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// returns a new welcome screen
func NewWelcome(mode string) *Welcome {
	w := &Welcome{mode: mode}
	w.SetSession(session.State{})

	return w
}

// updates which commands are offered for the current session
func (m *Welcome) SetSession(st session.State) {
	signedIn := st.IsAuthenticated()

	m.commands = []Command{
		{Name: "login", Description: "sign in with email and password", Available: !signedIn},
		{Name: "register", Description: "create a new account", Available: !signedIn},
		{Name: "verify", Description: "enter an email verification code", Available: !signedIn},
		{Name: "dashboard", Description: "open your dashboard", Available: signedIn},
		{Name: "logout", Description: "sign out", Available: signedIn},
		{Name: "quit", Description: "exit the portal", Available: true},
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := m.executeCommand()
			m.input = ""
			return m, cmd
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		default:
			if len(msg.String()) == 1 {
				m.input += msg.String()
			}
		}
	}

	return m, nil
}

func (m *Welcome) View(st session.State) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("personalized learning for students and teachers"))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("mode: %s | session: %s", strings.ToUpper(m.mode), describe(st))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		if !cmd.Available {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", //nolint:errcheck
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> ") + inputStyle.Render(m.input+"_"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	name := strings.TrimSpace(m.input)
	if name == "" {
		return nil
	}

	for _, cmd := range m.commands {
		if cmd.Name != name {
			continue
		}

		if !cmd.Available {
			return errorCmd(fmt.Errorf("%s is not available right now", name))
		}

		return commandFor(name)
	}

	return errorCmd(fmt.Errorf("unknown command: %s", name))
}

func commandFor(name string) tea.Cmd {
	switch name {
	case "quit":
		return tea.Quit
	case "login":
		return openForm(FormLogin)
	case "register":
		return openForm(FormRegister)
	case "verify":
		return openForm(FormVerify)
	case "dashboard":
		return func() tea.Msg { return OpenDashboardMsg{} }
	case "logout":
		return func() tea.Msg { return logoutRequestMsg{} }
	default:
		return nil
	}
}

// sent when the user asks to log out; the model owns the store
type logoutRequestMsg struct{}

func openForm(kind FormKind) tea.Cmd {
	return func() tea.Msg { return OpenFormMsg{kind: kind} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{err: err} }
}

func describe(st session.State) string {
	switch {
	case st.IsAuthenticated():
		return fmt.Sprintf("%s (%s)", st.User.Email, st.User.Role)
	case st.Status == session.StatusChecking:
		return "checking"
	default:
		return "signed out"
	}
}

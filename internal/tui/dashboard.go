package tui

import (
	"fmt"
	"strings"

	"codeberg.org/edtech/portal/internal/guard"
	"codeberg.org/edtech/portal/internal/routes"
	"codeberg.org/edtech/portal/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// width of the page list column
const sidebarWidth = 28

// returns a dashboard for role, guarded against the given source
func NewDashboard(source guard.Source, role routes.Role, width int) *Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorTeal)

	d := &Dashboard{
		role:    role,
		guard:   guard.New(source, role),
		pages:   routes.Pages(role),
		spinner: s,
	}
	d.resize(width)

	return d
}

func (d *Dashboard) resize(width int) {
	d.width = width

	wrap := max(width-sidebarWidth-6, 20)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		d.renderer = renderer
	}
}

// the guard's current verdict
func (d *Dashboard) Outcome() guard.Outcome {
	return d.guard.Evaluate()
}

func (d *Dashboard) Update(msg tea.Msg) (*Dashboard, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.WindowSizeMsg:
		d.resize(msg.Width)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if d.selected > 0 {
				d.selected--
			}
		case "down", "j":
			if d.selected < len(d.pages)-1 {
				d.selected++
			}
		}
	}

	return d, nil
}

func (d *Dashboard) View(st session.State) string {
	outcome := d.Outcome()
	if outcome.Action == guard.ActionLoading {
		return "\n  " + d.spinner.View() + infoStyle.Render(" checking your session...")
	}

	if outcome.Action == guard.ActionRedirect {
		return "\n  " + infoStyle.Render("redirecting to "+outcome.Path+"...")
	}

	var nav strings.Builder
	nav.WriteString(commandStyle.Render(strings.ToUpper(string(d.role))))
	nav.WriteString("\n\n")

	for i, p := range d.pages {
		if i == d.selected {
			nav.WriteString(menuItemSelectedStyle.Render(p.Title))
		} else {
			nav.WriteString(menuItemStyle.Render(p.Title))
		}
		nav.WriteString("\n")
	}

	sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(nav.String())
	content := d.renderPage(st.User)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content))
	b.WriteString("\n")

	if st.Err != nil {
		b.WriteString(errorStyle.Render(session.Message(st.Err)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: pages | r: refresh session | l: log out | esc: back"))

	return b.String()
}

// renders the selected page as markdown
func (d *Dashboard) renderPage(user *session.User) string {
	if len(d.pages) == 0 {
		return ""
	}

	page := d.pages[d.selected]

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", page.Title) //nolint:errcheck

	if user != nil {
		fmt.Fprintf(&md, "Signed in as **%s** (%s)", user.Name, user.Email) //nolint:errcheck
		if user.Grade != "" {
			fmt.Fprintf(&md, ", grade %s", user.Grade) //nolint:errcheck
		}
		md.WriteString(".\n\n")
	}

	fmt.Fprintf(&md, "Open `%s` in the web portal to use this page.\n", page.URL(d.role)) //nolint:errcheck

	if d.renderer == nil {
		return md.String()
	}

	out, err := d.renderer.Render(md.String())
	if err != nil {
		return md.String()
	}

	return out
}

package tui

import (
	"strings"

	"codeberg.org/edtech/portal/internal/session"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// returns an empty form of the given kind with the first field focused
func NewForm(kind FormKind) *Form {
	f := &Form{kind: kind}

	switch kind {
	case FormLogin:
		f.add("email", "you@school.org", false)
		f.add("password", "", true)
	case FormRegister:
		f.add("name", "full name", false)
		f.add("email", "you@school.org", false)
		f.add("password", "at least 6 characters", true)
		f.add("grade", "KG1, KG2 or 1-12", false)
	case FormVerify:
		f.add("code", "from your email", false)
	}

	f.inputs[0].Focus()

	return f
}

func (f *Form) add(label, placeholder string, secret bool) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 40
	ti.Prompt = ""
	ti.TextStyle = inputStyle

	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	f.labels = append(f.labels, label)
	f.inputs = append(f.inputs, ti)
}

func (f *Form) title() string {
	switch f.kind {
	case FormRegister:
		return "create an account"
	case FormVerify:
		return "verify your email"
	default:
		return "sign in"
	}
}

// trimmed value of a field by label
func (f *Form) value(label string) string {
	return strings.TrimSpace(f.raw(label))
}

// value of a field exactly as typed
func (f *Form) raw(label string) string {
	for i, l := range f.labels {
		if l == label {
			return f.inputs[i].Value()
		}
	}

	return ""
}

// moves focus; returns true when enter was pressed on the last field
func (f *Form) Update(msg tea.Msg) (bool, tea.Cmd) {
	if f.busy {
		return false, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.focus(f.focused + 1)
			return false, nil
		case "shift+tab", "up":
			f.focus(f.focused - 1)
			return false, nil
		case "enter":
			if f.focused < len(f.inputs)-1 {
				f.focus(f.focused + 1)
				return false, nil
			}

			return true, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)

	return false, cmd
}

func (f *Form) focus(i int) {
	n := len(f.inputs)
	i = ((i % n) + n) % n

	f.inputs[f.focused].Blur()
	f.focused = i
	f.inputs[i].Focus()
}

// builds the registration payload from the form fields
func (f *Form) registration() session.Registration {
	return session.Registration{
		Name:     f.value("name"),
		Email:    f.value("email"),
		Password: f.raw("password"),
		Grade:    f.value("grade"),
	}
}

func (f *Form) View(spin string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(f.title()))
	b.WriteString("\n")

	for i, ti := range f.inputs {
		b.WriteString(labelStyle.Render(f.labels[i]))
		b.WriteString(borderStyle.Render(ti.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	switch {
	case f.busy:
		b.WriteString(spin + infoStyle.Render(" working..."))
	case f.err != "":
		b.WriteString(errorStyle.Render(f.err))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field | enter: submit | esc: back"))

	return b.String()
}

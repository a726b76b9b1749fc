package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with application styling.
type TextInput struct {
	Model     textinput.Model
	Label     string
	submitted bool
	valid     bool
}

// NewTextInput creates a new styled text input.
func NewTextInput(label, placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}
	return TextInput{
		Model: ti,
		Label: label,
	}
}

// NewPasswordInput creates a text input that masks what is typed.
func NewPasswordInput(label string, maxWidth int) TextInput {
	t := NewTextInput(label, "", maxWidth)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has keyboard focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// View renders the labelled input.
func (t TextInput) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if t.Focused() {
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	view := labelStyle.Render(t.Label) + "\n" + t.Model.View()
	if t.submitted {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Submit marks the input as submitted with a validation result.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}

// Package login is the account screen: sign in to an existing account
// or create a new one, then pull the server-side progress down.
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/auth"
	"github.com/kilohertztli/Mathenique/internal/progress"
	"github.com/kilohertztli/Mathenique/internal/quiz"
	"github.com/kilohertztli/Mathenique/internal/remote"
	"github.com/kilohertztli/Mathenique/internal/router"
	"github.com/kilohertztli/Mathenique/internal/screen"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
	"github.com/kilohertztli/Mathenique/internal/ui/layout"
	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// Service is what the screen needs from the backend. *remote.Client
// satisfies it.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
}

// SuccessMsg is broadcast after a completed sign-in so the screen below
// can refresh its account state.
type SuccessMsg struct {
	Email string
}

type doneMsg struct {
	token string
	email string
	err   error
}

type formMode int

const (
	modeSignIn formMode = iota
	modeRegister
)

const requestTimeout = 15 * time.Second

// LoginScreen collects credentials and runs the auth exchange.
type LoginScreen struct {
	svc      Service
	auth     *auth.Manager
	progress *progress.Store

	mode   formMode
	inputs []components.TextInput
	focus  int
	busy   bool
	errMsg string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a new LoginScreen in sign-in mode.
func New(svc Service, a *auth.Manager, p *progress.Store) *LoginScreen {
	s := &LoginScreen{svc: svc, auth: a, progress: p}
	s.buildInputs()
	return s
}

// buildInputs resets the form fields for the current mode.
func (s *LoginScreen) buildInputs() {
	if s.mode == modeRegister {
		s.inputs = []components.TextInput{
			components.NewTextInput("Name", "Ada", 64),
			components.NewTextInput("Email", "you@example.com", 128),
			components.NewPasswordInput("Password", 128),
		}
	} else {
		s.inputs = []components.TextInput{
			components.NewTextInput("Email", "you@example.com", 128),
			components.NewPasswordInput("Password", 128),
		}
	}
	s.focus = 0
	s.errMsg = ""
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.inputs[0].Focus()
}

func (s *LoginScreen) Title() string {
	if s.mode == modeRegister {
		return "Create account"
	}
	return "Sign in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Create account"
	if s.mode == modeRegister {
		toggle = "Sign in"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch m := msg.(type) {
	case doneMsg:
		return s.handleDone(m)
	case tea.KeyMsg:
		return s.handleKey(m)
	}
	return s, nil
}

func (s *LoginScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}

	switch msg.String() {
	case "tab", "down":
		return s, s.moveFocus(1)
	case "shift+tab", "up":
		return s, s.moveFocus(-1)
	case "ctrl+r":
		if s.mode == modeSignIn {
			s.mode = modeRegister
		} else {
			s.mode = modeSignIn
		}
		s.buildInputs()
		return s, s.inputs[0].Focus()
	case "enter":
		if s.focus < len(s.inputs)-1 {
			return s, s.moveFocus(1)
		}
		return s.submit()
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) moveFocus(delta int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (s.focus + delta + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

// submit validates the form and fires the backend exchange.
func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	var name, email, password string
	if s.mode == modeRegister {
		name = strings.TrimSpace(s.inputs[0].Value())
		email = strings.TrimSpace(s.inputs[1].Value())
		password = s.inputs[2].Value()
		if name == "" {
			s.errMsg = "Name is required"
			return s, nil
		}
	} else {
		email = strings.TrimSpace(s.inputs[0].Value())
		password = s.inputs[1].Value()
	}

	if !strings.Contains(email, "@") {
		s.errMsg = "That doesn't look like an email address"
		return s, nil
	}
	if len(password) < 6 {
		s.errMsg = "Password must be at least 6 characters"
		return s, nil
	}

	s.busy = true
	s.errMsg = ""

	svc := s.svc
	register := s.mode == modeRegister
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if register {
			if err := svc.Register(ctx, name, email, password); err != nil {
				return doneMsg{err: err}
			}
		}
		token, err := svc.Login(ctx, email, password)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{token: token, email: email}
	}
}

func (s *LoginScreen) handleDone(m doneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if m.err != nil {
		switch {
		case errors.Is(m.err, quiz.ErrAuthExpired):
			s.errMsg = "Wrong email or password"
		case errors.Is(m.err, remote.ErrEmailTaken):
			s.errMsg = "That email is already registered"
		default:
			s.errMsg = "Could not reach the server. Try again in a moment."
		}
		return s, nil
	}

	if s.auth != nil {
		s.auth.SetSession(m.token, m.email)
	}

	p := s.progress
	email := m.email
	return s, tea.Sequence(
		func() tea.Msg {
			if p != nil {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				// Offline progress stays usable if this fails.
				_ = p.Load(ctx)
			}
			return nil
		},
		func() tea.Msg { return router.PopScreenMsg{} },
		func() tea.Msg { return SuccessMsg{Email: email} },
	)
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	title := "Welcome back"
	action := "Sign in"
	if s.mode == modeRegister {
		title = "Join Mathenique"
		action = "Create account"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")
	for i := range s.inputs {
		b.WriteString(s.inputs[i].View())
		b.WriteString("\n\n")
	}

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("Talking to the server…"))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	default:
		b.WriteString(theme.Hint.Render("Enter to " + strings.ToLower(action)))
	}

	card := lipgloss.NewStyle().Width(cw).Render(b.String())
	return components.GameFrame(card, width, height)
}

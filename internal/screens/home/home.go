// Package home is the main menu: entry points into lessons, the arena,
// statistics, and account management.
package home

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/kilohertztli/Mathenique/internal/auth"
	"github.com/kilohertztli/Mathenique/internal/progress"
	"github.com/kilohertztli/Mathenique/internal/router"
	"github.com/kilohertztli/Mathenique/internal/screen"
	"github.com/kilohertztli/Mathenique/internal/screens/arena"
	"github.com/kilohertztli/Mathenique/internal/screens/lessons"
	"github.com/kilohertztli/Mathenique/internal/screens/login"
	"github.com/kilohertztli/Mathenique/internal/screens/stats"
	"github.com/kilohertztli/Mathenique/internal/selfupdate"
	sess "github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/ui/components"
)

// Deps bundles everything the home screen hands down to the screens it
// opens.
type Deps struct {
	Controller *sess.Controller
	Progress   *progress.Store
	Auth       *auth.Manager
	Login      login.Service
	Log        *slog.Logger
	Version    string
}

// updateAvailableMsg carries the release check result.
type updateAvailableMsg struct {
	latest string
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	updateNote string
	mascot     MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	accountLabel := "LOG IN"
	if deps.Auth != nil && deps.Auth.LoggedIn() {
		accountLabel = "LOG OUT"
	}

	menuLabels := []string{"LESSONS", "ARENA", "MY STATS", accountLabel, "EXIT"}

	mascot := MascotIdle
	if deps.Progress != nil && deps.Progress.UnlockedLesson() > 1 {
		mascot = MascotCheering
	}

	h := &HomeScreen{
		deps:       deps,
		menuLabels: menuLabels,
		mascot:     mascot,
	}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: lessons.New(deps.Controller, deps.Progress)}
			}
		}},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: arena.New(deps.Controller)}
			}
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: stats.New(deps.Progress, deps.Auth)}
			}
		}},
		{Label: menuLabels[3], Action: h.accountAction},
		{Label: menuLabels[4], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

// accountAction logs out when logged in, otherwise opens the login screen.
func (h *HomeScreen) accountAction() tea.Cmd {
	if h.deps.Auth != nil && h.deps.Auth.LoggedIn() {
		h.deps.Auth.Clear()
		if h.deps.Progress != nil {
			h.deps.Progress.Reset()
		}
		return func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: New(h.deps)}
		}
	}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: login.New(h.deps.Login, h.deps.Auth, h.deps.Progress)}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.checkForUpdate()
}

// checkForUpdate asks GitHub for a newer release, quietly.
func (h *HomeScreen) checkForUpdate() tea.Cmd {
	version := h.deps.Version
	log := h.deps.Log
	return func() tea.Msg {
		checker := selfupdate.NewChecker(
			selfupdate.WithTimeout(5*time.Second),
			selfupdate.WithLogger(log),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		result, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil || !result.UpdateAvailable {
			return nil
		}
		return updateAvailableMsg{latest: result.LatestVersion}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(updateAvailableMsg); ok {
		h.updateNote = m.latest
		return h, nil
	}
	if _, ok := msg.(login.SuccessMsg); ok {
		// Rebuild so the account label and stats reflect the new session.
		fresh := New(h.deps)
		fresh.updateNote = h.updateNote
		return fresh, nil
	}
	// The backend can force a logout mid-session when the token expires;
	// rebuild when the account entry no longer matches the auth state.
	if h.deps.Auth != nil && h.deps.Auth.LoggedIn() != (h.menuLabels[3] == "LOG OUT") {
		fresh := New(h.deps)
		fresh.updateNote = h.updateNote
		return fresh.Update(msg)
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot, cw))
	}
	sections = append(sections, h.renderStatsBar(cw, compact))
	sections = append(sections, renderMenuButtons(h.menuLabels, h.menu.Selected, cw))
	if h.updateNote != "" {
		sections = append(sections, renderUpdateNote(h.updateNote, cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.GameFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

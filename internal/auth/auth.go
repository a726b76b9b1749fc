// Package auth holds the bearer-token session: keeping it between runs,
// judging whether it is still usable, and clearing it on logout.
package auth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials persists the token between runs.
type Credentials interface {
	SaveCredentials(token, email string) error
	LoadCredentials() (token, email string, err error)
	ClearCredentials() error
}

// Manager owns the current token. It satisfies the remote client's
// token provider contract.
type Manager struct {
	mu    sync.Mutex
	token string
	email string
	creds Credentials
	log   *slog.Logger
}

// NewManager builds a manager, restoring any saved token. creds may be
// nil, in which case the session lives only in memory.
func NewManager(creds Credentials, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{creds: creds, log: log}
	if creds != nil {
		token, email, err := creds.LoadCredentials()
		if err != nil {
			log.Warn("saved credentials unreadable", "error", err)
		} else if token != "" && !Expired(token, time.Now()) {
			m.token, m.email = token, email
		}
	}
	return m
}

// Token returns the current bearer token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Email returns the account the token belongs to.
func (m *Manager) Email() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

// LoggedIn reports whether a usable token is held.
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// SetSession stores a fresh token after login. A persistence failure is
// logged; the in-memory session still works for this run.
func (m *Manager) SetSession(token, email string) {
	m.mu.Lock()
	m.token, m.email = token, email
	m.mu.Unlock()

	if m.creds != nil {
		if err := m.creds.SaveCredentials(token, email); err != nil {
			m.log.Warn("credential save failed", "error", err)
		}
	}
}

// Clear drops the session, on explicit logout or a rejected token.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.token, m.email = "", ""
	m.mu.Unlock()

	if m.creds != nil {
		if err := m.creds.ClearCredentials(); err != nil {
			m.log.Warn("credential clear failed", "error", err)
		}
	}
}

// Expired reports whether the token's exp claim has passed. The claim is
// read without signature verification; the backend is the authority and
// this check only avoids sending a token that is certainly dead. A token
// that does not parse counts as expired.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.After(exp.Time)
}

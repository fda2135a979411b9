// Package session owns the authentication lifecycle: the current user
// identity and bearer token, their persistence across restarts, and the
// login/register/logout operations every authenticated view depends on.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

// Phase is the bootstrap phase of the session.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
)

// AuthAPI is the slice of the backend client the manager drives: the
// credential exchange plus installing/uninstalling the default bearer token.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, email, username, password string) (*domain.AuthResponse, error)
	SetToken(tok string)
	ClearToken()
}

// Manager holds the session state. Views receive a shared *Manager and read
// it synchronously; mutations happen from tea command goroutines, so state is
// guarded by a mutex.
type Manager struct {
	store *Store
	api   AuthAPI
	log   *slog.Logger

	mu    sync.RWMutex
	user  *domain.User
	token string
	phase Phase
}

// NewManager creates a Manager in the Initializing phase.
func NewManager(store *Store, api AuthAPI, log *slog.Logger) *Manager {
	return &Manager{store: store, api: api, log: log, phase: PhaseInitializing}
}

// Bootstrap restores the persisted session, if any, and moves the manager to
// the Ready phase. It cannot fail observably: any restore problem degrades to
// an anonymous session. A restored token is treated as valid without checking
// it against the backend; a stale token surfaces on the first 401.
func (m *Manager) Bootstrap() {
	token, user, err := m.store.Load()
	if err != nil {
		m.log.Warn("session restore failed", "error", err)
		token, user = "", nil
	}

	// User and token travel together. A token whose user snapshot was
	// corrupt or missing degrades to no session at all.
	if token != "" && user == nil {
		m.log.Warn("persisted session incomplete, discarding")
		if err := m.store.Clear(); err != nil {
			m.log.Warn("session purge failed", "error", err)
		}
		token = ""
	}

	m.mu.Lock()
	if token != "" {
		m.user = user
		m.token = token
		m.api.SetToken(token)
	}
	m.phase = PhaseReady
	m.mu.Unlock()

	if token != "" {
		m.log.Info("session restored", "user", user.Username)
	}
}

// Login exchanges credentials with the backend. On success the user and token
// are stored in memory, persisted, and the token is installed as the default
// credential; a persistence failure rolls everything back. On failure the
// session is untouched and the error is returned for the view to display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.establish(resp)
}

// Register has the same contract as Login, against the registration endpoint.
func (m *Manager) Register(ctx context.Context, email, username, password string) error {
	resp, err := m.api.Register(ctx, email, username, password)
	if err != nil {
		return err
	}
	return m.establish(resp)
}

func (m *Manager) establish(resp *domain.AuthResponse) error {
	if err := m.store.Save(resp.AccessToken, &resp.User); err != nil {
		return err
	}
	m.mu.Lock()
	m.user = &resp.User
	m.token = resp.AccessToken
	m.mu.Unlock()
	m.api.SetToken(resp.AccessToken)
	m.log.Info("session established", "user", resp.User.Username)
	return nil
}

// Logout unconditionally clears the in-memory session, purges the persisted
// entries, and uninstalls the default credential. Idempotent; never fails.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	m.api.ClearToken()
	if err := m.store.Clear(); err != nil {
		m.log.Warn("session purge failed", "error", err)
	}
}

// Invalidate is the logout-equivalent reset triggered by a 401 observed on
// any authenticated call. Wired to the backend's OnUnauthorized hook once at
// startup.
func (m *Manager) Invalidate() {
	m.log.Info("session invalidated by backend")
	m.Logout()
}

// IsAuthenticated reports token presence. Synchronous; consulted by the
// navigation gate on every render decision.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Phase returns the bootstrap phase.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// CurrentUser returns the authenticated user, or nil when anonymous.
func (m *Manager) CurrentUser() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Token returns the current bearer token, or "" when anonymous.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

package session

import (
	"context"
	"sync"

	"github.com/hupe1980/adkclient/client"
	"github.com/hupe1980/adkclient/core"
	"github.com/hupe1980/adkclient/logging"
)

// Transport is the subset of the HTTP client the manager needs.
type Transport interface {
	CreateSession(ctx context.Context, app, user string, opts client.CreateSessionOptions) (core.Session, error)
	GetSession(ctx context.Context, app, user, id string) (core.Session, error)
	DeleteSession(ctx context.Context, s core.Session) error
}

var _ Transport = (*client.Client)(nil)

// Options holds configuration overrides passed to NewManager().
type Options struct {
	// Logger receives lifecycle transitions.
	Logger logging.Logger
	// OnChange is invoked after every transition of the tracked session with
	// the new value. It runs outside the manager lock.
	OnChange func(core.Session)
}

// CreateOption customises a single Create call.
type CreateOption func(o *client.CreateSessionOptions)

// WithSessionID requests a caller chosen session id.
func WithSessionID(id string) CreateOption {
	return func(o *client.CreateSessionOptions) { o.SessionID = id }
}

// WithState seeds the state of the new session.
func WithState(state map[string]any) CreateOption {
	return func(o *client.CreateSessionOptions) { o.State = state }
}

// Manager tracks exactly one active session, or none. The tracked value is
// replaced atomically on every transition and never mutated in place.
// Public methods are safe for concurrent use.
type Manager struct {
	transport Transport
	logger    logging.Logger
	onChange  func(core.Session)

	mu       sync.Mutex
	current  core.Session
	creating bool
}

// NewManager constructs a Manager starting with no session.
func NewManager(t Transport, optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Manager{
		transport: t,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		current:   core.EmptySession,
	}
}

// Current returns the tracked session, core.EmptySession when none.
func (m *Manager) Current() core.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Create asks the server for a new session and tracks it. It fails with
// core.ErrSessionActive while a session is tracked or another Create is in
// flight. On failure the manager keeps no session.
func (m *Manager) Create(ctx context.Context, app, user string, optFns ...CreateOption) (core.Session, error) {
	m.mu.Lock()
	if m.current.IsActive() || m.creating {
		m.mu.Unlock()
		return core.EmptySession, core.ErrSessionActive
	}
	m.creating = true
	m.mu.Unlock()

	var opts client.CreateSessionOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	s, err := m.transport.CreateSession(ctx, app, user, opts)

	m.mu.Lock()
	m.creating = false
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("session create failed", "app_name", app, "user_id", user, "error", err)
		return core.EmptySession, err
	}
	m.current = s
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", s.ID, "app_name", s.AppName, "user_id", s.UserID)
	m.notify(s)
	return s, nil
}

// Terminate deletes s on the server. An empty session fails with
// core.ErrInvalidSession without touching the network. When s is the tracked
// session a successful delete resets the manager to no session; a failed one
// keeps it.
func (m *Manager) Terminate(ctx context.Context, s core.Session) error {
	if !s.IsActive() {
		return core.ErrInvalidSession
	}

	if err := m.transport.DeleteSession(ctx, s); err != nil {
		m.logger.Warn("session terminate failed", "session_id", s.ID, "error", err)
		return err
	}

	m.mu.Lock()
	tracked := m.current.ID == s.ID
	if tracked {
		m.current = core.EmptySession
	}
	m.mu.Unlock()

	m.logger.Info("session terminated", "session_id", s.ID)
	if tracked {
		m.notify(core.EmptySession)
	}
	return nil
}

// Refresh re-reads the tracked session from the server, picking up state and
// events recorded by runs.
func (m *Manager) Refresh(ctx context.Context) (core.Session, error) {
	cur := m.Current()
	if !cur.IsActive() {
		return core.EmptySession, core.ErrInvalidSession
	}

	s, err := m.transport.GetSession(ctx, cur.AppName, cur.UserID, cur.ID)
	if err != nil {
		return cur, err
	}

	m.mu.Lock()
	if m.current.ID != cur.ID {
		// terminated or replaced meanwhile
		latest := m.current
		m.mu.Unlock()
		return latest, nil
	}
	m.current = s
	m.mu.Unlock()

	m.notify(s)
	return s, nil
}

func (m *Manager) notify(s core.Session) {
	if m.onChange != nil {
		m.onChange(s)
	}
}

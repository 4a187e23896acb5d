package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

var (
	// ErrNotFound is returned for an unknown or expired session ID.
	ErrNotFound = errors.New("session not found")

	// ErrFull is returned by Create when MaxSessions are live.
	ErrFull = errors.New("session limit reached")
)

// Factory builds the controller for a new session. The server's factory
// reads the plan catalog current at call time, so a reloaded catalog only
// reaches new sessions.
type Factory func() (*calculator.Controller, error)

// Config configures a Store.
type Config struct {
	// IdleTimeout expires sessions not used for this long.
	IdleTimeout time.Duration

	// MaxSessions bounds live sessions. Zero means unlimited.
	MaxSessions int

	// Clock defaults to time.Now.
	Clock func() time.Time

	Logger    *slog.Logger
	Collector *metrics.Collector
}

// Session is one calculator owned by one API client.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	ctrl     *calculator.Controller
	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Store keeps calculator sessions in memory. Sessions are never persisted.
type Store struct {
	factory Factory
	cfg     Config
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore(factory Factory, cfg Config) *Store {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		factory:  factory,
		cfg:      cfg,
		logger:   logger.With("component", "sessions"),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns it.
func (st *Store) Create(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st.mu.RLock()
	full := st.cfg.MaxSessions > 0 && len(st.sessions) >= st.cfg.MaxSessions
	st.mu.RUnlock()
	if full {
		return nil, ErrFull
	}

	ctrl, err := st.factory()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := st.cfg.Clock()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ctrl:      ctrl,
	}
	s.touch(now)

	st.mu.Lock()
	if st.cfg.MaxSessions > 0 && len(st.sessions) >= st.cfg.MaxSessions {
		st.mu.Unlock()
		ctrl.Close()
		return nil, ErrFull
	}
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.cfg.Collector.SetSessionsActive(n)
	st.logger.Debug("session created", "session_id", s.ID)

	return s, nil
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Do runs fn with exclusive access to the session's controller and marks
// the session as used. fn must not retain the controller.
func (st *Store) Do(id string, fn func(*calculator.Controller) error) error {
	s, err := st.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.touch(st.cfg.Clock())
	return fn(s.ctrl)
}

// Delete discards the session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	st.close(s)
	st.cfg.Collector.SetSessionsActive(n)
	st.logger.Debug("session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Full reports whether Create would fail with ErrFull.
func (st *Store) Full() bool {
	return st.cfg.MaxSessions > 0 && st.Len() >= st.cfg.MaxSessions
}

// Sweep discards sessions idle longer than IdleTimeout at now and returns
// how many were removed.
func (st *Store) Sweep(now time.Time) int {
	if st.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-st.cfg.IdleTimeout)

	var expired []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	for _, s := range expired {
		st.close(s)
	}
	if len(expired) > 0 {
		st.cfg.Collector.SetSessionsActive(n)
	}

	return len(expired)
}

// Close discards every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range all {
		st.close(s)
	}
	st.cfg.Collector.SetSessionsActive(0)
}

func (st *Store) close(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.ctrl.Close()
		s.ctrl = nil
	}
}

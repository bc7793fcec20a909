package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/repowatch/internal/domain/port/driven"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("browse session not found")

// sweepInterval bounds how often idle sessions are looked for.
const sweepInterval = time.Minute

type session struct {
	browser    *IssueBrowser
	lastAccess time.Time
}

// SessionRegistry keeps the open browse sessions of the web and API surfaces,
// one IssueBrowser per session ID. Sessions idle for longer than the TTL are
// closed by the sweep loop run by Start.
type SessionRegistry struct {
	repoSvc driven.RepositoryService
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(repoSvc driven.RepositoryService, ttl time.Duration, logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		repoSvc:  repoSvc,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Open starts a browse session for identifier and runs its initial load. If
// the load fails nothing is registered and the error is returned.
func (r *SessionRegistry) Open(ctx context.Context, identifier string) (string, *IssueBrowser, error) {
	browser := NewIssueBrowser(r.repoSvc, identifier, r.logger)
	if err := browser.Initialize(ctx); err != nil {
		browser.Close()
		return "", nil, err
	}

	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &session{browser: browser, lastAccess: r.now()}
	r.mu.Unlock()

	r.logger.Info("browse session opened", "session", id, "repo", identifier)
	return id, browser, nil
}

// Get returns the browser of session id and marks the session as used.
func (r *SessionRegistry) Get(id string) (*IssueBrowser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastAccess = r.now()
	return s.browser, nil
}

// Close tears down session id.
func (r *SessionRegistry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.browser.Close()
	r.logger.Info("browse session closed", "session", id)
	return nil
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Start runs the idle sweep loop until ctx is canceled, then closes all
// remaining sessions.
func (r *SessionRegistry) Start(ctx context.Context) {
	interval := sweepInterval
	if r.ttl > 0 && r.ttl < interval {
		interval = r.ttl
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			r.logger.Info("session registry stopped")
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep closes sessions whose last access is older than the TTL.
func (r *SessionRegistry) sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*session
	for id, s := range r.sessions {
		if s.lastAccess.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.browser.Close()
	}

	if len(expired) > 0 {
		r.logger.Info("expired idle browse sessions", "closed", len(expired), "open", r.Len())
	}
	return len(expired)
}

func (r *SessionRegistry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.browser.Close()
	}
}

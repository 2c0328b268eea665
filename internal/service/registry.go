package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/tutor"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	mu       sync.Mutex
	session  *tutor.Session
	lastSeen time.Time
}

// SessionRegistry keeps the in-memory tutor sessions of the HTTP API. Each
// session is used by one request at a time.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
	idleTTL  time.Duration
	now      func() time.Time
}

// NewSessionRegistry creates a registry evicting sessions idle for idleTTL
func NewSessionRegistry(idleTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*sessionEntry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create registers a new empty session
func (r *SessionRegistry) Create(settings tutor.LLMSettings) *tutor.Session {
	sess := tutor.NewSessionWith(settings)

	r.mu.Lock()
	r.sessions[sess.ID] = &sessionEntry{session: sess, lastSeen: r.now()}
	r.mu.Unlock()

	return sess
}

// Restore registers a session under a known id, used when a valid token
// outlives a process restart
func (r *SessionRegistry) Restore(id uuid.UUID, settings tutor.LLMSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return
	}
	sess := tutor.NewSessionWith(settings)
	sess.ID = id
	r.sessions[id] = &sessionEntry{session: sess, lastSeen: r.now()}
}

// With runs fn while holding the session exclusively
func (r *SessionRegistry) With(id uuid.UUID, fn func(*tutor.Session) error) error {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.lastSeen = r.now()
	return fn(entry.session)
}

// Delete drops a session
func (r *SessionRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict removes sessions idle longer than the TTL and returns how many went
func (r *SessionRegistry) Evict() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				log.Debug().Int("evicted", n).Msg("evicted idle sessions")
			}
		}
	}
}

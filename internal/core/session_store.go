package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultSessionWindow = 3
	defaultSessionTTL    = 60 * time.Minute
	defaultSoftCap       = 10000
	purgeInterval        = 5 * time.Minute
)

// sessionEntry wraps a Session with the per-session lock that serializes all
// operations against it (spec §4.4: different sessions proceed independently,
// a single session's operations are serialized).
type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

// SessionStore holds all Sessions in process memory. It is not persisted
// across restarts (spec §9, accepted limitation).
type SessionStore struct {
	window  int
	ttl     time.Duration
	softCap int
	clock   func() time.Time

	mu       sync.Mutex
	entries  map[string]*sessionEntry
	lruOrder []string // session ids, most-recently-touched last
}

// NewSessionStore constructs a store with the given window size W and
// inactivity TTL. A window of 0 is legal and degenerates to stateless chat
// (spec §8): sessions are still created but carry no turns.
func NewSessionStore(window int, ttl time.Duration) *SessionStore {
	if window < 0 {
		window = defaultSessionWindow
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		window:  window,
		ttl:     ttl,
		softCap: defaultSoftCap,
		clock:   time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// GetOrCreate returns the Session for sessionID, creating it if absent.
func (s *SessionStore) GetOrCreate(sessionID string) Session {
	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session
}

// entryFor returns the sessionEntry for id, creating one under the store lock
// if it doesn't exist yet, and touches LRU order.
func (s *SessionStore) entryFor(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		now := s.now()
		entry = &sessionEntry{session: Session{
			ID:           id,
			Metadata:     make(map[string]string),
			CreatedAt:    now,
			LastActiveAt: now,
		}}
		s.entries[id] = entry
		s.evictOverCapLocked()
	}
	s.touchLocked(id)
	return entry
}

// now is overridden in tests; production always uses the wall clock.
func (s *SessionStore) now() time.Time { return s.clock() }

func (s *SessionStore) touchLocked(id string) {
	for i, existing := range s.lruOrder {
		if existing == id {
			s.lruOrder = append(s.lruOrder[:i], s.lruOrder[i+1:]...)
			break
		}
	}
	s.lruOrder = append(s.lruOrder, id)
}

// evictOverCapLocked drops the least-recently-touched sessions until the
// store is at or under its soft cap. Caller holds s.mu.
func (s *SessionStore) evictOverCapLocked() {
	for len(s.entries) > s.softCap && len(s.lruOrder) > 0 {
		oldest := s.lruOrder[0]
		s.lruOrder = s.lruOrder[1:]
		delete(s.entries, oldest)
	}
}

// AppendTurn appends turn to sessionID's Turn sequence, dropping from the
// head until the window invariant |turns| ≤ W holds (spec §4.4).
func (s *SessionStore) AppendTurn(sessionID string, turn Turn) {
	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if s.window == 0 {
		entry.session.LastActiveAt = s.now()
		return
	}

	entry.session.Turns = append(entry.session.Turns, turn)
	if len(entry.session.Turns) > s.window {
		drop := len(entry.session.Turns) - s.window
		entry.session.Turns = append([]Turn(nil), entry.session.Turns[drop:]...)
	}
	entry.session.LastActiveAt = s.now()
}

// UpdateMetadata overwrites a single metadata key atomically. Only the keys
// recognized by spec §3 are accepted; anything else is an error.
func (s *SessionStore) UpdateMetadata(sessionID, key, value string) error {
	switch key {
	case MetaLastPrimaryAction, MetaLastProductQuery, MetaLastOutletQuery, MetaPreferredSort:
	default:
		return fmt.Errorf("session store: unrecognized metadata key %q", key)
	}

	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Metadata[key] = value
	entry.session.LastActiveAt = s.now()
	return nil
}

// Snapshot returns an independently-owned read-only view of sessionID's
// current state, safe to hand to the Planner without holding any lock
// (spec §9: the planner must not hold a reference to the mutable Session).
func (s *SessionStore) Snapshot(sessionID string) Snapshot {
	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	turns := append([]Turn(nil), entry.session.Turns...)
	meta := make(map[string]string, len(entry.session.Metadata))
	for k, v := range entry.session.Metadata {
		meta[k] = v
	}
	return Snapshot{
		ID:           entry.session.ID,
		Turns:        turns,
		Metadata:     meta,
		CreatedAt:    entry.session.CreatedAt,
		LastActiveAt: entry.session.LastActiveAt,
	}
}

// Count returns the number of sessions currently held, for /api/stats.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EvictExpired removes every session whose LastActiveAt is older than the
// store's TTL relative to now.
func (s *SessionStore) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	remaining := s.lruOrder[:0:0]
	for _, id := range s.lruOrder {
		entry := s.entries[id]
		entry.mu.Lock()
		expired := now.Sub(entry.session.LastActiveAt) > s.ttl
		entry.mu.Unlock()
		if expired {
			delete(s.entries, id)
			evicted++
			continue
		}
		remaining = append(remaining, id)
	}
	s.lruOrder = remaining
	return evicted
}

// StartEvictionLoop runs EvictExpired on a fixed interval until ctx is
// cancelled, mirroring the teacher's pendingStore purge goroutine.
func (s *SessionStore) StartEvictionLoop(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictExpired(time.Now())
			}
		}
	}()
}

package sandbox

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
)

// DefaultIdleTTL is how long an untouched sandbox is kept by a Store.
const DefaultIdleTTL = 2 * time.Hour

// Store keeps one Sandbox per browser. It is safe for concurrent use.
type Store struct {
	resolver unsplash.Resolver
	logger   *log.Logger
	idleTTL  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	sandbox  *Sandbox
	lastSeen time.Time
}

// NewStore creates a store whose sandboxes share resolver. Sandboxes idle
// for longer than idleTTL are evicted; zero means DefaultIdleTTL.
func NewStore(resolver unsplash.Resolver, logger *log.Logger, idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		resolver: resolver,
		logger:   logger,
		idleTTL:  idleTTL,
		now:      time.Now,
		entries:  make(map[uuid.UUID]*entry),
	}
}

// Get returns the sandbox for id, creating it when missing or expired.
// The second result reports whether a new sandbox was created.
func (s *Store) Get(id uuid.UUID) (*Sandbox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[id]; ok && now.Sub(e.lastSeen) <= s.idleTTL {
		e.lastSeen = now
		return e.sandbox, false
	}

	sb := New(s.resolver, s.logger)
	s.entries[id] = &entry{sandbox: sb, lastSeen: now}
	return sb, true
}

// Lookup returns the live sandbox for id without creating one.
func (s *Store) Lookup(id uuid.UUID) (*Sandbox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[id]
	if !ok || now.Sub(e.lastSeen) > s.idleTTL {
		return nil, false
	}
	e.lastSeen = now
	return e.sandbox, true
}

// Create allocates a fresh ID and sandbox.
func (s *Store) Create() (uuid.UUID, *Sandbox) {
	id := uuid.New()
	sb, _ := s.Get(id)
	return id, sb
}

// Delete drops the sandbox for id.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sandboxes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup evicts idle sandboxes and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// ABOUTME: Thread-safe TTL store for browser session tokens.
// ABOUTME: Backs the login gate; expired sessions are swept by a background goroutine.

package session

import (
	"container/list"
	"sync"
	"time"
)

// storeEntry stores the expiry and list element for a session token.
type storeEntry struct {
	expiresAt time.Time
	element   *list.Element
}

// Store provides a thread-safe, TTL-based, size-limited store for active
// session tokens. Uses a doubly-linked list to maintain insertion order for
// O(1) eviction when at capacity.
type Store struct {
	mu      sync.RWMutex
	active  map[string]*storeEntry
	order   *list.List // List of tokens in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// NewStore creates a session store with the specified TTL and maximum size.
// A background goroutine periodically sweeps expired sessions.
func NewStore(ttl time.Duration, maxSize int) *Store {
	s := &Store{
		active:  make(map[string]*storeEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Valid returns true if the token names a live, unexpired session.
func (s *Store) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.active[token]
	if !ok {
		return false
	}
	return time.Now().Before(entry.expiresAt)
}

// Add records a new session token. If the store is at capacity, the oldest
// session is evicted to make room.
func (s *Store) Add(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	// Re-adding an existing token refreshes its expiry
	if entry, exists := s.active[token]; exists {
		entry.expiresAt = now.Add(s.ttl)
		s.order.MoveToBack(entry.element)
		return
	}

	if len(s.active) >= s.maxSize {
		s.evictOldest()
	}

	elem := s.order.PushBack(token)
	s.active[token] = &storeEntry{
		expiresAt: now.Add(s.ttl),
		element:   elem,
	}
}

// Delete removes a session token. Deleting an unknown token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.active[token]
	if !ok {
		return
	}
	s.order.Remove(entry.element)
	delete(s.active, token)
}

// evictOldest removes the oldest session from the store.
// Must be called with mu held. O(1) operation using the linked list.
func (s *Store) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}

	token, _ := front.Value.(string)
	s.order.Remove(front)
	delete(s.active, token)
}

// sweep runs in a background goroutine, periodically removing expired sessions.
func (s *Store) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.done:
			return
		}
	}
}

// runSweep removes all expired sessions from the store.
func (s *Store) runSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, entry := range s.active {
		if now.After(entry.expiresAt) {
			s.order.Remove(entry.element)
			delete(s.active, token)
		}
	}
}

// Close stops the background sweep goroutine. It is safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}

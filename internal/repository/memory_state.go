package repository

import (
	"context"
	"sync"
	"time"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

type memoryEntry struct {
	mu       sync.Mutex
	conv     *model.ConversationContext
	lastSeen time.Time
	removed  bool
}

// MemoryStateStore keeps conversation state in process. Updates on one
// channel are serialized; different channels proceed in parallel.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStateStore creates a store whose idle channels expire after
// ttl. A ttl of zero keeps them forever.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		entries: map[string]*memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// lock returns the channel's entry, created if needed, with its mutex held.
func (s *MemoryStateStore) lock(channelID string) *memoryEntry {
	for {
		s.mu.Lock()
		e, ok := s.entries[channelID]
		if !ok {
			e = &memoryEntry{}
			s.entries[channelID] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		if !e.removed {
			return e
		}
		// swept between lookup and lock
		e.mu.Unlock()
	}
}

func (s *MemoryStateStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && !e.lastSeen.IsZero() && s.now().Sub(e.lastSeen) > s.ttl
}

// Get returns a copy of the channel's state, or a fresh one.
func (s *MemoryStateStore) Get(_ context.Context, channelID string) (*model.ConversationContext, error) {
	s.mu.Lock()
	e, ok := s.entries[channelID]
	s.mu.Unlock()
	if !ok {
		return model.NewConversationContext(channelID), nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conv == nil || e.removed || s.expired(e) {
		return model.NewConversationContext(channelID), nil
	}
	return e.conv.Clone(), nil
}

// Update runs fn on a copy of the state and stores it when fn succeeds.
func (s *MemoryStateStore) Update(ctx context.Context, channelID string, fn func(*model.ConversationContext) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := s.lock(channelID)
	defer e.mu.Unlock()

	work := model.NewConversationContext(channelID)
	if e.conv != nil && !s.expired(e) {
		work = e.conv.Clone()
	}
	if err := fn(work); err != nil {
		return err
	}
	e.conv = work
	e.lastSeen = s.now()
	return nil
}

// Sweep drops channels idle for longer than the ttl and returns how many
// were removed.
func (s *MemoryStateStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		if e.conv != nil && s.expired(e) {
			e.removed = true
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

var _ service.StateStore = (*MemoryStateStore)(nil)

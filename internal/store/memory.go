package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/history"
)

// MemoryStore is a concurrency-safe in-memory history.Repository.
type MemoryStore struct {
	mu sync.RWMutex

	// key: item id
	items map[string]history.Item
	// insertion order, oldest first
	order []string

	// max number of items per owner, 0 = unlimited
	maxPerOwner int
}

var _ history.Repository = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore. If maxPerOwner is <= 0, it is
// treated as unlimited.
func NewMemoryStore(maxPerOwner int) *MemoryStore {
	return &MemoryStore{
		items:       make(map[string]history.Item),
		maxPerOwner: maxPerOwner,
	}
}

func (s *MemoryStore) Insert(_ context.Context, item history.Item) (string, error) {
	item.ID = uuid.NewString()
	item.DateRange = copyRange(item.DateRange)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = item
	s.order = append(s.order, item.ID)

	// Enforce retention by count, dropping the owner's oldest items.
	if s.maxPerOwner > 0 {
		var owned []string
		for _, id := range s.order {
			if s.items[id].UserID == item.UserID {
				owned = append(owned, id)
			}
		}
		for i := 0; i < len(owned)-s.maxPerOwner; i++ {
			s.removeLocked(owned[i])
		}
	}
	return item.ID, nil
}

func (s *MemoryStore) List(_ context.Context, ownerID string) ([]history.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]history.Item, 0, len(s.items))
	// newest insert first so equal timestamps keep that order after sorting
	for i := len(s.order) - 1; i >= 0; i-- {
		it := s.items[s.order[i]]
		if ownerID != "" && it.UserID != ownerID {
			continue
		}
		it.DateRange = copyRange(it.DateRange)
		out = append(out, it)
	}
	history.SortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch history.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return history.ErrNotFound
	}
	s.items[it.ID] = patch.Apply(it)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	return nil
}

func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range append([]string(nil), s.order...) {
		if s.items[id].Timestamp.Before(cutoff) {
			s.removeLocked(id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) removeLocked(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func copyRange(dr *history.DateRange) *history.DateRange {
	if dr == nil {
		return nil
	}
	c := *dr
	return &c
}

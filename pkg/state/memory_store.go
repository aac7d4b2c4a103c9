package state

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	assets "github.com/goliatone/go-assets"
)

// MemoryStore is a minimal in-memory metadata store intended for tests and
// examples. Snapshots are cloned on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[assets.ID]assets.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[assets.ID]assets.Snapshot{}}
}

func (s *MemoryStore) Load(ctx context.Context, id assets.ID) (assets.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return assets.Snapshot{}, err
	}
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return assets.Snapshot{}, fmt.Errorf("%w: metadata for %s", assets.ErrNotFound, id)
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, snapshot assets.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("state: save: %w", err)
	}
	s.mu.Lock()
	s.records[snapshot.ID] = snapshot.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]assets.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := make([]assets.ID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.SortFunc(ids, func(a, b assets.ID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

package store

import (
	"context"
	"slices"
	"sync"

	"github.com/lox/holdem-engine/internal/game"
)

// Memory keeps encoded snapshots in a map. Snapshots are stored encoded so
// later changes to a saved value never leak into the store.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, snap game.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.GameID] = data
	return nil
}

func (m *Memory) Load(_ context.Context, gameID string) (game.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.snaps[gameID]
	m.mu.RUnlock()
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return decode(gameID, data)
}

func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.snaps))
	for id := range m.snaps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *Memory) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, gameID)
	return nil
}

func (m *Memory) Close() error { return nil }

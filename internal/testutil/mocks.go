package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/udisondev/waypoint/internal/warp"
)

// MockWarpStore: in-memory имплементация warp.Store для unit тестов.
// Не требует реальной базы данных.
type MockWarpStore struct {
	mu    sync.RWMutex
	warps map[string]warp.Warp

	// SaveErr, если задан, возвращается из Save
	SaveErr error
	saves   int
}

// NewMockWarpStore создаёт пустой MockWarpStore.
func NewMockWarpStore() *MockWarpStore {
	return &MockWarpStore{warps: make(map[string]warp.Warp)}
}

func (m *MockWarpStore) Save(ctx context.Context, w warp.Warp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.warps[w.Name] = w
	m.saves++
	return nil
}

func (m *MockWarpStore) Load(ctx context.Context, name string) (warp.Warp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.warps[name]
	if !ok {
		return warp.Warp{}, warp.ErrNotFound
	}
	return w, nil
}

func (m *MockWarpStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warps[name]; !ok {
		return warp.ErrNotFound
	}
	delete(m.warps, name)
	return nil
}

func (m *MockWarpStore) List(ctx context.Context) ([]warp.Warp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]warp.Warp, 0, len(m.warps))
	for _, w := range m.warps {
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b warp.Warp) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Saves возвращает количество успешных Save.
func (m *MockWarpStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

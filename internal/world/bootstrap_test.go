package world

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries []Entry
	saved   []Ref
	loadErr error
}

func (m *memoryStore) LoadAll(ctx context.Context) ([]Entry, error) {
	return m.entries, m.loadErr
}

func (m *memoryStore) Save(ctx context.Context, ref Ref) error {
	m.saved = append(m.saved, ref)
	m.entries = append(m.entries, Entry{Name: ref.Name, UID: ref.ID.String()})
	return nil
}

func TestBootstrap_PersistsNewWorlds(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()

	reg, err := Bootstrap(ctx, store, []Entry{{Name: "world"}, {Name: "world_nether"}})
	require.NoError(t, err)
	assert.Len(t, store.saved, 2)

	first, _ := reg.Lookup("world")

	// Повторный запуск: тот же UID из хранилища
	again, err := Bootstrap(ctx, store, []Entry{{Name: "world"}, {Name: "world_nether"}})
	require.NoError(t, err)
	second, _ := again.Lookup("world")
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.saved, 2, "known worlds must not be saved again")
}

func TestBootstrap_PinnedUID(t *testing.T) {
	id := uuid.MustParse("6f1f8e4a-4c9b-4e2f-9d55-0a7a3c1b2d10")
	store := &memoryStore{entries: []Entry{{Name: "world", UID: id.String()}}}

	// Совпадает (регистр не важен)
	reg, err := Bootstrap(context.Background(), store, []Entry{{Name: "world", UID: "6F1F8E4A-4C9B-4E2F-9D55-0A7A3C1B2D10"}})
	require.NoError(t, err)
	ref, _ := reg.Lookup("world")
	assert.Equal(t, id, ref.ID)

	// Конфликт с сохранённым
	_, err = Bootstrap(context.Background(), store, []Entry{{Name: "world", UID: uuid.New().String()}})
	assert.ErrorIs(t, err, ErrIDConflict)
}

func TestBootstrap_LoadError(t *testing.T) {
	store := &memoryStore{loadErr: errors.New("db down")}

	_, err := Bootstrap(context.Background(), store, []Entry{{Name: "world"}})
	assert.Error(t, err)
}

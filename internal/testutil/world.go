package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/waypoint/internal/host"
	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/world"
)

// Fixtures содержит стабильные тестовые данные.
var Fixtures = struct {
	Overworld uuid.UUID
	Nether    uuid.UUID
	End       uuid.UUID

	// Компактные строки в legacy формате
	SpawnCompact string
	ArenaCompact string
}{
	Overworld:    uuid.MustParse("5f0a6c55-2b1e-4d8a-9e3f-7d1c2a4b6e80"),
	Nether:       uuid.MustParse("a3c1e9d0-7b42-4f6e-8c15-2e9d0b7a1f34"),
	End:          uuid.MustParse("0e7b2d91-c4a8-4b3f-a6d2-9f1e8c5b3a07"),
	SpawnCompact: "world:0.5:64:0.5",
	ArenaCompact: "world_nether:120:72:-40:180:0",
}

// NewTestWorlds возвращает реестр с тремя ванильными мирами с фиксированными UID.
func NewTestWorlds(tb testing.TB) *world.Registry {
	tb.Helper()

	reg, err := world.LoadRegistry([]world.Entry{
		{Name: "world", UID: Fixtures.Overworld.String()},
		{Name: "world_nether", UID: Fixtures.Nether.String()},
		{Name: "world_the_end", UID: Fixtures.End.String()},
	})
	if err != nil {
		tb.Fatalf("loading test worlds: %v", err)
	}
	return reg
}

// NewTestEngine возвращает движок с теми же мирами, что и NewTestWorlds.
func NewTestEngine() *host.MemoryEngine {
	return host.NewMemoryEngine("world", "world_nether", "world_the_end")
}

// MustPosition разбирает компактную строку или падает.
func MustPosition(tb testing.TB, worlds world.Resolver, compact string) position.Position {
	tb.Helper()

	p, err := position.NewCodec(worlds).ParseCompact(compact)
	if err != nil {
		tb.Fatalf("parsing %q: %v", compact, err)
	}
	return p
}

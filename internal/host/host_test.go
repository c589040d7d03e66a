package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/world"
)

type fixture struct {
	engine  *MemoryEngine
	worlds  *world.Registry
	adapter *Adapter
	factory position.Factory
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	worlds := world.NewRegistry()
	for _, name := range []string{"world", "world_nether", "registry_only"} {
		_, err := worlds.Register(name)
		require.NoError(t, err)
	}
	engine := NewMemoryEngine("world", "world_nether", "engine_only")

	return fixture{
		engine:  engine,
		worlds:  worlds,
		adapter: NewAdapter(engine, worlds),
		factory: position.NewFactory(worlds, "world"),
	}
}

func TestAdapter_Location(t *testing.T) {
	f := newFixture(t)

	p, err := f.factory.AtOrientedIn(10.3, 64, -5.7, 90, 30, "world")
	require.NoError(t, err)

	loc, err := f.adapter.Location(p)
	require.NoError(t, err)
	assert.Equal(t, "world", loc.World.Name())
	assert.Equal(t, 10.3, loc.X)
	assert.Equal(t, 64.0, loc.Y)
	assert.Equal(t, -5.7, loc.Z)
	assert.Equal(t, float32(90), loc.Yaw)
	assert.Equal(t, float32(30), loc.Pitch)

	centered, err := f.adapter.CenteredLocation(p)
	require.NoError(t, err)
	assert.Equal(t, 10.5, centered.X)
	assert.Equal(t, 64.5, centered.Y)
	assert.Equal(t, -5.5, centered.Z)
}

func TestAdapter_LocationUnknownHostWorld(t *testing.T) {
	f := newFixture(t)

	// Мир есть в реестре, но не в движке
	p, err := f.factory.AtIn(0, 0, 0, "registry_only")
	require.NoError(t, err)

	_, err = f.adapter.Location(p)
	assert.ErrorIs(t, err, position.ErrInvalidWorld)

	_, err = f.adapter.Location(position.Position{})
	assert.ErrorIs(t, err, position.ErrInvalidWorld)
}

func TestAdapter_Position(t *testing.T) {
	f := newFixture(t)
	hostWorld, ok := f.engine.World("world_nether")
	require.True(t, ok)

	p, err := f.adapter.Position(Location{World: hostWorld, X: 1, Y: 2, Z: 3, Yaw: 45, Pitch: -10})
	require.NoError(t, err)

	ref, _ := f.worlds.Lookup("world_nether")
	want, err := position.AtOriented(1, 2, 3, 45, -10, ref)
	require.NoError(t, err)
	assert.True(t, want.Equal(p))

	// Мир есть в движке, но не в реестре
	engineOnly, ok := f.engine.World("engine_only")
	require.True(t, ok)
	_, err = f.adapter.Position(Location{World: engineOnly})
	assert.ErrorIs(t, err, position.ErrInvalidWorld)

	_, err = f.adapter.Position(Location{})
	assert.ErrorIs(t, err, position.ErrInvalidWorld)
}

func TestAdapter_LocationRoundTrip(t *testing.T) {
	f := newFixture(t)

	p, err := f.factory.AtOrientedIn(-100.25, 12, 7.75, 180, 90, "world")
	require.NoError(t, err)

	loc, err := f.adapter.Location(p)
	require.NoError(t, err)
	back, err := f.adapter.Position(loc)
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
}

func TestAdapter_Block(t *testing.T) {
	f := newFixture(t)
	f.engine.AddWorld("world").SetBlock(-1, 64, 2, "stone")

	p, err := f.factory.AtIn(-0.2, 64.9, 2.5, "world")
	require.NoError(t, err)

	b, err := f.adapter.Block(p)
	require.NoError(t, err)
	assert.Equal(t, "stone", b.Type())

	bp, err := f.adapter.PositionOfBlock(b)
	require.NoError(t, err)
	assert.True(t, p.Block().Equal(bp), "got %s", bp)

	air, err := f.adapter.Block(p.WithY(200))
	require.NoError(t, err)
	assert.Equal(t, "air", air.Type())
}

func TestAdapter_Warp(t *testing.T) {
	f := newFixture(t)
	hostWorld, _ := f.engine.World("world")
	entity := NewMemoryEntity(Location{World: hostWorld})

	target, err := f.factory.AtOrientedIn(10.2, 70.8, -3.1, 90, 0, "world_nether")
	require.NoError(t, err)

	require.NoError(t, f.adapter.Warp(context.Background(), target, entity))
	assert.Equal(t, 1, entity.Teleports())

	loc := entity.Location()
	assert.Equal(t, "world_nether", loc.World.Name())
	assert.Equal(t, 10.5, loc.X)
	assert.Equal(t, 70.5, loc.Y)
	assert.Equal(t, -3.5, loc.Z)
	assert.Equal(t, float32(90), loc.Yaw)

	got, err := f.adapter.PositionOfEntity(entity)
	require.NoError(t, err)
	assert.True(t, target.Centered().Equal(got))
}

func TestAdapter_WarpErrors(t *testing.T) {
	f := newFixture(t)
	entity := NewMemoryEntity(Location{})

	missing, err := f.factory.AtIn(0, 0, 0, "registry_only")
	require.NoError(t, err)
	err = f.adapter.Warp(context.Background(), missing, entity)
	assert.ErrorIs(t, err, position.ErrInvalidWorld)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := f.factory.At(0, 0, 0)
	require.NoError(t, err)
	err = f.adapter.Warp(ctx, ok, entity)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, entity.Teleports())
}

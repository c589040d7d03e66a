package warp_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/waypoint/internal/host"
	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/testutil"
	"github.com/udisondev/waypoint/internal/warp"
)

type fixture struct {
	store   *testutil.MockWarpStore
	engine  *host.MemoryEngine
	service *warp.Service
	factory position.Factory
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	worlds := testutil.NewTestWorlds(t)
	engine := testutil.NewTestEngine()
	store := testutil.NewMockWarpStore()

	return fixture{
		store:   store,
		engine:  engine,
		service: warp.NewService(store, position.NewCodec(worlds), host.NewAdapter(engine, worlds), 2),
		factory: position.NewFactory(worlds, "world"),
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Spawn", want: "spawn"},
		{in: "  PvP_Arena ", want: "pvp_arena"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "two words", wantErr: true},
		{in: "world:1", wantErr: true},
		{in: string(make([]byte, 65)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := warp.NormalizeName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, warp.ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_SetGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.factory.AtOrientedIn(100.5, 64, -20.5, 90, 0, "world")
	require.NoError(t, err)

	require.NoError(t, f.service.Set(ctx, "Spawn", p))

	got, err := f.service.Get(ctx, "SPAWN")
	require.NoError(t, err)
	assert.Equal(t, "spawn", got.Name)
	assert.True(t, p.Equal(got.Position))
}

func TestService_SetRejectsZeroPosition(t *testing.T) {
	f := newFixture(t)

	err := f.service.Set(context.Background(), "spawn", position.Position{})
	assert.ErrorIs(t, err, position.ErrInvalidWorld)
	assert.Equal(t, 0, f.store.Saves())
}

func TestService_SetStoreError(t *testing.T) {
	f := newFixture(t)
	f.store.SaveErr = testutil.ErrSimulated

	p, err := f.factory.At(0, 0, 0)
	require.NoError(t, err)

	err = f.service.Set(context.Background(), "spawn", p)
	assert.ErrorIs(t, err, testutil.ErrSimulated)
}

func TestService_GetMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "nowhere")
	assert.ErrorIs(t, err, warp.ErrNotFound)
}

func TestService_DeleteAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c"} {
		p, err := f.factory.At(1, 2, 3)
		require.NoError(t, err)
		require.NoError(t, f.service.Set(ctx, name, p))
	}

	require.NoError(t, f.service.Delete(ctx, "B"))
	assert.ErrorIs(t, f.service.Delete(ctx, "b"), warp.ErrNotFound)

	warps, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, warps, 2)
	assert.Equal(t, "a", warps[0].Name)
	assert.Equal(t, "c", warps[1].Name)
}

func TestService_Teleport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.factory.AtOrientedIn(10.2, 70.9, -5.1, 180, 10, "world_nether")
	require.NoError(t, err)
	require.NoError(t, f.service.Set(ctx, "nether", p))

	overworld, _ := f.engine.World("world")
	player := host.NewMemoryEntity(host.Location{World: overworld})

	require.NoError(t, f.service.Teleport(ctx, "nether", player))

	loc := player.Location()
	assert.Equal(t, "world_nether", loc.World.Name())
	assert.Equal(t, 10.5, loc.X)
	assert.Equal(t, 70.5, loc.Y)
	assert.Equal(t, -5.5, loc.Z)
	assert.Equal(t, float32(180), loc.Yaw)

	assert.ErrorIs(t, f.service.Teleport(ctx, "missing", player), warp.ErrNotFound)
	assert.Equal(t, 1, player.Teleports())
}

func TestService_TeleportWithoutHost(t *testing.T) {
	worlds := testutil.NewTestWorlds(t)
	svc := warp.NewService(testutil.NewMockWarpStore(), position.NewCodec(worlds), nil, 0)

	err := svc.Teleport(context.Background(), "spawn", host.NewMemoryEntity(host.Location{}))
	assert.Error(t, err)
}

func TestService_ImportCompact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.service.ImportCompact(ctx, map[string]string{
		"spawn": testutil.Fixtures.SpawnCompact,
		"arena": testutil.Fixtures.ArenaCompact,
		"end":   "world_the_end:0:80:0",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	arena, err := f.service.Get(ctx, "arena")
	require.NoError(t, err)
	assert.Equal(t, "world_nether", arena.Position.World().Name)
	assert.Equal(t, float32(180), arena.Position.Yaw())
}

func TestService_ImportMixed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.service.Import(ctx, map[string][]byte{
		"legacy": []byte(`"world:1:2:3"`),
		"modern": []byte(`{"X":4,"Y":5,"Z":6,"Yaw":90,"Pitch":45,"World":"world_nether"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	modern, err := f.service.Get(ctx, "modern")
	require.NoError(t, err)
	assert.Equal(t, float32(45), modern.Position.Pitch())
}

func TestService_ImportErrors(t *testing.T) {
	tests := []struct {
		name      string
		entries   map[string]string
		wantErrIs error
	}{
		{
			name:      "five fields",
			entries:   map[string]string{"ok": "world:1:2:3", "bad": "world:1:2:3:4"},
			wantErrIs: position.ErrDecode,
		},
		{
			name:      "unknown world",
			entries:   map[string]string{"mars": "mars:1:2:3"},
			wantErrIs: position.ErrInvalidWorld,
		},
		{
			name:      "bad name",
			entries:   map[string]string{"two words": "world:1:2:3"},
			wantErrIs: warp.ErrInvalidName,
		},
		{
			name:      "names collide after normalization",
			entries:   map[string]string{"Spawn": "world:1:2:3", "spawn": "world_nether:9:9:9"},
			wantErrIs: warp.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			n, err := f.service.ImportCompact(context.Background(), tt.entries)
			assert.ErrorIs(t, err, tt.wantErrIs)
			assert.Equal(t, 0, n)
		})
	}
}

func TestService_ImportDuplicateNameSavesNothing(t *testing.T) {
	f := newFixture(t)

	n, err := f.service.Import(context.Background(), map[string][]byte{
		"Spawn":   []byte(`"world:1:2:3"`),
		" spawn ": []byte(`"world_nether:9:9:9"`),
	})
	assert.ErrorIs(t, err, warp.ErrInvalidName)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, f.store.Saves())
}

func TestService_ImportMalformedJSON(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Import(context.Background(), map[string][]byte{"x": []byte(`42`)})
	assert.ErrorIs(t, err, position.ErrDecode)
	assert.Equal(t, 0, f.store.Saves())
}

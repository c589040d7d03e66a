// Package host is the boundary between positions and the game engine.
// The engine itself is outside this module; it is reached only through the
// interfaces below.
package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/world"
)

// Engine exposes the host's world registry.
type Engine interface {
	World(name string) (World, bool)
}

// World is a host world handle.
type World interface {
	Name() string
	BlockAt(x, y, z int) Block
}

// Block is a host block.
type Block interface {
	Location() Location
	Type() string
}

// Entity is anything the host can teleport.
type Entity interface {
	Location() Location
	Teleport(ctx context.Context, loc Location) error
}

// Location is the host-native transform.
type Location struct {
	World World
	X     float64
	Y     float64
	Z     float64
	Yaw   float32
	Pitch float32
}

// Adapter converts between positions and host locations.
type Adapter struct {
	engine  Engine
	factory position.Factory
}

// NewAdapter creates an adapter. worlds resolves host world names back to refs.
func NewAdapter(engine Engine, worlds world.Resolver) *Adapter {
	return &Adapter{
		engine:  engine,
		factory: position.NewFactory(worlds, ""),
	}
}

// Location converts p into a host location.
func (a *Adapter) Location(p position.Position) (Location, error) {
	w, err := a.hostWorld(p.World())
	if err != nil {
		return Location{}, err
	}
	return Location{
		World: w,
		X:     p.X(),
		Y:     p.Y(),
		Z:     p.Z(),
		Yaw:   p.Yaw(),
		Pitch: p.Pitch(),
	}, nil
}

// CenteredLocation is Location(p.Centered()).
func (a *Adapter) CenteredLocation(p position.Position) (Location, error) {
	return a.Location(p.Centered())
}

// Position converts a host location into a position.
func (a *Adapter) Position(loc Location) (position.Position, error) {
	if loc.World == nil {
		return position.Position{}, &position.InvalidWorldError{}
	}
	return a.factory.AtOrientedIn(loc.X, loc.Y, loc.Z, loc.Yaw, loc.Pitch, loc.World.Name())
}

// PositionOfBlock returns the position of b.
func (a *Adapter) PositionOfBlock(b Block) (position.Position, error) {
	return a.Position(b.Location())
}

// PositionOfEntity returns the current position of e.
func (a *Adapter) PositionOfEntity(e Entity) (position.Position, error) {
	return a.Position(e.Location())
}

// Block returns the block containing p.
func (a *Adapter) Block(p position.Position) (Block, error) {
	w, err := a.hostWorld(p.World())
	if err != nil {
		return nil, err
	}
	bp := p.BlockPos()
	return w.BlockAt(bp[0], bp[1], bp[2]), nil
}

// Warp teleports e to the center of the block at p.
func (a *Adapter) Warp(ctx context.Context, p position.Position, e Entity) error {
	loc, err := a.CenteredLocation(p)
	if err != nil {
		return fmt.Errorf("warping to %s: %w", p, err)
	}
	if err := e.Teleport(ctx, loc); err != nil {
		return fmt.Errorf("teleporting to %s: %w", p, err)
	}
	slog.Debug("entity warped",
		"world", loc.World.Name(),
		"x", loc.X,
		"y", loc.Y,
		"z", loc.Z)
	return nil
}

func (a *Adapter) hostWorld(ref world.Ref) (World, error) {
	if ref.IsZero() {
		return nil, &position.InvalidWorldError{Name: ref.Name}
	}
	w, ok := a.engine.World(ref.Name)
	if !ok {
		return nil, &position.InvalidWorldError{Name: ref.Name}
	}
	return w, nil
}

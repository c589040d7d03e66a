package position

import "github.com/udisondev/waypoint/internal/world"

// Factory builds positions from world names.
// DefaultWorld is used by At; it has no built-in fallback.
type Factory struct {
	Worlds       world.Resolver
	DefaultWorld string
}

// NewFactory returns a Factory resolving names through worlds.
func NewFactory(worlds world.Resolver, defaultWorld string) Factory {
	return Factory{Worlds: worlds, DefaultWorld: defaultWorld}
}

// Resolve returns the ref for name or *InvalidWorldError.
func (f Factory) Resolve(name string) (world.Ref, error) {
	if name == "" || f.Worlds == nil {
		return world.Ref{}, &InvalidWorldError{Name: name}
	}
	ref, ok := f.Worlds.Lookup(name)
	if !ok {
		return world.Ref{}, &InvalidWorldError{Name: name}
	}
	return ref, nil
}

// At returns a position in the default world.
func (f Factory) At(x, y, z float64) (Position, error) {
	return f.AtIn(x, y, z, f.DefaultWorld)
}

// AtIn returns a position in the named world.
func (f Factory) AtIn(x, y, z float64, name string) (Position, error) {
	return f.AtOrientedIn(x, y, z, 0, 0, name)
}

// AtOrientedIn returns an oriented position in the named world.
func (f Factory) AtOrientedIn(x, y, z float64, yaw, pitch float32, name string) (Position, error) {
	ref, err := f.Resolve(name)
	if err != nil {
		return Position{}, err
	}
	return newPosition(x, y, z, yaw, pitch, ref)
}

// WithWorldNamed returns p moved to the named world.
func (f Factory) WithWorldNamed(p Position, name string) (Position, error) {
	ref, err := f.Resolve(name)
	if err != nil {
		return Position{}, err
	}
	return p.WithWorld(ref)
}

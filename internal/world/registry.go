package world

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrEmptyName   = errors.New("world name is empty")
	ErrInvalidName = errors.New("invalid world name")
	ErrIDConflict  = errors.New("world already registered with a different id")
)

// MaxNameLength matches the name columns of the worlds and warps tables.
const MaxNameLength = 64

// ValidateName checks that name can be stored and round-trips through the
// compact "world:x:y:z" form.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q longer than %d bytes", ErrInvalidName, name, MaxNameLength)
	}
	if strings.Contains(name, ":") {
		return fmt.Errorf("%w: %q contains ':'", ErrInvalidName, name)
	}
	return nil
}

// Ref is a lightweight handle to a named world.
// Identity is the ID; Name is carried along for encoding and for resolving
// the host world at the adapter boundary.
type Ref struct {
	ID   uuid.UUID
	Name string
}

// IsZero reports whether the ref points to no world.
func (r Ref) IsZero() bool {
	return r.ID == uuid.Nil
}

func (r Ref) String() string {
	if r.IsZero() {
		return "<none>"
	}
	return r.Name
}

// Resolver resolves world names to refs.
type Resolver interface {
	Lookup(name string) (Ref, bool)
}

// Registry is the set of worlds known to the server.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]Ref
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{worlds: make(map[string]Ref)}
}

// Register adds a world with a random identity.
// Registering an already known name returns the existing ref.
func (r *Registry) Register(name string) (Ref, error) {
	if err := ValidateName(name); err != nil {
		return Ref{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.worlds[name]; ok {
		return ref, nil
	}
	ref := Ref{ID: uuid.New(), Name: name}
	r.worlds[name] = ref
	return ref, nil
}

// RegisterWithID adds a world with a fixed identity (world UID).
func (r *Registry) RegisterWithID(name string, id uuid.UUID) (Ref, error) {
	if err := ValidateName(name); err != nil {
		return Ref{}, err
	}
	if id == uuid.Nil {
		return r.Register(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.worlds[name]; ok {
		if ref.ID != id {
			return Ref{}, fmt.Errorf("registering world %q with id %s: %w", name, id, ErrIDConflict)
		}
		return ref, nil
	}
	ref := Ref{ID: id, Name: name}
	r.worlds[name] = ref
	return ref, nil
}

// Unregister removes a world. Refs handed out earlier stay valid values but
// no longer resolve by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.worlds, name)
	r.mu.Unlock()
}

// Lookup returns the ref registered under name. Names are case-sensitive.
func (r *Registry) Lookup(name string) (Ref, bool) {
	r.mu.RLock()
	ref, ok := r.worlds[name]
	r.mu.RUnlock()
	return ref, ok
}

// Names returns registered world names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.worlds))
	for name := range r.worlds {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered worlds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.worlds)
}

// Entry describes a world to register at startup.
type Entry struct {
	Name string
	UID  string // optional, empty means random
}

// LoadRegistry builds a registry from entries.
func LoadRegistry(entries []Entry) (*Registry, error) {
	reg := NewRegistry()
	for _, e := range entries {
		id := uuid.Nil
		if e.UID != "" {
			parsed, err := uuid.Parse(e.UID)
			if err != nil {
				return nil, fmt.Errorf("parsing uid of world %q: %w", e.Name, err)
			}
			id = parsed
		}
		if _, err := reg.RegisterWithID(e.Name, id); err != nil {
			return nil, fmt.Errorf("loading world %q: %w", e.Name, err)
		}
	}
	return reg, nil
}

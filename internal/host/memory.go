package host

import (
	"context"
	"sync"
)

const airBlock = "air"

// MemoryEngine is an in-process Engine used by tests and CLI dry runs.
// Safe for concurrent use.
type MemoryEngine struct {
	mu     sync.RWMutex
	worlds map[string]*MemoryWorld
}

// NewMemoryEngine creates an engine with the given worlds.
func NewMemoryEngine(names ...string) *MemoryEngine {
	e := &MemoryEngine{worlds: make(map[string]*MemoryWorld, len(names))}
	for _, name := range names {
		e.AddWorld(name)
	}
	return e
}

// AddWorld creates a world, or returns the existing one.
func (e *MemoryEngine) AddWorld(name string) *MemoryWorld {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w, ok := e.worlds[name]; ok {
		return w
	}
	w := &MemoryWorld{name: name, blocks: make(map[[3]int]string)}
	e.worlds[name] = w
	return w
}

// World implements Engine.
func (e *MemoryEngine) World(name string) (World, bool) {
	e.mu.RLock()
	w, ok := e.worlds[name]
	e.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return w, true
}

// MemoryWorld is a sparse block store. Unset blocks are air.
type MemoryWorld struct {
	name string

	mu     sync.RWMutex
	blocks map[[3]int]string
}

func (w *MemoryWorld) Name() string {
	return w.name
}

// SetBlock sets the block type at x, y, z.
func (w *MemoryWorld) SetBlock(x, y, z int, typ string) {
	w.mu.Lock()
	w.blocks[[3]int{x, y, z}] = typ
	w.mu.Unlock()
}

func (w *MemoryWorld) BlockAt(x, y, z int) Block {
	w.mu.RLock()
	typ, ok := w.blocks[[3]int{x, y, z}]
	w.mu.RUnlock()
	if !ok {
		typ = airBlock
	}
	return MemoryBlock{world: w, x: x, y: y, z: z, typ: typ}
}

// MemoryBlock is a snapshot of a block.
type MemoryBlock struct {
	world   *MemoryWorld
	x, y, z int
	typ     string
}

func (b MemoryBlock) Location() Location {
	return Location{World: b.world, X: float64(b.x), Y: float64(b.y), Z: float64(b.z)}
}

func (b MemoryBlock) Type() string {
	return b.typ
}

// MemoryEntity records its location and teleports.
type MemoryEntity struct {
	mu        sync.Mutex
	loc       Location
	teleports int
}

// NewMemoryEntity spawns an entity at loc.
func NewMemoryEntity(loc Location) *MemoryEntity {
	return &MemoryEntity{loc: loc}
}

func (e *MemoryEntity) Location() Location {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loc
}

func (e *MemoryEntity) Teleport(ctx context.Context, loc Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	e.loc = loc
	e.teleports++
	e.mu.Unlock()
	return nil
}

// Teleports returns how many times the entity was teleported.
func (e *MemoryEntity) Teleports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.teleports
}

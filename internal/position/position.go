package position

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/waypoint/internal/world"
)

// Position is an immutable point in a world: coordinates plus orientation.
// Value type, pass by value. Every With*/Centered/Block call returns a copy.
type Position struct {
	x, y, z    float64
	yaw, pitch float32
	world      world.Ref
}

// At returns a position with zero yaw and pitch.
func At(x, y, z float64, w world.Ref) (Position, error) {
	return newPosition(x, y, z, 0, 0, w)
}

// AtOriented returns a position with the given orientation.
func AtOriented(x, y, z float64, yaw, pitch float32, w world.Ref) (Position, error) {
	return newPosition(x, y, z, yaw, pitch, w)
}

// newPosition: единственный конструктор, все фабрики идут через него.
func newPosition(x, y, z float64, yaw, pitch float32, w world.Ref) (Position, error) {
	if w.IsZero() {
		return Position{}, &InvalidWorldError{Name: w.Name}
	}
	return Position{x: x, y: y, z: z, yaw: yaw, pitch: pitch, world: w}, nil
}

func (p Position) X() float64       { return p.x }
func (p Position) Y() float64       { return p.y }
func (p Position) Z() float64       { return p.z }
func (p Position) Yaw() float32     { return p.yaw }
func (p Position) Pitch() float32   { return p.pitch }
func (p Position) World() world.Ref { return p.world }

// IsZero reports whether p was never constructed through a factory.
func (p Position) IsZero() bool {
	return p.world.IsZero()
}

// WithX возвращает новую Position с заменённой координатой X.
func (p Position) WithX(x float64) Position {
	p.x = x
	return p
}

// WithY возвращает новую Position с заменённой координатой Y.
func (p Position) WithY(y float64) Position {
	p.y = y
	return p
}

// WithZ возвращает новую Position с заменённой координатой Z.
func (p Position) WithZ(z float64) Position {
	p.z = z
	return p
}

func (p Position) WithYaw(yaw float32) Position {
	p.yaw = yaw
	return p
}

func (p Position) WithPitch(pitch float32) Position {
	p.pitch = pitch
	return p
}

// WithWorld returns p moved to another world, keeping coordinates and orientation.
func (p Position) WithWorld(w world.Ref) (Position, error) {
	return newPosition(p.x, p.y, p.z, p.yaw, p.pitch, w)
}

// Centered snaps every coordinate to the middle of its block.
func (p Position) Centered() Position {
	p.x = Center(p.x)
	p.y = Center(p.y)
	p.z = Center(p.z)
	return p
}

// Block snaps every coordinate to the origin corner of its block.
func (p Position) Block() Position {
	p.x = math.Floor(p.x)
	p.y = math.Floor(p.y)
	p.z = math.Floor(p.z)
	return p
}

// BlockPos returns the integer block coordinates containing p.
func (p Position) BlockPos() [3]int {
	return [3]int{BlockCoord(p.x), BlockCoord(p.y), BlockCoord(p.z)}
}

// Center returns the middle of the block containing v.
func Center(v float64) float64 {
	return math.Floor(v) + 0.5
}

// BlockCoord returns the block coordinate containing v. Values outside the
// int range saturate to math.MinInt/math.MaxInt, NaN maps to 0.
func BlockCoord(v float64) int {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}

// Vec returns the coordinates as a vector.
func (p Position) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.x, p.y, p.z}
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt).
// Для разных миров возвращает +Inf.
func (p Position) DistanceSquared(other Position) float64 {
	if p.world.ID != other.world.ID {
		return math.Inf(1)
	}
	d := p.Vec().Sub(other.Vec())
	return d.Dot(d)
}

// Distance returns the euclidean distance to other, +Inf across worlds.
func (p Position) Distance(other Position) float64 {
	if p.world.ID != other.world.ID {
		return math.Inf(1)
	}
	return p.Vec().Sub(other.Vec()).Len()
}

// Equal reports structural equality over coordinates, orientation and world
// identity. NaN equals NaN; -0 and +0 differ.
func (p Position) Equal(other Position) bool {
	return sameFloat64(p.x, other.x) &&
		sameFloat64(p.y, other.y) &&
		sameFloat64(p.z, other.z) &&
		sameFloat32(p.yaw, other.yaw) &&
		sameFloat32(p.pitch, other.pitch) &&
		p.world.ID == other.world.ID
}

// Hash is consistent with Equal.
func (p Position) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range [...]uint64{
		canonicalBits64(p.x),
		canonicalBits64(p.y),
		canonicalBits64(p.z),
		uint64(canonicalBits32(p.yaw)),
		uint64(canonicalBits32(p.pitch)),
	} {
		for i := range buf {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	h.Write(p.world.ID[:])
	return h.Sum64()
}

func (p Position) String() string {
	return fmt.Sprintf("Position{x=%s, y=%s, z=%s, yaw=%s, pitch=%s, world=%s}",
		strconv.FormatFloat(p.x, 'g', -1, 64),
		strconv.FormatFloat(p.y, 'g', -1, 64),
		strconv.FormatFloat(p.z, 'g', -1, 64),
		strconv.FormatFloat(float64(p.yaw), 'g', -1, 32),
		strconv.FormatFloat(float64(p.pitch), 'g', -1, 32),
		p.world,
	)
}

func sameFloat64(a, b float64) bool {
	return canonicalBits64(a) == canonicalBits64(b)
}

func sameFloat32(a, b float32) bool {
	return canonicalBits32(a) == canonicalBits32(b)
}

// canonicalBits64 collapses all NaN payloads into one.
func canonicalBits64(v float64) uint64 {
	if math.IsNaN(v) {
		return 0x7ff8000000000000
	}
	return math.Float64bits(v)
}

func canonicalBits32(v float32) uint32 {
	if v != v {
		return 0x7fc00000
	}
	return math.Float32bits(v)
}

package position

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/waypoint/internal/world"
)

// Structured object keys. Exact and case-sensitive.
const (
	KeyX     = "X"
	KeyY     = "Y"
	KeyZ     = "Z"
	KeyYaw   = "Yaw"
	KeyPitch = "Pitch"
	KeyWorld = "World"
)

const compactSeparator = ":"

// Structured is the canonical encoded form of a Position.
type Structured struct {
	X     float64 `json:"X"`
	Y     float64 `json:"Y"`
	Z     float64 `json:"Z"`
	Yaw   float32 `json:"Yaw"`
	Pitch float32 `json:"Pitch"`
	World string  `json:"World"`
}

// Kind tags the shape of an encoded position.
type Kind uint8

const (
	KindCompact    Kind = iota + 1 // "world:x:y:z[:yaw:pitch]", decode only
	KindStructured                 // {"X":..,"Y":..,"Z":..,"Yaw":..,"Pitch":..,"World":..}
)

func (k Kind) String() string {
	switch k {
	case KindCompact:
		return "compact"
	case KindStructured:
		return "structured"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Encoded is a position payload before decoding: either a compact string or
// the raw fields of a structured object.
type Encoded struct {
	Kind    Kind
	Compact string
	Object  map[string]json.RawMessage
}

// CompactEncoded wraps a compact string.
func CompactEncoded(s string) Encoded {
	return Encoded{Kind: KindCompact, Compact: s}
}

// StructuredEncoded wraps an already typed structured value.
func StructuredEncoded(s Structured) Encoded {
	obj := make(map[string]json.RawMessage, 6)
	obj[KeyX] = json.RawMessage(strconv.FormatFloat(s.X, 'g', -1, 64))
	obj[KeyY] = json.RawMessage(strconv.FormatFloat(s.Y, 'g', -1, 64))
	obj[KeyZ] = json.RawMessage(strconv.FormatFloat(s.Z, 'g', -1, 64))
	obj[KeyYaw] = json.RawMessage(strconv.FormatFloat(float64(s.Yaw), 'g', -1, 32))
	obj[KeyPitch] = json.RawMessage(strconv.FormatFloat(float64(s.Pitch), 'g', -1, 32))
	obj[KeyWorld] = json.RawMessage(strconv.Quote(s.World))
	return Encoded{Kind: KindStructured, Object: obj}
}

// ParseEncoded classifies raw JSON: a string is the compact form, an object
// is the structured form. Anything else is a *DecodeError.
func ParseEncoded(data []byte) (Encoded, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Encoded{}, decodeErr("", "empty payload", nil)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Encoded{}, decodeErr(string(trimmed), "invalid string", err)
		}
		return CompactEncoded(s), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Encoded{}, decodeErr(string(trimmed), "invalid object", err)
		}
		return Encoded{Kind: KindStructured, Object: obj}, nil
	default:
		return Encoded{}, decodeErr(string(trimmed), "expected string or object", nil)
	}
}

// Encode returns the structured form of p.
func Encode(p Position) Structured {
	return Structured{
		X:     p.x,
		Y:     p.y,
		Z:     p.z,
		Yaw:   p.yaw,
		Pitch: p.pitch,
		World: p.world.Name,
	}
}

// MarshalJSON always writes the structured form.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(p))
}

// Codec decodes positions, resolving world names through Worlds.
type Codec struct {
	Worlds world.Resolver
}

// NewCodec returns a Codec bound to worlds.
func NewCodec(worlds world.Resolver) Codec {
	return Codec{Worlds: worlds}
}

// Marshal encodes p in the structured form.
func (c Codec) Marshal(p Position) ([]byte, error) {
	data, err := json.Marshal(Encode(p))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", p, err)
	}
	return data, nil
}

// Unmarshal decodes a JSON string (compact) or object (structured).
func (c Codec) Unmarshal(data []byte) (Position, error) {
	enc, err := ParseEncoded(data)
	if err != nil {
		return Position{}, err
	}
	return c.Decode(enc)
}

// Decode turns an encoded payload into a Position.
func (c Codec) Decode(enc Encoded) (Position, error) {
	switch enc.Kind {
	case KindCompact:
		// Legacy path: older configs and databases stored positions as
		// "world:x:y:z[:yaw:pitch]". Accepted on decode, never produced.
		return c.ParseCompact(enc.Compact)
	case KindStructured:
		return c.decodeStructured(enc.Object)
	default:
		return Position{}, decodeErr("", "unknown encoding "+enc.Kind.String(), nil)
	}
}

// ParseCompact parses "world:x:y:z" or "world:x:y:z:yaw:pitch".
func (c Codec) ParseCompact(s string) (Position, error) {
	fields := strings.Split(s, compactSeparator)
	if len(fields) != 4 && len(fields) != 6 {
		return Position{}, decodeErr(s, fmt.Sprintf("expected 4 or 6 fields, got %d", len(fields)), nil)
	}

	name := fields[0]
	if name == "" {
		return Position{}, decodeErr(s, "empty world name", nil)
	}

	var coords [3]float64
	for i := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return Position{}, decodeErr(s, fmt.Sprintf("field %d is not a number", i+1), err)
		}
		coords[i] = v
	}

	var yaw, pitch float32
	if len(fields) == 6 {
		var err error
		if yaw, err = parseFloat32(fields[4]); err != nil {
			return Position{}, decodeErr(s, "yaw is not a number", err)
		}
		if pitch, err = parseFloat32(fields[5]); err != nil {
			return Position{}, decodeErr(s, "pitch is not a number", err)
		}
	}

	return c.factory().AtOrientedIn(coords[0], coords[1], coords[2], yaw, pitch, name)
}

// FormatCompact renders p in the legacy compact form. Orientation is
// omitted when both angles are zero. For display only.
func FormatCompact(p Position) string {
	parts := []string{
		p.world.Name,
		strconv.FormatFloat(p.x, 'g', -1, 64),
		strconv.FormatFloat(p.y, 'g', -1, 64),
		strconv.FormatFloat(p.z, 'g', -1, 64),
	}
	if p.yaw != 0 || p.pitch != 0 {
		parts = append(parts,
			strconv.FormatFloat(float64(p.yaw), 'g', -1, 32),
			strconv.FormatFloat(float64(p.pitch), 'g', -1, 32),
		)
	}
	return strings.Join(parts, compactSeparator)
}

func (c Codec) decodeStructured(obj map[string]json.RawMessage) (Position, error) {
	if obj == nil {
		return Position{}, decodeErr("", "empty object", nil)
	}

	var s Structured
	fields := []struct {
		key string
		dst any
	}{
		{KeyX, &s.X},
		{KeyY, &s.Y},
		{KeyZ, &s.Z},
		{KeyYaw, &s.Yaw},
		{KeyPitch, &s.Pitch},
		{KeyWorld, &s.World},
	}
	for _, f := range fields {
		raw, ok := obj[f.key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Position{}, decodeErr(f.key, "missing key", nil)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return Position{}, decodeErr(f.key, "invalid value", err)
		}
	}

	return c.factory().AtOrientedIn(s.X, s.Y, s.Z, s.Yaw, s.Pitch, s.World)
}

func (c Codec) factory() Factory {
	return Factory{Worlds: c.Worlds}
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

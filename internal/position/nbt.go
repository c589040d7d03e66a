package position

import (
	"bytes"
	"fmt"

	"github.com/Tnze/go-mc/nbt"
)

// nbtPosition mirrors the entity tags Minecraft uses for location data.
type nbtPosition struct {
	Pos      []float64 `nbt:"Pos"`
	Rotation []float32 `nbt:"Rotation"`
	World    string    `nbt:"World"`
}

// MarshalNBT encodes p as an NBT compound: Pos [x y z], Rotation [yaw pitch], World.
func (c Codec) MarshalNBT(p Position) ([]byte, error) {
	var buf bytes.Buffer
	err := nbt.NewEncoder(&buf).Encode(nbtPosition{
		Pos:      []float64{p.x, p.y, p.z},
		Rotation: []float32{p.yaw, p.pitch},
		World:    p.world.Name,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("encoding %s as nbt: %w", p, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalNBT decodes a compound written by MarshalNBT.
func (c Codec) UnmarshalNBT(data []byte) (Position, error) {
	var v nbtPosition
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return Position{}, decodeErr("", "invalid nbt", err)
	}
	if len(v.Pos) != 3 {
		return Position{}, decodeErr("Pos", fmt.Sprintf("expected 3 values, got %d", len(v.Pos)), nil)
	}
	if len(v.Rotation) != 2 {
		return Position{}, decodeErr("Rotation", fmt.Sprintf("expected 2 values, got %d", len(v.Rotation)), nil)
	}
	return c.factory().AtOrientedIn(v.Pos[0], v.Pos[1], v.Pos[2], v.Rotation[0], v.Rotation[1], v.World)
}

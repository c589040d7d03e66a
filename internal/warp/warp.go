package warp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/waypoint/internal/host"
	"github.com/udisondev/waypoint/internal/position"
)

var (
	ErrNotFound    = errors.New("warp not found")
	ErrInvalidName = errors.New("invalid warp name")
)

const (
	maxNameLength        = 64
	defaultImportWorkers = 4
)

// Warp is a named position players can teleport to.
type Warp struct {
	Name     string
	Position position.Position
}

// Store persists warps. Load returns ErrNotFound for unknown names.
type Store interface {
	Save(ctx context.Context, w Warp) error
	Load(ctx context.Context, name string) (Warp, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Warp, error)
}

// Teleporter moves entities to positions.
type Teleporter interface {
	Warp(ctx context.Context, p position.Position, e host.Entity) error
}

// Service manages named warps.
type Service struct {
	store         Store
	codec         position.Codec
	teleporter    Teleporter
	importWorkers int
}

// NewService creates a warp service. teleporter may be nil when the service
// runs outside the game server (CLI).
func NewService(store Store, codec position.Codec, teleporter Teleporter, importWorkers int) *Service {
	if importWorkers <= 0 {
		importWorkers = defaultImportWorkers
	}
	return &Service{
		store:         store,
		codec:         codec,
		teleporter:    teleporter,
		importWorkers: importWorkers,
	}
}

// NormalizeName lower-cases and validates a warp name.
func NormalizeName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > maxNameLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, " \t\n:") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// Set creates or replaces a warp.
func (s *Service) Set(ctx context.Context, name string, p position.Position) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if p.IsZero() {
		return fmt.Errorf("setting warp %q: %w", name, &position.InvalidWorldError{})
	}
	if err := s.store.Save(ctx, Warp{Name: name, Position: p}); err != nil {
		return fmt.Errorf("saving warp %q: %w", name, err)
	}
	slog.Info("warp set", "name", name, "position", p.String())
	return nil
}

// Get returns a warp by name.
func (s *Service) Get(ctx context.Context, name string) (Warp, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Warp{}, err
	}
	w, err := s.store.Load(ctx, name)
	if err != nil {
		return Warp{}, fmt.Errorf("loading warp %q: %w", name, err)
	}
	return w, nil
}

// Delete removes a warp.
func (s *Service) Delete(ctx context.Context, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("deleting warp %q: %w", name, err)
	}
	slog.Info("warp deleted", "name", name)
	return nil
}

// List returns all warps ordered by name.
func (s *Service) List(ctx context.Context) ([]Warp, error) {
	warps, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing warps: %w", err)
	}
	return warps, nil
}

// Teleport moves e to the centered position of the named warp.
func (s *Service) Teleport(ctx context.Context, name string, e host.Entity) error {
	if s.teleporter == nil {
		return errors.New("teleport unavailable: no host attached")
	}
	w, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	return s.teleporter.Warp(ctx, w.Position, e)
}

// Import decodes raw payloads (JSON compact strings or structured objects)
// and saves them.
func (s *Service) Import(ctx context.Context, entries map[string][]byte) (int, error) {
	encoded := make(map[string]position.Encoded, len(entries))
	for name, raw := range entries {
		enc, err := position.ParseEncoded(raw)
		if err != nil {
			return 0, fmt.Errorf("importing warp %q: %w", name, err)
		}
		encoded[name] = enc
	}
	return s.importEncoded(ctx, encoded)
}

// ImportCompact imports legacy "world:x:y:z[:yaw:pitch]" strings.
func (s *Service) ImportCompact(ctx context.Context, entries map[string]string) (int, error) {
	encoded := make(map[string]position.Encoded, len(entries))
	for name, compact := range entries {
		encoded[name] = position.CompactEncoded(compact)
	}
	return s.importEncoded(ctx, encoded)
}

// importEncoded decodes and saves entries concurrently; the first failure
// cancels the rest and is returned. Names are normalized up front, two
// keys that normalize to the same warp fail the whole import.
func (s *Service) importEncoded(ctx context.Context, entries map[string]position.Encoded) (int, error) {
	normalized := make(map[string]position.Encoded, len(entries))
	for raw, enc := range entries {
		name, err := NormalizeName(raw)
		if err != nil {
			return 0, fmt.Errorf("importing warp %q: %w", raw, err)
		}
		if _, dup := normalized[name]; dup {
			return 0, fmt.Errorf("importing warp %q: %w: duplicate of %q", raw, ErrInvalidName, name)
		}
		normalized[name] = enc
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.importWorkers)

	for name, enc := range normalized {
		g.Go(func() error {
			p, err := s.codec.Decode(enc)
			if err != nil {
				return fmt.Errorf("importing warp %q: %w", name, err)
			}
			return s.Set(ctx, name, p)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	slog.Info("warps imported", "count", len(normalized))
	return len(normalized), nil
}

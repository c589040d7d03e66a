package world

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Store persists world identities so that refs stay stable across restarts.
type Store interface {
	LoadAll(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, ref Ref) error
}

// Bootstrap builds the registry from configured entries.
// A UID pinned in config wins; otherwise the persisted UID is reused; new
// worlds get a random UID which is then persisted. A pinned UID that
// differs from the persisted one is an error.
func Bootstrap(ctx context.Context, store Store, entries []Entry) (*Registry, error) {
	persisted, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading persisted worlds: %w", err)
	}
	known := make(map[string]string, len(persisted))
	for _, e := range persisted {
		known[e.Name] = e.UID
	}

	resolved := make([]Entry, 0, len(entries))
	for _, e := range entries {
		stored, ok := known[e.Name]
		switch {
		case e.UID == "" && ok:
			e.UID = stored
		case e.UID != "" && ok && !sameUID(e.UID, stored):
			return nil, fmt.Errorf("world %q: configured uid %s, stored %s: %w", e.Name, e.UID, stored, ErrIDConflict)
		}
		resolved = append(resolved, e)
	}

	reg, err := LoadRegistry(resolved)
	if err != nil {
		return nil, err
	}

	for _, name := range reg.Names() {
		if _, ok := known[name]; ok {
			continue
		}
		ref, _ := reg.Lookup(name)
		if err := store.Save(ctx, ref); err != nil {
			return nil, fmt.Errorf("persisting world %q: %w", name, err)
		}
		slog.Info("world registered", "name", name, "uid", ref.ID.String())
	}
	return reg, nil
}

func sameUID(a, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ua == ub
}

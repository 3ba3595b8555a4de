package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/csdex/csdex/internal/fetch"
	"golang.org/x/sync/singleflight"
)

// Snapshot pairs a parsed catalog with its derived index. Both are immutable
// once published.
type Snapshot struct {
	Catalog *Catalog
	Index   *Index
}

// Store holds the current catalog snapshot for the process. The snapshot is
// swapped wholesale behind an atomic pointer: readers either see the previous
// fully built snapshot or the new one, never a partial build. Loads of the
// same store are deduplicated, so a second Ensure while the first is in
// flight shares its result.
type Store struct {
	location string
	current  atomic.Pointer[Snapshot]
	group    singleflight.Group
}

// NewStore creates a store that loads the catalog payload from location.
func NewStore(location string) *Store {
	return &Store{location: location}
}

// Current returns the loaded snapshot, or nil when no load has succeeded yet.
// Callers treat nil as an empty corpus.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Ensure returns the current snapshot, loading it first if necessary.
func (s *Store) Ensure(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.load(ctx, false)
}

// Reload fetches the payload again, rebuilds the index, and atomically swaps
// the new snapshot in. The old snapshot is discarded, never patched.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) (*Snapshot, error) {
	v, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		if !force {
			if snap := s.current.Load(); snap != nil {
				return snap, nil
			}
		}

		data, err := s.fetchPayload(ctx, force)
		if err != nil {
			return nil, err
		}

		var cat Catalog
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("decoding catalog payload: %w", err)
		}

		snap := &Snapshot{Catalog: &cat, Index: BuildIndex(cat.Types)}
		s.current.Store(snap)
		slog.Info("catalog loaded",
			"types", snap.Index.Len(),
			"members", cat.TotalMembers,
			"generated_at", cat.GeneratedAt)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// fetchPayload fetches the catalog from its source, falling back to the disk
// cache when the source is unreachable. Fresh fetches refresh the cache.
func (s *Store) fetchPayload(ctx context.Context, force bool) ([]byte, error) {
	if !force && fetch.HasCache("catalog") {
		if data, err := fetch.LoadCache("catalog"); err == nil {
			return data, nil
		}
	}

	data, err := fetch.Payload(ctx, s.location)
	if err != nil {
		if cached, cacheErr := fetch.LoadCache("catalog"); cacheErr == nil {
			slog.Warn("catalog fetch failed, using cached payload", "error", err)
			return cached, nil
		}
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	if err := fetch.SaveCache(data, "catalog"); err != nil {
		slog.Warn("failed to cache catalog payload", "error", err)
	}
	return data, nil
}

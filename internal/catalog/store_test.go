package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func catalogJSON(name string) string {
	return `{
		"generated_at": "2024-01-01T00:00:00Z",
		"total_types": 1,
		"total_members": 0,
		"types": [{"name": "` + name + `", "kind": "class"}]
	}`
}

func TestStore_EnsureLoadsOnce(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(catalogJSON("Pawn")))
	}))
	defer srv.Close()

	s := NewStore(srv.URL + "/docs_enhanced.json")
	if s.Current() != nil {
		t.Fatal("fresh store should have no snapshot")
	}

	ctx := context.Background()
	snap, err := s.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Index.GetType("Pawn") == nil {
		t.Error("loaded snapshot missing Pawn")
	}

	again, err := s.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again != snap {
		t.Error("second Ensure should return the same snapshot")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("payload fetched %d times, want 1", got)
	}
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var version atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if version.Load() == 0 {
			w.Write([]byte(catalogJSON("Pawn")))
		} else {
			w.Write([]byte(catalogJSON("Thing")))
		}
	}))
	defer srv.Close()

	s := NewStore(srv.URL + "/docs_enhanced.json")
	ctx := context.Background()

	first, err := s.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	version.Store(1)

	second, err := s.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("Reload should build a new snapshot")
	}
	if second.Index.GetType("Thing") == nil || second.Index.GetType("Pawn") != nil {
		t.Error("new snapshot should reflect the new payload")
	}
	if s.Current() != second {
		t.Error("Current should observe the swapped snapshot")
	}
	// The old snapshot stays intact for readers that still hold it.
	if first.Index.GetType("Pawn") == nil {
		t.Error("old snapshot mutated by reload")
	}
}

func TestStore_FetchFailureFallsBackToCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(catalogJSON("Pawn")))
	}))
	defer srv.Close()

	s := NewStore(srv.URL + "/docs_enhanced.json")
	ctx := context.Background()

	if _, err := s.Ensure(ctx); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	snap, err := s.Reload(ctx)
	if err != nil {
		t.Fatalf("reload should fall back to the disk cache: %v", err)
	}
	if snap.Index.GetType("Pawn") == nil {
		t.Error("fallback snapshot missing cached data")
	}
}

func TestStore_LoadFailureKeepsNoSnapshot(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStore(srv.URL + "/docs_enhanced.json")
	if _, err := s.Ensure(context.Background()); err == nil {
		t.Fatal("expected load failure")
	}
	if s.Current() != nil {
		t.Error("failed load must not publish a snapshot")
	}
}

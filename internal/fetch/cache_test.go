package fetch

import (
	"bytes"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	data := []byte(`{"total_types": 3, "types": []}`)
	if err := SaveCache(data, "catalog"); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	if !HasCache("catalog") {
		t.Fatal("HasCache should report the saved payload")
	}
	if HasCache("comments") {
		t.Error("HasCache should not report unsaved payloads")
	}

	got, err := LoadCache("catalog")
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %q, want %q", got, data)
	}
}

func TestCacheOverwrite(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := SaveCache([]byte("old"), "catalog"); err != nil {
		t.Fatal(err)
	}
	if err := SaveCache([]byte("new"), "catalog"); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCache("catalog")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want the newer payload", got)
	}
}

func TestClearCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := SaveCache([]byte("data"), "catalog"); err != nil {
		t.Fatal(err)
	}
	if err := ClearCache(); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if HasCache("catalog") {
		t.Error("payload should be gone after ClearCache")
	}
	if _, err := LoadCache("catalog"); err == nil {
		t.Error("LoadCache after clear should fail")
	}

	// Clearing an already-empty cache is not an error.
	if err := ClearCache(); err != nil {
		t.Errorf("second ClearCache: %v", err)
	}
}

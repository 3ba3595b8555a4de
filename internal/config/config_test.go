package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "csdex")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "csdex")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	got := cacheBase()
	// Should use os.TempDir() when HOME is unset
	if !strings.Contains(got, "csdex") {
		t.Errorf("expected csdex in path, got %q", got)
	}
}

func TestSocketPath_XDGRuntime(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	want := filepath.Join("/run/user/1000", "csdex", "daemon.sock")
	if got := SocketPath(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSourceConfig_Resolve(t *testing.T) {
	tests := []struct {
		base string
		name string
		want string
	}{
		{"https://docs.example.com/export", "docs_enhanced.json",
			"https://docs.example.com/export/docs_enhanced.json"},
		// Trailing slash on the base is collapsed.
		{"https://docs.example.com/export/", "comments.json",
			"https://docs.example.com/export/comments.json"},
		// Local directory bases join as paths.
		{"/srv/export", "docs_enhanced.json", "/srv/export/docs_enhanced.json"},
		// Absolute names and full URLs ignore the base.
		{"https://docs.example.com", "/tmp/local.json", "/tmp/local.json"},
		{"/srv/export", "https://cdn.example.com/docs.json", "https://cdn.example.com/docs.json"},
		// No base: the name stands alone.
		{"", "docs_enhanced.json", "docs_enhanced.json"},
		{"https://docs.example.com", "", ""},
	}

	for _, tt := range tests {
		s := SourceConfig{BaseURL: tt.base}
		if got := s.resolve(tt.name); got != tt.want {
			t.Errorf("resolve(base=%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}

func TestSourceConfig_URLs(t *testing.T) {
	s := SourceConfig{
		BaseURL:          "https://docs.example.com",
		Catalog:          "docs_enhanced.json",
		Comments:         "comments.json",
		XMLLinks:         "xml_class_links.json",
		TranslationLinks: "translation_links.json",
	}

	tests := []struct{ got, want string }{
		{s.CatalogURL(), "https://docs.example.com/docs_enhanced.json"},
		{s.CommentsURL(), "https://docs.example.com/comments.json"},
		{s.XMLLinksURL(), "https://docs.example.com/xml_class_links.json"},
		{s.TranslationLinksURL(), "https://docs.example.com/translation_links.json"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

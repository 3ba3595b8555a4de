package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/csdex/csdex/internal/config"
	"github.com/csdex/csdex/internal/fetch"
	"golang.org/x/sync/singleflight"
)

// xmlLinks wraps the XML payload with a by-class view built once at load.
type xmlLinks struct {
	payload *XMLLinksPayload
	byClass map[string][]XMLLink
}

// Store holds the three annotation payloads. Each slot is populated at most
// once per load cycle (Reload and ReloadAll drop all three); loads are
// deduplicated so concurrent callers share a single fetch.
type Store struct {
	source config.SourceConfig

	comments     atomic.Pointer[CommentsPayload]
	xml          atomic.Pointer[xmlLinks]
	translations atomic.Pointer[TranslationLinksPayload]

	group singleflight.Group
}

func NewStore(source config.SourceConfig) *Store {
	return &Store{source: source}
}

// EnsureComments loads the comments payload if it is not loaded yet.
func (s *Store) EnsureComments(ctx context.Context) error {
	return s.ensureComments(ctx, false)
}

func (s *Store) ensureComments(ctx context.Context, force bool) error {
	if !force && s.comments.Load() != nil {
		return nil
	}
	_, err, _ := s.group.Do("comments", func() (interface{}, error) {
		if !force {
			if p := s.comments.Load(); p != nil {
				return nil, nil
			}
		}
		data, err := s.fetchPayload(ctx, "comments", s.source.CommentsURL(), force)
		if err != nil {
			return nil, err
		}
		var payload CommentsPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decoding comments payload: %w", err)
		}
		s.comments.Store(&payload)
		slog.Info("comments loaded", "count", len(payload.Comments))
		return nil, nil
	})
	return err
}

// EnsureXMLLinks loads the XML usage payload if it is not loaded yet.
func (s *Store) EnsureXMLLinks(ctx context.Context) error {
	return s.ensureXMLLinks(ctx, false)
}

func (s *Store) ensureXMLLinks(ctx context.Context, force bool) error {
	if !force && s.xml.Load() != nil {
		return nil
	}
	_, err, _ := s.group.Do("xml_links", func() (interface{}, error) {
		if !force {
			if p := s.xml.Load(); p != nil {
				return nil, nil
			}
		}
		data, err := s.fetchPayload(ctx, "xml_links", s.source.XMLLinksURL(), force)
		if err != nil {
			return nil, err
		}
		var payload XMLLinksPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decoding xml links payload: %w", err)
		}

		byClass := make(map[string][]XMLLink)
		for _, links := range payload.TagGroups {
			for _, link := range links {
				byClass[link.CSharpClass] = append(byClass[link.CSharpClass], link)
			}
		}
		s.xml.Store(&xmlLinks{payload: &payload, byClass: byClass})
		slog.Info("xml links loaded", "tag_groups", len(payload.TagGroups))
		return nil, nil
	})
	return err
}

// EnsureTranslations loads the translation usage payload if it is not loaded
// yet.
func (s *Store) EnsureTranslations(ctx context.Context) error {
	return s.ensureTranslations(ctx, false)
}

func (s *Store) ensureTranslations(ctx context.Context, force bool) error {
	if !force && s.translations.Load() != nil {
		return nil
	}
	_, err, _ := s.group.Do("translation_links", func() (interface{}, error) {
		if !force {
			if p := s.translations.Load(); p != nil {
				return nil, nil
			}
		}
		data, err := s.fetchPayload(ctx, "translation_links", s.source.TranslationLinksURL(), force)
		if err != nil {
			return nil, err
		}
		var payload TranslationLinksPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decoding translation links payload: %w", err)
		}
		s.translations.Store(&payload)
		slog.Info("translation links loaded", "keys", len(payload.TranslationLinks))
		return nil, nil
	})
	return err
}

// EnsureAll loads whichever annotation payloads are still missing. Individual
// failures are logged and tolerated; annotations degrade to empty lookups.
func (s *Store) EnsureAll(ctx context.Context) {
	if err := s.EnsureComments(ctx); err != nil {
		slog.Warn("comments unavailable", "error", err)
	}
	if err := s.EnsureXMLLinks(ctx); err != nil {
		slog.Warn("xml links unavailable", "error", err)
	}
	if err := s.EnsureTranslations(ctx); err != nil {
		slog.Warn("translation links unavailable", "error", err)
	}
}

// fetchPayload reads the disk cache first unless force is set; fresh fetches
// refresh the cache, and a failed forced fetch falls back to the cached copy.
func (s *Store) fetchPayload(ctx context.Context, name, location string, force bool) ([]byte, error) {
	if !force && fetch.HasCache(name) {
		if data, err := fetch.LoadCache(name); err == nil {
			return data, nil
		}
	}
	data, err := fetch.Payload(ctx, location)
	if err != nil {
		if cached, cacheErr := fetch.LoadCache(name); cacheErr == nil {
			slog.Warn("payload fetch failed, using cached copy", "payload", name, "error", err)
			return cached, nil
		}
		return nil, err
	}
	if err := fetch.SaveCache(data, name); err != nil {
		slog.Warn("failed to cache payload", "payload", name, "error", err)
	}
	return data, nil
}

// Reload drops all three payloads so the next Ensure fetches fresh data.
func (s *Store) Reload() {
	s.comments.Store(nil)
	s.xml.Store(nil)
	s.translations.Store(nil)
}

// ReloadAll drops the three payloads and refetches them from their sources,
// bypassing the disk cache. Failures are tolerated like EnsureAll.
func (s *Store) ReloadAll(ctx context.Context) {
	s.Reload()
	if err := s.ensureComments(ctx, true); err != nil {
		slog.Warn("comments unavailable", "error", err)
	}
	if err := s.ensureXMLLinks(ctx, true); err != nil {
		slog.Warn("xml links unavailable", "error", err)
	}
	if err := s.ensureTranslations(ctx, true); err != nil {
		slog.Warn("translation links unavailable", "error", err)
	}
}

// Comment returns the comment stored under an exact key. The second result
// is false both for unknown keys and when the payload is not loaded.
func (s *Store) Comment(key string) (string, bool) {
	p := s.comments.Load()
	if p == nil {
		return "", false
	}
	text, ok := p.Comments[key]
	return text, ok
}

// CommentCount returns the number of loaded comments, zero when unloaded.
func (s *Store) CommentCount() int {
	p := s.comments.Load()
	if p == nil {
		return 0
	}
	return len(p.Comments)
}

// XMLUsage returns the XML links recorded for a C# class name.
func (s *Store) XMLUsage(className string) []XMLLink {
	l := s.xml.Load()
	if l == nil {
		return nil
	}
	return l.byClass[className]
}

// XMLTagGroup returns the XML links recorded under one tag group name.
func (s *Store) XMLTagGroup(tag string) []XMLLink {
	l := s.xml.Load()
	if l == nil {
		return nil
	}
	return l.payload.TagGroups[tag]
}

// TranslationUsage returns the recorded uses of a translation key.
func (s *Store) TranslationUsage(key string) []TranslationUse {
	p := s.translations.Load()
	if p == nil {
		return nil
	}
	return p.TranslationLinks[key]
}

// TranslationsForFile returns the translation uses recorded against one C#
// source file, grouped by translation key. Path separators are normalized so
// the backslash paths of the catalog match the payload's.
func (s *Store) TranslationsForFile(file string) map[string][]TranslationUse {
	p := s.translations.Load()
	if p == nil {
		return nil
	}
	want := normalizePath(file)
	var out map[string][]TranslationUse
	for key, uses := range p.TranslationLinks {
		for _, u := range uses {
			if normalizePath(u.CSharpFile) != want {
				continue
			}
			if out == nil {
				out = make(map[string][]TranslationUse)
			}
			out[key] = append(out[key], u)
		}
	}
	return out
}

func normalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Loaded reports which of the three payloads are currently loaded.
func (s *Store) Loaded() (comments, xml, translations bool) {
	return s.comments.Load() != nil, s.xml.Load() != nil, s.translations.Load() != nil
}

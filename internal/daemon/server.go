package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/csdex/csdex/internal/catalog"
	"github.com/csdex/csdex/internal/config"
	"github.com/csdex/csdex/internal/fetch"
	"github.com/csdex/csdex/internal/rpc"
	"github.com/csdex/csdex/internal/search"
	"github.com/csdex/csdex/internal/usage"
)

type Server struct {
	cfg         *config.Config
	store       *catalog.Store
	annotations *usage.Store
	engine      *search.Engine
	socketPath  string
	httpServer  *http.Server
	listener    net.Listener

	mu         sync.Mutex
	expTimer   *time.Timer
	expiration time.Duration
}

func NewServer(cfg *config.Config, socketPath string) *Server {
	expSec := cfg.Daemon.ExpirationSeconds
	if expSec <= 0 {
		expSec = 600
	}

	return &Server{
		cfg:         cfg,
		store:       catalog.NewStore(cfg.Source.CatalogURL()),
		annotations: usage.NewStore(cfg.Source),
		engine:      search.NewEngine(),
		socketPath:  socketPath,
		expiration:  time.Duration(expSec) * time.Second,
	}
}

func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.withExpReset(s.handleSearch))
	mux.HandleFunc("POST /type", s.withExpReset(s.handleGetType))
	mux.HandleFunc("POST /category", s.withExpReset(s.handleCategory))
	mux.HandleFunc("POST /hierarchy", s.withExpReset(s.handleHierarchy))
	mux.HandleFunc("POST /references", s.withExpReset(s.handleReferences))
	mux.HandleFunc("POST /overrides", s.withExpReset(s.handleOverrides))
	mux.HandleFunc("GET /status", s.withExpReset(s.handleStatus))
	mux.HandleFunc("POST /reload", s.withExpReset(s.handleReload))
	mux.HandleFunc("POST /clear-cache", s.withExpReset(s.handleClearCache))
	mux.HandleFunc("POST /shutdown", s.handleShutdown)

	s.httpServer = &http.Server{Handler: mux}

	s.mu.Lock()
	s.expTimer = time.AfterFunc(s.expiration, s.expire)
	s.mu.Unlock()

	slog.Info("daemon listening", "socket", s.socketPath, "expiration", s.expiration)

	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
			errs = append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) expire() {
	slog.Info("expiring due to inactivity")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	os.Exit(0)
}

func (s *Server) resetExpiration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expTimer != nil {
		s.expTimer.Stop()
		s.expTimer.Reset(s.expiration)
	}
}

func (s *Server) withExpReset(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resetExpiration()
		handler(w, r)
	}
}

// ensure loads the catalog snapshot, reporting load failures to the caller as
// a daemon error response. Annotation payloads are ensured on a best-effort
// basis alongside it.
func (s *Server) ensure(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := s.store.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	s.annotations.EnsureAll(ctx)
	return snap, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	results, err := s.engine.Search(r.Context(), req.Query, snap.Catalog.Types)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}

	out := make([]rpc.SearchResult, 0, limit)
	for _, res := range results[:limit] {
		out = append(out, rpc.SearchResult{
			TypeSummary: summarize(res.Type),
			MatchKind:   res.MatchKind,
			Relevance:   res.Relevance,
		})
	}
	writeJSON(w, http.StatusOK, rpc.SearchResponse{Results: out})
}

func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	var req rpc.GetTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing type name")
		return
	}

	snap, err := s.ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	t := snap.Index.GetType(req.Name)
	if t == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("type %s not found", req.Name))
		return
	}

	var doc string
	if req.Member != "" {
		doc = s.renderMemberDoc(snap, t, req.Member)
		if doc == "" {
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("member %s not found on %s", req.Member, req.Name))
			return
		}
	} else {
		doc = s.renderTypeDoc(snap, t)
	}
	writeJSON(w, http.StatusOK, rpc.GetTypeResponse{Markdown: doc})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req rpc.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	types := snap.Index.TypesByKind(req.Kind)
	total := len(types)

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	types = types[offset:]
	if req.Limit > 0 && req.Limit < len(types) {
		types = types[:req.Limit]
	}

	out := make([]rpc.TypeSummary, 0, len(types))
	for _, t := range types {
		out = append(out, summarize(t))
	}
	writeJSON(w, http.StatusOK, rpc.CategoryResponse{Kind: req.Kind, Total: total, Types: out})
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	var req rpc.HierarchyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpc.HierarchyResponse{
		Name:    req.Name,
		Bases:   snap.Index.BaseTypes(req.Name),
		Derived: snap.Index.DerivedTypes(req.Name),
	})
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	var req rpc.ReferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpc.ReferencesResponse{
		Name:        req.Name,
		Referencers: snap.Index.ReferencingTypes(req.Name),
	})
}

func (s *Server) handleOverrides(w http.ResponseWriter, r *http.Request) {
	var req rpc.OverridesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	info, found := snap.Index.Override(req.Type, req.Member)
	writeJSON(w, http.StatusOK, rpc.OverridesResponse{
		Found:        found,
		Overrides:    info.Overrides,
		OverriddenBy: info.OverriddenBy,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := rpc.StatusResponse{}
	if snap := s.store.Current(); snap != nil {
		resp.Loaded = true
		resp.GeneratedAt = snap.Catalog.GeneratedAt
		resp.TotalTypes = snap.Index.Len()
		resp.TotalMembers = snap.Catalog.TotalMembers
		resp.TypeCounts = snap.Catalog.TypeCounts
	}
	resp.Comments = s.annotations.CommentCount()
	_, resp.XMLLinksLoaded, resp.TranslationsLoaded = s.annotations.Loaded()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	// Cached search results point into the discarded snapshot.
	s.engine.Reset()
	s.annotations.ReloadAll(r.Context())
	writeJSON(w, http.StatusOK, rpc.ReloadResponse{Types: snap.Index.Len()})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := fetch.ClearCache(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.engine.Reset()
	slog.Info("payload cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
		os.Exit(0)
	}()
}

func summarize(t *catalog.TypeRecord) rpc.TypeSummary {
	return rpc.TypeSummary{
		Name:           t.Name,
		Kind:           t.Kind,
		AccessModifier: t.AccessModifier,
		File:           t.File,
		Line:           t.Line,
		MemberCount:    t.MemberCount,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

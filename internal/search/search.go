// Package search scores and ranks catalog types against free-text queries.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/csdex/csdex/internal/catalog"
)

// Match kinds reported on results. A result's kind is decided by the last
// matching signal in evaluation order, not the heaviest one; ranking does
// not depend on it.
const (
	MatchName      = "name"
	MatchFile      = "file"
	MatchSignature = "signature"
)

// ResultLimit caps the number of results returned for any query.
const ResultLimit = 100

// memberScanLimit bounds per-type member inspection so that scoring stays
// cheap on member-heavy types.
const memberScanLimit = 10

// batchSize is the number of types scored between cooperative context
// checks on large corpora.
const batchSize = 50

// asyncThreshold is the corpus size above which the scan yields between
// batches.
const asyncThreshold = 400

// Result is one scored type.
type Result struct {
	Type      *catalog.TypeRecord `json:"-"`
	MatchKind string              `json:"match_kind"`
	Relevance int                 `json:"relevance"`
}

// Engine ranks types against queries and caches results by normalized query.
// The cache grows for the lifetime of a corpus and must be Reset when a new
// corpus is loaded, since cached results point into the old type records.
type Engine struct {
	mu    sync.Mutex
	cache map[string][]Result
	scans int
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[string][]Result)}
}

// Search scores every type in the corpus against query and returns the top
// matches in descending relevance. On ties an exact name match ranks first,
// then corpus order. Empty and
// whitespace-only queries return nil immediately without touching the cache.
// On corpora of asyncThreshold or more types the scan checks ctx between
// batches; results are identical to a single synchronous pass.
func (e *Engine) Search(ctx context.Context, query string, types []catalog.TypeRecord) ([]Result, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	e.mu.Lock()
	if cached, ok := e.cache[q]; ok {
		e.mu.Unlock()
		return cached, nil
	}
	e.scans++
	e.mu.Unlock()

	chunked := len(types) >= asyncThreshold

	var results []Result
	for start := 0; start < len(types); start += batchSize {
		if chunked && start > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		end := start + batchSize
		if end > len(types) {
			end = len(types)
		}
		for i := start; i < end; i++ {
			rel, kind := scoreType(&types[i], q)
			if rel == 0 {
				continue
			}
			results = append(results, Result{Type: &types[i], MatchKind: kind, Relevance: rel})
		}
	}

	// On relevance ties an exact name match outranks its prefix-siblings
	// regardless of corpus order; remaining ties keep corpus order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return strings.ToLower(results[i].Type.Name) == q &&
			strings.ToLower(results[j].Type.Name) != q
	})
	if len(results) > ResultLimit {
		results = results[:ResultLimit]
	}

	e.mu.Lock()
	e.cache[q] = results
	e.mu.Unlock()
	return results, nil
}

// Reset clears the query cache. Must be called whenever a new corpus is
// swapped in.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cache = make(map[string][]Result)
	e.mu.Unlock()
}

// ScanCount reports how many full corpus scans the engine has performed.
// Instrumentation for tests; cache hits do not scan.
func (e *Engine) ScanCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scans
}

// scoreType accumulates the per-field relevance signals for one type. The
// reported match kind is overwritten by each later matching signal.
func scoreType(t *catalog.TypeRecord, q string) (int, string) {
	rel := 0
	kind := MatchName

	name := strings.ToLower(t.Name)
	if strings.Contains(name, q) {
		rel += 10
		if strings.HasPrefix(name, q) {
			rel += 5
		}
	}
	if strings.Contains(strings.ToLower(t.File), q) {
		rel += 3
		kind = MatchFile
	}
	if strings.Contains(strings.ToLower(t.AccessModifier), q) {
		rel += 3
	}
	for _, mod := range t.Modifiers {
		if strings.Contains(strings.ToLower(mod), q) {
			rel += 3
			break
		}
	}

	for i := range t.Members {
		if i >= memberScanLimit {
			break
		}
		m := &t.Members[i]
		if strings.Contains(strings.ToLower(m.Signature), q) {
			rel += 2
			kind = MatchSignature
		}
		if strings.Contains(strings.ToLower(m.Name), q) {
			rel += 3
			kind = MatchSignature
		}
		if m.ReturnType != "" && strings.Contains(strings.ToLower(m.ReturnType), q) {
			rel += 2
			kind = MatchSignature
		}
		if strings.Contains(strings.ToLower(m.AccessModifier), q) {
			rel += 2
			kind = MatchSignature
		}
	}

	return rel, kind
}

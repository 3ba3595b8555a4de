// Package rpc defines the request/response types exchanged between the CLI,
// the MCP server, and the background daemon over its unix socket.
package rpc

// TypeSummary is the compact type listing used by search and category
// responses.
type TypeSummary struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	AccessModifier string `json:"access_modifier,omitempty"`
	File           string `json:"file,omitempty"`
	Line           int    `json:"line,omitempty"`
	MemberCount    int    `json:"member_count"`
}

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchResult struct {
	TypeSummary
	MatchKind string `json:"match_kind"`
	Relevance int    `json:"relevance"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// GetTypeRequest is the request body for POST /type. Member narrows the
// rendered document to a single member.
type GetTypeRequest struct {
	Name   string `json:"name"`
	Member string `json:"member,omitempty"`
}

type GetTypeResponse struct {
	Markdown string `json:"markdown"`
}

// CategoryRequest is the request body for POST /category. Offset and Limit
// page through the ordered category listing; Limit <= 0 means no paging.
type CategoryRequest struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type CategoryResponse struct {
	Kind  string        `json:"kind"`
	Total int           `json:"total"`
	Types []TypeSummary `json:"types"`
}

// HierarchyRequest is the request body for POST /hierarchy.
type HierarchyRequest struct {
	Name string `json:"name"`
}

type HierarchyResponse struct {
	Name    string   `json:"name"`
	Bases   []string `json:"bases,omitempty"`
	Derived []string `json:"derived,omitempty"`
}

// ReferencesRequest is the request body for POST /references.
type ReferencesRequest struct {
	Name string `json:"name"`
}

type ReferencesResponse struct {
	Name        string   `json:"name"`
	Referencers []string `json:"referencers,omitempty"`
}

// OverridesRequest is the request body for POST /overrides.
type OverridesRequest struct {
	Type   string `json:"type"`
	Member string `json:"member"`
}

type OverridesResponse struct {
	Found        bool     `json:"found"`
	Overrides    string   `json:"overrides,omitempty"`
	OverriddenBy []string `json:"overridden_by,omitempty"`
}

// StatusResponse reports daemon and payload state.
type StatusResponse struct {
	Loaded             bool           `json:"loaded"`
	GeneratedAt        string         `json:"generated_at,omitempty"`
	TotalTypes         int            `json:"total_types"`
	TotalMembers       int            `json:"total_members"`
	TypeCounts         map[string]int `json:"type_counts,omitempty"`
	Comments           int            `json:"comments"`
	XMLLinksLoaded     bool           `json:"xml_links_loaded"`
	TranslationsLoaded bool           `json:"translations_loaded"`
}

// ReloadResponse is returned by POST /reload after the new snapshot is live.
type ReloadResponse struct {
	Types int `json:"types"`
}

package catalog

import "strings"

// Kind values for types in the catalog.
const (
	KindClass     = "class"
	KindInterface = "interface"
	KindStruct    = "struct"
	KindEnum      = "enum"
)

// Member kind values.
const (
	MemberMethod      = "method"
	MemberProperty    = "property"
	MemberField       = "field"
	MemberConstructor = "constructor"
	MemberEvent       = "event"
)

// Kinds lists the type kinds in category display order.
var Kinds = []string{KindClass, KindInterface, KindStruct, KindEnum}

// kindPlurals maps each kind to its plural category key. Plural keys are an
// explicit enumeration, never derived by suffixing the kind.
var kindPlurals = map[string]string{
	KindClass:     "classes",
	KindInterface: "interfaces",
	KindStruct:    "structs",
	KindEnum:      "enums",
}

// PluralKind returns the plural category key for a kind, or the kind itself
// when it has no entry.
func PluralKind(kind string) string {
	if p, ok := kindPlurals[kind]; ok {
		return p
	}
	return kind
}

// Catalog is the top-level structure of the extracted documentation payload.
type Catalog struct {
	GeneratedAt  string         `json:"generated_at"`
	TotalTypes   int            `json:"total_types"`
	TotalMembers int            `json:"total_members"`
	TypeCounts   map[string]int `json:"type_counts"`
	Types        []TypeRecord   `json:"types"`
}

// TypeRecord is one documented class, interface, struct, or enum. Name is the
// primary key within a catalog; duplicate names in the payload silently
// overwrite earlier entries during indexing.
type TypeRecord struct {
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	AccessModifier string         `json:"access_modifier"`
	Modifiers      []string       `json:"modifiers"`
	BaseTypes      []string       `json:"base_types"`
	File           string         `json:"file"`
	Line           int            `json:"line"`
	MemberCount    int            `json:"member_count"`
	Members        []MemberRecord `json:"members"`
}

// HasModifier reports whether the type declares the given modifier.
func (t *TypeRecord) HasModifier(mod string) bool {
	for _, m := range t.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// MemberRecord is one member of a type. Ownership is positional: a member
// belongs to the type whose Members slice contains it, and callers pass the
// owning type alongside the member where both are needed.
type MemberRecord struct {
	Kind           string   `json:"kind"`
	Name           string   `json:"name"`
	AccessModifier string   `json:"access_modifier"`
	Modifiers      []string `json:"modifiers"`
	ReturnType     string   `json:"return_type,omitempty"`
	Signature      string   `json:"signature"`
	Line           int      `json:"line"`
}

// HasModifier reports whether the member declares the given modifier.
func (m *MemberRecord) HasModifier(mod string) bool {
	for _, mm := range m.Modifiers {
		if mm == mod {
			return true
		}
	}
	return false
}

// MemberKey joins a type name and member name into the composite
// "Type.Member" key used by the override maps.
func MemberKey(typeName, memberName string) string {
	return typeName + "." + memberName
}

// SplitMemberKey splits a composite key at its last separator. Member names
// never contain "."; type names are assumed not to either.
func SplitMemberKey(key string) (typeName, memberName string) {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

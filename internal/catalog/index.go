package catalog

import "sort"

// OverrideInfo records the override relationships of a single member,
// addressed by its composite "Type.Member" key. Overrides is empty for
// members that are only overridden, never overriding.
type OverrideInfo struct {
	Overrides    string   `json:"overrides,omitempty"`
	OverriddenBy []string `json:"overridden_by,omitempty"`
}

// Index is the derived, read-only view over a catalog. It is built in one
// unbroken pass by BuildIndex and never mutated afterwards, so concurrent
// readers need no locking.
type Index struct {
	types        map[string]*TypeRecord
	categories   map[string][]*TypeRecord
	members      map[string][]MemberRecord
	bases        map[string][]string
	derived      map[string][]string
	referencedBy map[string]map[string]bool
	overrides    map[string]*OverrideInfo
}

// BuildIndex builds the full derived index over a flat type list. The result
// is deterministic for a given input order. Malformed input is handled
// permissively: duplicate names overwrite, dangling base references are dead
// ends.
func BuildIndex(types []TypeRecord) *Index {
	ix := &Index{
		types:        make(map[string]*TypeRecord, len(types)),
		categories:   make(map[string][]*TypeRecord),
		members:      make(map[string][]MemberRecord, len(types)),
		bases:        make(map[string][]string),
		derived:      make(map[string][]string),
		referencedBy: make(map[string]map[string]bool),
		overrides:    make(map[string]*OverrideInfo),
	}

	// Pass 1: direct lookups, declared inheritance, textual references.
	// Duplicate names are a silent data-quality issue in the payload: the
	// last record wins everywhere, including its category slot.
	catPos := make(map[string]int, len(types))
	for i := range types {
		t := &types[i]
		if prev, dup := ix.types[t.Name]; dup && prev.Kind == t.Kind {
			ix.categories[t.Kind][catPos[t.Name]] = t
		} else {
			if dup {
				ix.categories[prev.Kind] = removeType(ix.categories[prev.Kind], prev.Name)
				for pos, ct := range ix.categories[prev.Kind] {
					catPos[ct.Name] = pos
				}
			}
			catPos[t.Name] = len(ix.categories[t.Kind])
			ix.categories[t.Kind] = append(ix.categories[t.Kind], t)
		}
		ix.types[t.Name] = t
		ix.members[t.Name] = t.Members
		if len(t.BaseTypes) > 0 {
			ix.bases[t.Name] = t.BaseTypes
		}
		for mi := range t.Members {
			for _, ref := range ExtractReferences(t.Members[mi].Signature) {
				set := ix.referencedBy[ref.Name]
				if set == nil {
					set = make(map[string]bool)
					ix.referencedBy[ref.Name] = set
				}
				set[t.Name] = true
			}
		}
	}

	// Pass 2: reverse inheritance edges. Bases that are not indexed are
	// still valid keys; inheritance from external types stays representable.
	for i := range types {
		t := &types[i]
		if ix.types[t.Name] != t {
			continue
		}
		for _, base := range t.BaseTypes {
			ix.derived[base] = append(ix.derived[base], t.Name)
		}
	}

	// Pass 3: override edges.
	for i := range types {
		t := &types[i]
		if ix.types[t.Name] != t || len(t.BaseTypes) == 0 {
			continue
		}
		for mi := range t.Members {
			m := &t.Members[mi]
			if !m.HasModifier("override") {
				continue
			}
			baseKey, ok := ix.findOverridden(t.BaseTypes, m, map[string]bool{t.Name: true})
			if !ok {
				continue
			}
			derivedKey := MemberKey(t.Name, m.Name)
			ix.overrideEntry(derivedKey).Overrides = baseKey
			base := ix.overrideEntry(baseKey)
			base.OverriddenBy = append(base.OverriddenBy, derivedKey)
		}
	}

	return ix
}

func removeType(list []*TypeRecord, name string) []*TypeRecord {
	for i, t := range list {
		if t.Name == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (ix *Index) overrideEntry(key string) *OverrideInfo {
	info, ok := ix.overrides[key]
	if !ok {
		info = &OverrideInfo{}
		ix.overrides[key] = info
	}
	return info
}

// findOverridden walks the declared base chain depth-first, direct bases in
// declared order, and returns the composite key of the first ancestor member
// with the same name, the same kind, and a virtual or abstract modifier.
// Unindexed bases terminate their branch silently.
func (ix *Index) findOverridden(baseNames []string, m *MemberRecord, visited map[string]bool) (string, bool) {
	for _, base := range baseNames {
		if visited[base] {
			continue
		}
		visited[base] = true
		bt, ok := ix.types[base]
		if !ok {
			continue
		}
		for bi := range bt.Members {
			bm := &bt.Members[bi]
			if bm.Name != m.Name || bm.Kind != m.Kind {
				continue
			}
			if bm.HasModifier("virtual") || bm.HasModifier("abstract") {
				return MemberKey(base, bm.Name), true
			}
		}
		if key, ok := ix.findOverridden(bt.BaseTypes, m, visited); ok {
			return key, true
		}
	}
	return "", false
}

// GetType returns the type record for a name, or nil when the name is not
// indexed.
func (ix *Index) GetType(name string) *TypeRecord {
	return ix.types[name]
}

// Len returns the number of distinct indexed type names.
func (ix *Index) Len() int {
	return len(ix.types)
}

// MembersOf returns the member list of a type, nil for unknown names.
func (ix *Index) MembersOf(name string) []MemberRecord {
	return ix.members[name]
}

// BaseTypes returns the declared base-type names of a type, in declaration
// order. Nil when the type declares no bases or is unknown.
func (ix *Index) BaseTypes(name string) []string {
	return ix.bases[name]
}

// DerivedTypes returns the names of types declaring name as a base, in the
// order they appeared in the catalog. The name need not itself be indexed.
func (ix *Index) DerivedTypes(name string) []string {
	return ix.derived[name]
}

// Override returns the override info for a member. The second result is
// false when no override relationship involves the member.
func (ix *Index) Override(typeName, memberName string) (OverrideInfo, bool) {
	info, ok := ix.overrides[MemberKey(typeName, memberName)]
	if !ok {
		return OverrideInfo{}, false
	}
	return *info, true
}

// TypesByKind returns the types of one kind in catalog order.
func (ix *Index) TypesByKind(kind string) []*TypeRecord {
	return ix.categories[kind]
}

// ReferencingTypes returns the sorted names of types whose member signatures
// textually mention name.
func (ix *Index) ReferencingTypes(name string) []string {
	set := ix.referencedBy[name]
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

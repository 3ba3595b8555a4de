package daemon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/csdex/csdex/internal/catalog"
	md "github.com/csdex/csdex/internal/markdown"
)

// URIScheme prefixes every documentation URI served by the daemon and the
// MCP resource layer.
const URIScheme = "csdoc://"

// TypeURI builds the csdoc URI for a type, with an optional #member fragment.
func TypeURI(typeName, memberName string) string {
	if memberName == "" {
		return URIScheme + typeName
	}
	return URIScheme + typeName + "#" + memberName
}

var memberSectionOrder = []struct {
	kind  string
	title string
}{
	{catalog.MemberConstructor, "Constructors"},
	{catalog.MemberMethod, "Methods"},
	{catalog.MemberProperty, "Properties"},
	{catalog.MemberField, "Fields"},
	{catalog.MemberEvent, "Events"},
}

// renderTypeDoc builds the markdown document for one type: declaration,
// comment, hierarchy, members with override and comment annotations, and the
// recorded XML/translation usage.
func (s *Server) renderTypeDoc(snap *catalog.Snapshot, t *catalog.TypeRecord) string {
	ix := snap.Index

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	fmt.Fprintf(&b, "```csharp\n%s\n```\n\n", declarationOf(t))
	fmt.Fprintf(&b, "**File:** `%s`:%d\n\n", t.File, t.Line)

	if comment, ok := s.annotations.Comment(catalog.TypeCommentKey(t)); ok {
		b.WriteString(s.linkify(ix, comment))
		b.WriteString("\n\n")
	}

	if bases := ix.BaseTypes(t.Name); len(bases) > 0 {
		b.WriteString("## Inherits\n\n")
		for _, base := range bases {
			b.WriteString("- " + s.typeLink(ix, base) + "\n")
		}
		b.WriteString("\n")
	}

	if derived := ix.DerivedTypes(t.Name); len(derived) > 0 {
		fmt.Fprintf(&b, "## Derived types (%d)\n\n", len(derived))
		for _, d := range derived {
			b.WriteString("- " + s.typeLink(ix, d) + "\n")
		}
		b.WriteString("\n")
	}

	for _, section := range memberSectionOrder {
		s.renderMemberSection(&b, snap, t, section.kind, section.title)
	}

	s.renderUsage(&b, t)

	doc := b.String()

	related := map[string]string{}
	for _, base := range ix.BaseTypes(t.Name) {
		if ix.GetType(base) != nil {
			related["base:"+base] = TypeURI(base, "")
		}
	}
	for _, d := range ix.DerivedTypes(t.Name) {
		related["derived:"+d] = TypeURI(d, "")
	}
	return md.WithRelated(doc, related)
}

func (s *Server) renderMemberSection(b *strings.Builder, snap *catalog.Snapshot, t *catalog.TypeRecord, kind, title string) {
	var members []*catalog.MemberRecord
	for i := range t.Members {
		if t.Members[i].Kind == kind {
			members = append(members, &t.Members[i])
		}
	}
	if len(members) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(members))
	for _, m := range members {
		s.renderMember(b, snap, t, m)
	}
}

func (s *Server) renderMember(b *strings.Builder, snap *catalog.Snapshot, t *catalog.TypeRecord, m *catalog.MemberRecord) {
	fmt.Fprintf(b, "### %s\n\n", m.Name)
	fmt.Fprintf(b, "```csharp\n%s\n```\n\n", m.Signature)

	if info, ok := snap.Index.Override(t.Name, m.Name); ok {
		if info.Overrides != "" {
			baseType, baseMember := catalog.SplitMemberKey(info.Overrides)
			fmt.Fprintf(b, "overrides [%s](%s)\n\n", info.Overrides, TypeURI(baseType, baseMember))
		}
		if len(info.OverriddenBy) > 0 {
			links := make([]string, len(info.OverriddenBy))
			for i, key := range info.OverriddenBy {
				dt, dm := catalog.SplitMemberKey(key)
				links[i] = fmt.Sprintf("[%s](%s)", key, TypeURI(dt, dm))
			}
			fmt.Fprintf(b, "overridden by %s\n\n", strings.Join(links, ", "))
		}
	}

	if comment, ok := s.annotations.Comment(catalog.MemberCommentKey(t, m)); ok {
		b.WriteString(s.linkify(snap.Index, comment))
		b.WriteString("\n\n")
	}
}

// renderMemberDoc builds a document for a single named member. Returns ""
// when the type has no member of that name.
func (s *Server) renderMemberDoc(snap *catalog.Snapshot, t *catalog.TypeRecord, memberName string) string {
	var b strings.Builder
	found := false
	for i := range t.Members {
		m := &t.Members[i]
		if m.Name != memberName {
			continue
		}
		if !found {
			fmt.Fprintf(&b, "# %s\n\n", catalog.MemberKey(t.Name, m.Name))
			found = true
		}
		s.renderMember(&b, snap, t, m)
	}
	if !found {
		return ""
	}
	return b.String()
}

func (s *Server) renderUsage(b *strings.Builder, t *catalog.TypeRecord) {
	if links := s.annotations.XMLUsage(t.Name); len(links) > 0 {
		fmt.Fprintf(b, "## XML usage (%d)\n\n", len(links))
		for _, link := range links {
			fmt.Fprintf(b, "- `%s` = %q (`%s`:%d)\n", link.CSharpClass, link.XMLValue, link.XMLFile, link.XMLLine)
		}
		b.WriteString("\n")
	}

	if byKey := s.annotations.TranslationsForFile(t.File); len(byKey) > 0 {
		fmt.Fprintf(b, "## Translation keys (%d)\n\n", len(byKey))
		keys := make([]string, 0, len(byKey))
		for key := range byKey {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			uses := byKey[key]
			files := 0
			for _, u := range uses {
				files += len(u.XMLFiles)
			}
			fmt.Fprintf(b, "- `%s`: %d call sites, %d XML files\n", key, len(uses), files)
		}
		b.WriteString("\n")
	}
}

// linkify rewrites bare type-name link destinations in comment markdown to
// csdoc URIs, but only for names the index actually knows.
func (s *Server) linkify(ix *catalog.Index, text string) string {
	return md.LinkTypes(text, func(dest string) (string, bool) {
		if ix.GetType(dest) == nil {
			return "", false
		}
		return TypeURI(dest, ""), true
	})
}

func (s *Server) typeLink(ix *catalog.Index, name string) string {
	if ix.GetType(name) == nil {
		return name
	}
	return fmt.Sprintf("[%s](%s)", name, TypeURI(name, ""))
}

// declarationOf reconstructs the declaration line from the record fields.
func declarationOf(t *catalog.TypeRecord) string {
	parts := []string{t.AccessModifier}
	parts = append(parts, t.Modifiers...)
	parts = append(parts, t.Kind, t.Name)
	decl := strings.Join(parts, " ")
	if len(t.BaseTypes) > 0 {
		decl += " : " + strings.Join(t.BaseTypes, ", ")
	}
	return decl
}

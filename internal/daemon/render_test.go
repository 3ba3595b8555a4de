package daemon

import (
	"strings"
	"testing"

	"github.com/csdex/csdex/internal/catalog"
	"github.com/csdex/csdex/internal/config"
	"github.com/csdex/csdex/internal/usage"
)

func renderServer() *Server {
	return &Server{annotations: usage.NewStore(config.SourceConfig{})}
}

func renderSnapshot() *catalog.Snapshot {
	types := []catalog.TypeRecord{
		{
			Name: "Thing", Kind: catalog.KindClass, AccessModifier: "public",
			Members: []catalog.MemberRecord{
				{Kind: catalog.MemberMethod, Name: "Kill", Modifiers: []string{"virtual"},
					Signature: "public virtual void Kill(DamageInfo dinfo)"},
			},
		},
		{
			Name: "Pawn", Kind: catalog.KindClass, AccessModifier: "public",
			Modifiers: []string{"sealed"}, BaseTypes: []string{"Thing"},
			File: `Assembly-CSharp\Verse\Pawn.cs`, Line: 30,
			Members: []catalog.MemberRecord{
				{Kind: catalog.MemberConstructor, Name: "Pawn", Signature: "public Pawn()"},
				{Kind: catalog.MemberMethod, Name: "Kill", Modifiers: []string{"override"},
					Signature: "public override void Kill(DamageInfo dinfo)"},
				{Kind: catalog.MemberProperty, Name: "Dead", Signature: "public bool Dead"},
			},
		},
	}
	return &catalog.Snapshot{
		Catalog: &catalog.Catalog{Types: types},
		Index:   catalog.BuildIndex(types),
	}
}

func TestTypeURI(t *testing.T) {
	if got := TypeURI("Pawn", ""); got != "csdoc://Pawn" {
		t.Errorf("got %q", got)
	}
	if got := TypeURI("Pawn", "Kill"); got != "csdoc://Pawn#Kill" {
		t.Errorf("got %q", got)
	}
}

func TestDeclarationOf(t *testing.T) {
	tests := []struct {
		t    catalog.TypeRecord
		want string
	}{
		{catalog.TypeRecord{Name: "Pawn", Kind: "class", AccessModifier: "public",
			Modifiers: []string{"sealed"}, BaseTypes: []string{"Thing", "IAttackTarget"}},
			"public sealed class Pawn : Thing, IAttackTarget"},
		{catalog.TypeRecord{Name: "Rot4", Kind: "struct", AccessModifier: "public"},
			"public struct Rot4"},
	}
	for _, tt := range tests {
		if got := declarationOf(&tt.t); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestRenderTypeDoc(t *testing.T) {
	s := renderServer()
	snap := renderSnapshot()
	doc := s.renderTypeDoc(snap, snap.Index.GetType("Pawn"))

	for _, want := range []string{
		"# Pawn",
		"public sealed class Pawn : Thing",
		"**File:** `Assembly-CSharp\\Verse\\Pawn.cs`:30",
		"## Inherits",
		"- [Thing](csdoc://Thing)",
		"## Constructors (1)",
		"## Methods (1)",
		"## Properties (1)",
		"### Kill",
		"overrides [Thing.Kill](csdoc://Thing#Kill)",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	// Front matter records the indexed base.
	if !strings.HasPrefix(doc, "---\n") || !strings.Contains(doc, "base:Thing: csdoc://Thing") {
		t.Errorf("front matter missing base link:\n%s", doc)
	}
}

func TestRenderTypeDoc_DerivedSection(t *testing.T) {
	s := renderServer()
	snap := renderSnapshot()
	doc := s.renderTypeDoc(snap, snap.Index.GetType("Thing"))

	if !strings.Contains(doc, "## Derived types (1)") ||
		!strings.Contains(doc, "- [Pawn](csdoc://Pawn)") {
		t.Errorf("derived section missing:\n%s", doc)
	}
	if !strings.Contains(doc, "overridden by [Pawn.Kill](csdoc://Pawn#Kill)") {
		t.Errorf("overridden-by annotation missing:\n%s", doc)
	}
	// Thing declares no bases: no inherits section.
	if strings.Contains(doc, "## Inherits") {
		t.Errorf("unexpected inherits section:\n%s", doc)
	}
}

func TestRenderMemberDoc(t *testing.T) {
	s := renderServer()
	snap := renderSnapshot()
	pawn := snap.Index.GetType("Pawn")

	doc := s.renderMemberDoc(snap, pawn, "Kill")
	if !strings.Contains(doc, "# Pawn.Kill") ||
		!strings.Contains(doc, "public override void Kill(DamageInfo dinfo)") {
		t.Errorf("member document malformed:\n%s", doc)
	}
	// Unrelated members stay out.
	if strings.Contains(doc, "Dead") {
		t.Errorf("unrelated member leaked:\n%s", doc)
	}

	if got := s.renderMemberDoc(snap, pawn, "Nonexistent"); got != "" {
		t.Errorf("unknown member should render empty, got %q", got)
	}
}

package markdown

import (
	"strings"
	"testing"
)

func resolveKnown(known map[string]string) func(string) (string, bool) {
	return func(dest string) (string, bool) {
		uri, ok := known[dest]
		return uri, ok
	}
}

func TestLinkTypes_BareTypeNames(t *testing.T) {
	t.Parallel()
	src := "Spawned by [PawnGenerator](PawnGenerator) during raids."
	got := LinkTypes(src, resolveKnown(map[string]string{
		"PawnGenerator": "csdoc://PawnGenerator",
	}))
	want := "Spawned by [PawnGenerator](csdoc://PawnGenerator) during raids."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLinkTypes_UnknownDestinationsUntouched(t *testing.T) {
	t.Parallel()
	src := "See [the wiki](https://example.com/wiki) and [Bogus](Bogus)."
	got := LinkTypes(src, resolveKnown(map[string]string{}))
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestLinkTypes_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[Pawn](Pawn) extends [Thing](Thing)."
	got := LinkTypes(src, resolveKnown(map[string]string{
		"Pawn":  "csdoc://Pawn",
		"Thing": "csdoc://Thing",
	}))
	if !strings.Contains(got, "(csdoc://Pawn)") {
		t.Error("Pawn link not rewritten")
	}
	if !strings.Contains(got, "(csdoc://Thing)") {
		t.Error("Thing link not rewritten")
	}
}

func TestLinkTypes_CodeSpansUntouched(t *testing.T) {
	t.Parallel()
	src := "Call `[Pawn](Pawn)` literally."
	got := LinkTypes(src, resolveKnown(map[string]string{"Pawn": "csdoc://Pawn"}))
	if got != src {
		t.Errorf("code span should be left alone, got %q", got)
	}
}

func TestLinkTypes_NilAndEmpty(t *testing.T) {
	t.Parallel()
	src := "Plain [Pawn](Pawn)."
	if got := LinkTypes(src, nil); got != src {
		t.Errorf("nil resolver should be a no-op, got %q", got)
	}
	if got := LinkTypes("", resolveKnown(nil)); got != "" {
		t.Errorf("empty source should stay empty, got %q", got)
	}
}

func TestWithRelated(t *testing.T) {
	t.Parallel()
	got := WithRelated("# Pawn\n", map[string]string{
		"derived": "csdoc://ColonistPawn",
		"base":    "csdoc://ThingWithComps",
	})

	if !strings.HasPrefix(got, "---\n") {
		t.Fatalf("missing front matter: %q", got)
	}
	// Keys are emitted sorted so output is stable.
	baseIdx := strings.Index(got, "base: csdoc://ThingWithComps")
	derivedIdx := strings.Index(got, "derived: csdoc://ColonistPawn")
	if baseIdx < 0 || derivedIdx < 0 || baseIdx > derivedIdx {
		t.Errorf("front matter malformed: %q", got)
	}
	if !strings.HasSuffix(got, "# Pawn\n") {
		t.Errorf("body not preserved: %q", got)
	}
}

func TestWithRelated_Empty(t *testing.T) {
	t.Parallel()
	src := "# Pawn\n"
	if got := WithRelated(src, nil); got != src {
		t.Errorf("nil related should be a no-op, got %q", got)
	}
}

package catalog

import (
	"reflect"
	"testing"
)

func testTypes() []TypeRecord {
	return []TypeRecord{
		{
			Name: "Thing", Kind: KindClass,
			Members: []MemberRecord{
				{Kind: MemberMethod, Name: "Kill", Modifiers: []string{"virtual"},
					Signature: "public virtual void Kill(DamageInfo dinfo)"},
				{Kind: MemberProperty, Name: "Spawned",
					Signature: "public bool Spawned"},
			},
		},
		{
			Name: "Pawn", Kind: KindClass, BaseTypes: []string{"ThingWithComps"},
			Members: []MemberRecord{
				{Kind: MemberMethod, Name: "Kill", Modifiers: []string{"override"},
					Signature: "public override void Kill(DamageInfo dinfo)"},
			},
		},
		{
			Name: "ThingWithComps", Kind: KindClass, BaseTypes: []string{"Thing"},
			Members: []MemberRecord{
				{Kind: MemberField, Name: "comps",
					Signature: "private List<ThingComp> comps"},
			},
		},
		{
			Name: "Building", Kind: KindClass, BaseTypes: []string{"ThingWithComps"},
		},
		{
			Name: "IAttackTarget", Kind: KindInterface,
		},
	}
}

func TestBuildIndex_Lookups(t *testing.T) {
	ix := BuildIndex(testTypes())

	if ix.Len() != 5 {
		t.Errorf("Len() = %d, want 5", ix.Len())
	}
	if ix.GetType("Pawn") == nil {
		t.Fatal("Pawn should be indexed")
	}
	if ix.GetType("Nonexistent") != nil {
		t.Error("unknown name should yield nil")
	}
	if got := len(ix.MembersOf("Thing")); got != 2 {
		t.Errorf("MembersOf(Thing) = %d members, want 2", got)
	}
}

func TestBuildIndex_Categories(t *testing.T) {
	ix := BuildIndex(testTypes())

	classes := ix.TypesByKind(KindClass)
	wantOrder := []string{"Thing", "Pawn", "ThingWithComps", "Building"}
	if len(classes) != len(wantOrder) {
		t.Fatalf("got %d classes, want %d", len(classes), len(wantOrder))
	}
	for i, want := range wantOrder {
		if classes[i].Name != want {
			t.Errorf("classes[%d] = %q, want %q", i, classes[i].Name, want)
		}
	}

	if got := ix.TypesByKind(KindInterface); len(got) != 1 || got[0].Name != "IAttackTarget" {
		t.Errorf("unexpected interface category: %v", got)
	}
	if got := ix.TypesByKind(KindEnum); got != nil {
		t.Errorf("empty kind should yield nil, got %v", got)
	}
}

func TestBuildIndex_InheritanceEdges(t *testing.T) {
	ix := BuildIndex(testTypes())

	if got := ix.BaseTypes("Pawn"); !reflect.DeepEqual(got, []string{"ThingWithComps"}) {
		t.Errorf("BaseTypes(Pawn) = %v", got)
	}
	// Derived edges preserve catalog order.
	if got := ix.DerivedTypes("ThingWithComps"); !reflect.DeepEqual(got, []string{"Pawn", "Building"}) {
		t.Errorf("DerivedTypes(ThingWithComps) = %v", got)
	}
	if got := ix.DerivedTypes("Thing"); !reflect.DeepEqual(got, []string{"ThingWithComps"}) {
		t.Errorf("DerivedTypes(Thing) = %v", got)
	}
	if got := ix.BaseTypes("Thing"); got != nil {
		t.Errorf("rootless type should have nil bases, got %v", got)
	}
}

func TestBuildIndex_DerivedFromUnindexedBase(t *testing.T) {
	types := []TypeRecord{
		{Name: "MapComponent", Kind: KindClass, BaseTypes: []string{"UnityEngine.Object"}},
	}
	ix := BuildIndex(types)

	// The base never appears in the catalog but the reverse edge still exists.
	if got := ix.DerivedTypes("UnityEngine.Object"); !reflect.DeepEqual(got, []string{"MapComponent"}) {
		t.Errorf("DerivedTypes over unindexed base = %v", got)
	}
}

func TestBuildIndex_Overrides(t *testing.T) {
	ix := BuildIndex(testTypes())

	// Pawn.Kill overrides Thing.Kill through the intermediate ThingWithComps,
	// which declares no Kill of its own.
	info, ok := ix.Override("Pawn", "Kill")
	if !ok {
		t.Fatal("Pawn.Kill should have override info")
	}
	if info.Overrides != "Thing.Kill" {
		t.Errorf("Pawn.Kill overrides %q, want Thing.Kill", info.Overrides)
	}

	base, ok := ix.Override("Thing", "Kill")
	if !ok {
		t.Fatal("Thing.Kill should have override info")
	}
	if !reflect.DeepEqual(base.OverriddenBy, []string{"Pawn.Kill"}) {
		t.Errorf("Thing.Kill overridden by %v", base.OverriddenBy)
	}

	if _, ok := ix.Override("Thing", "Spawned"); ok {
		t.Error("member without override relationships should report none")
	}
}

func TestBuildIndex_OverrideKindMustMatch(t *testing.T) {
	types := []TypeRecord{
		{Name: "Base", Kind: KindClass, Members: []MemberRecord{
			{Kind: MemberProperty, Name: "Label", Modifiers: []string{"virtual"}},
		}},
		{Name: "Derived", Kind: KindClass, BaseTypes: []string{"Base"}, Members: []MemberRecord{
			{Kind: MemberMethod, Name: "Label", Modifiers: []string{"override"}},
		}},
	}
	ix := BuildIndex(types)

	if _, ok := ix.Override("Derived", "Label"); ok {
		t.Error("a method cannot override a property")
	}
}

func TestBuildIndex_OverrideDanglingBase(t *testing.T) {
	types := []TypeRecord{
		{Name: "CustomPawn", Kind: KindClass, BaseTypes: []string{"Pawn"}, Members: []MemberRecord{
			{Kind: MemberMethod, Name: "Kill", Modifiers: []string{"override"}},
		}},
	}
	ix := BuildIndex(types)

	// The base is not in the catalog: the walk dead-ends silently.
	if _, ok := ix.Override("CustomPawn", "Kill"); ok {
		t.Error("override over an unindexed base should record nothing")
	}
}

func TestBuildIndex_OverrideCycleTerminates(t *testing.T) {
	types := []TypeRecord{
		{Name: "A", Kind: KindClass, BaseTypes: []string{"B"}, Members: []MemberRecord{
			{Kind: MemberMethod, Name: "Tick", Modifiers: []string{"override"}},
		}},
		{Name: "B", Kind: KindClass, BaseTypes: []string{"A"}},
	}

	// Must not recurse forever on malformed cyclic inheritance.
	ix := BuildIndex(types)
	if _, ok := ix.Override("A", "Tick"); ok {
		t.Error("cycle with no virtual ancestor should record nothing")
	}
}

func TestBuildIndex_DuplicateNamesLastWins(t *testing.T) {
	types := []TypeRecord{
		{Name: "Alert", Kind: KindClass, File: `Assembly-CSharp\RimWorld\Alert.cs`},
		{Name: "Dialog", Kind: KindClass},
		{Name: "Alert", Kind: KindClass, File: `Assembly-CSharp\Verse\Alert.cs`},
	}
	ix := BuildIndex(types)

	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	if got := ix.GetType("Alert").File; got != `Assembly-CSharp\Verse\Alert.cs` {
		t.Errorf("duplicate should resolve to the last record, file = %q", got)
	}

	// The category holds one slot per name, replaced in place.
	classes := ix.TypesByKind(KindClass)
	if len(classes) != 2 {
		t.Fatalf("got %d classes, want 2", len(classes))
	}
	if classes[0].Name != "Alert" || classes[0].File != `Assembly-CSharp\Verse\Alert.cs` {
		t.Errorf("category slot not replaced: %+v", classes[0])
	}
}

func TestBuildIndex_DuplicateAcrossKinds(t *testing.T) {
	types := []TypeRecord{
		{Name: "Rot4", Kind: KindClass},
		{Name: "Rot4", Kind: KindStruct},
	}
	ix := BuildIndex(types)

	if got := ix.GetType("Rot4").Kind; got != KindStruct {
		t.Errorf("kind = %q, want struct", got)
	}
	if got := ix.TypesByKind(KindClass); len(got) != 0 {
		t.Errorf("stale class entry survives: %v", got)
	}
	if got := ix.TypesByKind(KindStruct); len(got) != 1 {
		t.Errorf("struct category = %v, want one entry", got)
	}
}

func TestBuildIndex_References(t *testing.T) {
	ix := BuildIndex(testTypes())

	got := ix.ReferencingTypes("DamageInfo")
	want := []string{"Pawn", "Thing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReferencingTypes(DamageInfo) = %v, want %v", got, want)
	}
	if got := ix.ReferencingTypes("Unmentioned"); got != nil {
		t.Errorf("unreferenced name should yield nil, got %v", got)
	}
}

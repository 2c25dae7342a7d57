package geodata

import (
	"slices"
	"testing"
)

func TestTagSetOperations(t *testing.T) {
	required := NewTagSet("CN", "us", " Private ")
	available := NewTagSet("us", "de", "private")

	if !required.Has("cn") {
		t.Error("expected cn to be normalised on insert")
	}
	if required.Has("") {
		t.Error("empty tag must never be present")
	}

	missing := required.Difference(available)
	if got := missing.Sorted(); !slices.Equal(got, []string{"cn"}) {
		t.Errorf("Difference = %v, want [cn]", got)
	}

	found := required.Intersection(available)
	if got := found.Sorted(); !slices.Equal(got, []string{"private", "us"}) {
		t.Errorf("Intersection = %v, want [private us]", got)
	}

	decoded := NewTagSet()
	decoded.AddCode("US")
	decoded.AddCode(" CN")
	if !decoded.Has("us") || decoded.Has("cn") {
		t.Errorf("AddCode should only fold case, got %q", decoded.Sorted())
	}
}

func TestTagSetSupersetHasNoMissing(t *testing.T) {
	required := NewTagSet("ru-blocked", "youtube")
	available := NewTagSet("RU-BLOCKED", "YouTube", "discord", "google")

	if missing := required.Difference(available); missing.Len() != 0 {
		t.Errorf("expected no missing tags, got %v", missing.Sorted())
	}
}

func TestCatalogKinds(t *testing.T) {
	for id, def := range Catalog {
		if def.ID != id {
			t.Errorf("catalog key %q does not match ID %q", id, def.ID)
		}
		if _, err := ParseKind(string(def.Kind)); err != nil {
			t.Errorf("catalog entry %q has invalid kind: %v", id, err)
		}
		if def.URL == "" {
			t.Errorf("catalog entry %q has no URL", id)
		}
	}
}

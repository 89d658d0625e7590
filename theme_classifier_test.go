package esgevidence

import "testing"

func TestClassifyThemeMatchesFirstThemeInFixedOrder(t *testing.T) {
	// Contains both a GHG keyword ("emissions") and an EI keyword
	// ("renewable"); GHG precedes EI in FixedThemeCodes order.
	got := ClassifyTheme("Scope 1 emissions declined as renewable energy grew.")
	if got != "GHG" {
		t.Fatalf("expected GHG (earlier in FixedThemeCodes), got %s", got)
	}
}

func TestClassifyThemeUnclassifiedWhenNoKeywordMatches(t *testing.T) {
	got := ClassifyTheme("The quarterly picnic was well attended by staff.")
	if got != "unclassified" {
		t.Fatalf("expected unclassified, got %s", got)
	}
}

func TestClassifyThemeCaseInsensitive(t *testing.T) {
	got := ClassifyTheme("NET-ZERO TARGET BY 2030")
	if got != "TSP" {
		t.Fatalf("expected TSP, got %s", got)
	}
}

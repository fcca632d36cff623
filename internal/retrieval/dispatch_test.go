package retrieval

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCat   string
		wantQuery string
	}{
		{"exact alias", "maps: where is the frozen pass", "maps", "where is the frozen pass"},
		{"uppercase alias", "MAPS: where is X", "maps", "where is X"},
		{"mixed case with spaces", "  Items :  the storm blade ", "items", "the storm blade"},
		{"secondary alias", "peta: the marsh crossing", "maps", "the marsh crossing"},
		{"faction alias", "team: the river guild", "factions", "the river guild"},
		{"no colon", "who is the king", "", "who is the king"},
		{"unknown prefix keeps full text", "weather: is it raining", "", "weather: is it raining"},
		{"colon in question only", "npc: who said: hello", "npc", "who said: hello"},
		{"empty input", "", "", ""},
		{"colon only", ":", "", ":"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, query := Resolve(tt.input)
			if cat != tt.wantCat {
				t.Errorf("category = %q, want %q", cat, tt.wantCat)
			}
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
		})
	}
}

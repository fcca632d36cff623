package retrieval

import "strings"

// aliases maps each category to the prefixes a user may type before a colon,
// e.g. "maps: where is the frozen pass". Matching is case-insensitive.
var aliases = map[string][]string{
	"character": {"character", "karakter"},
	"factions":  {"faction", "factions", "tim", "team", "faksi"},
	"items":     {"item", "items", "artefak", "artifact", "barang"},
	"maps":      {"maps", "map", "peta", "lokasi", "area"},
	"npc":       {"npc"},
	"timeline":  {"timeline", "linimasa", "alur", "sejarah"},
}

// Aliases returns the recognised prefixes for a category.
func Aliases(category string) []string {
	return aliases[category]
}

// Resolve extracts an explicit category prefix from free-text input. It
// returns the resolved category and the remaining question. When the input
// has no colon, or the text before the first colon matches no alias, the
// category is empty and the query is the untouched input.
func Resolve(text string) (category, query string) {
	raw := strings.TrimSpace(text)
	before, after, found := strings.Cut(raw, ":")
	if !found {
		return "", raw
	}

	prefix := strings.ToLower(strings.TrimSpace(before))
	for cat, keys := range aliases {
		for _, key := range keys {
			if prefix == key {
				return cat, strings.TrimSpace(after)
			}
		}
	}
	return "", raw
}

package collect

import (
	"strings"
	"unicode"
)

// dedupPrefixLen bounds the normalized title key so near-duplicate
// headlines that diverge only in a trailing suffix still collapse.
const dedupPrefixLen = 30

// Dedup filters items to unique normalized titles, preserving input
// order. Input is expected to be sorted by descending composite score,
// so the highest-ranked variant of near-duplicate titles survives.
func Dedup(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))

	for _, item := range items {
		key := normalizeTitle(item.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// normalizeTitle lowercases, strips everything that is not a letter or
// digit (CJK counts as letters), and truncates to a fixed rune prefix.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())
	if len(runes) > dedupPrefixLen {
		runes = runes[:dedupPrefixLen]
	}
	return string(runes)
}

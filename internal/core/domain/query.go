package domain

import (
	"regexp"
	"strings"
)

// NormalizedQuery is the canonical form of a raw customer query plus the
// typed sub-terms extracted from it. It is never mutated after creation.
type NormalizedQuery struct {
	// Text is the query with full-width characters mapped to half-width ASCII
	Text string `json:"text"`

	// SKUPatterns are alphanumeric runs with an optional internal hyphen,
	// extracted from the upper-cased normalized text
	SKUPatterns []string `json:"sku_patterns"`

	// CJKWords are runs of 2+ contiguous hiragana/katakana/kanji code points
	CJKWords []string `json:"cjk_words"`

	// Numbers are maximal digit runs
	Numbers []string `json:"numbers"`
}

// fullwidthPairs builds the full-width to half-width replacement table:
// digits ０-９, uppercase letters Ａ-Ｚ, parentheses, dash and the
// ideographic space. The character classes are disjoint so replacement
// order does not matter.
func fullwidthPairs() []string {
	pairs := make([]string, 0, 2*(10+26+4))
	for d := rune(0); d < 10; d++ {
		pairs = append(pairs, string('０'+d), string('0'+d))
	}
	for l := rune(0); l < 26; l++ {
		pairs = append(pairs, string('Ａ'+l), string('A'+l))
	}
	pairs = append(pairs,
		"（", "(",
		"）", ")",
		"－", "-",
		"　", " ",
	)
	return pairs
}

var fullwidthReplacer = strings.NewReplacer(fullwidthPairs()...)

var (
	skuPatternRe = regexp.MustCompile(`[A-Z0-9]+-?[A-Z0-9]*`)
	cjkWordRe    = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]{2,}`)
	numberRe     = regexp.MustCompile(`[0-9]+`)
)

// Normalize canonicalizes raw query text and extracts typed sub-terms.
// It never fails; a query with nothing extractable yields empty term sets.
// A token may land in more than one set (a SKU pattern containing digits
// also appears in Numbers) - downstream strategies consume the sets
// independently, so the duplication is intentional.
func Normalize(raw string) NormalizedQuery {
	text := strings.TrimSpace(fullwidthReplacer.Replace(raw))
	return NormalizedQuery{
		Text:        text,
		SKUPatterns: skuPatternRe.FindAllString(strings.ToUpper(text), -1),
		CJKWords:    cjkWordRe.FindAllString(text, -1),
		Numbers:     numberRe.FindAllString(text, -1),
	}
}

// Terms returns the deduplicated union of SKU patterns, CJK words and
// numbers, preserving first-occurrence order.
func (q NormalizedQuery) Terms() []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, set := range [][]string{q.SKUPatterns, q.CJKWords, q.Numbers} {
		for _, t := range set {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	return terms
}

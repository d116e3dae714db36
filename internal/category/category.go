// Package category infers a display category for a derivation from its
// scheme name.
//
// Matching is an ordered substring search: the first rule whose fragment
// occurs in the scheme wins, and a scheme no rule matches receives the
// fallback. Order matters because several fragments contain others
// (تفاعل contains فاعل, تفعيل contains فعيل, مفعول contains فعول), so every
// fragment is listed before any shorter fragment it contains.
package category

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// tatweel is the Arabic elongation mark, which carries no morphology.
const tatweel = "ـ"

const shadda = '\u0651'

// Rule maps a scheme-name fragment to a category.
type Rule struct {
	Fragment string           `toml:"fragment"`
	Category lexicon.Category `toml:"category"`
}

// DefaultRules returns the built-in rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Fragment: "تفاعل", Category: lexicon.CategoryReciprocal},
		{Fragment: "مفاعلة", Category: lexicon.CategoryReciprocal},
		{Fragment: "انفعال", Category: lexicon.CategoryVerbalNoun},
		{Fragment: "افتعال", Category: lexicon.CategoryVerbalNoun},
		{Fragment: "استفعال", Category: lexicon.CategoryVerbalNoun},
		{Fragment: "تفعيل", Category: lexicon.CategoryVerbalNoun},
		{Fragment: "مصدر", Category: lexicon.CategoryVerbalNoun},
		{Fragment: "فعّال", Category: lexicon.CategoryIntensive},
		{Fragment: "مفعال", Category: lexicon.CategoryIntensive},
		{Fragment: "فعيل", Category: lexicon.CategoryIntensive},
		{Fragment: "مفعول", Category: lexicon.CategoryObjectNoun},
		{Fragment: "فعول", Category: lexicon.CategoryIntensive},
		{Fragment: "استفعل", Category: lexicon.CategoryCausative},
		{Fragment: "أفعل", Category: lexicon.CategoryCausative},
		{Fragment: "فعّل", Category: lexicon.CategoryCausative},
		{Fragment: "مفعل", Category: lexicon.CategoryPlaceTimeNoun},
		{Fragment: "فاعل", Category: lexicon.CategoryAgentNoun},
	}
}

// Categorizer holds an immutable, ordered rule list. It is safe for
// concurrent use.
type Categorizer struct {
	rules    []Rule
	fallback lexicon.Category
}

// New returns a Categorizer over rules in the given order. Fragments are
// normalized the same way schemes are. An empty fallback selects
// lexicon.CategoryDerived.
func New(rules []Rule, fallback lexicon.Category) *Categorizer {
	if fallback == "" {
		fallback = lexicon.CategoryDerived
	}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		frag := normalizeScheme(r.Fragment)
		if frag == "" || r.Category == "" {
			continue
		}
		out = append(out, Rule{Fragment: frag, Category: r.Category})
	}
	return &Categorizer{rules: out, fallback: fallback}
}

// Default returns a Categorizer over DefaultRules.
func Default() *Categorizer {
	return New(DefaultRules(), lexicon.CategoryDerived)
}

// Categorize returns the category of the first rule whose fragment occurs
// in scheme, or the fallback. It never fails.
func (c *Categorizer) Categorize(scheme string) lexicon.Category {
	s := normalizeScheme(scheme)
	if s == "" {
		return c.fallback
	}
	for _, r := range c.rules {
		if strings.Contains(s, r.Fragment) {
			return r.Category
		}
	}
	return c.fallback
}

// Rules returns a copy of the rule list in priority order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Fallback returns the category assigned when no rule matches.
func (c *Categorizer) Fallback() lexicon.Category {
	return c.fallback
}

// Categorize classifies scheme with the built-in rules.
func Categorize(scheme string) lexicon.Category {
	return defaultCategorizer.Categorize(scheme)
}

var defaultCategorizer = Default()

// normalizeScheme strips short-vowel marks and tatweel so that vocalized
// and bare spellings of a scheme match the same fragments. Shadda is kept:
// it distinguishes فعّال from فعال.
func normalizeScheme(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isHaraka)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = lexicon.Clean(s)
	}
	return strings.ReplaceAll(out, tatweel, "")
}

// isHaraka reports whether r is a short vowel, tanween, sukun or dagger
// alef mark.
func isHaraka(r rune) bool {
	if r == shadda {
		return false
	}
	return (r >= 0x064B && r <= 0x0652) || r == 0x0670
}

// Package lexicon defines the display model for the root/derivation browser:
// roots, the words derived from them, the schemes that produce those words,
// and the category labels inferred for each derivation.
//
// Values in this package are built by the normalize package and are never
// patched in place; every change arrives through a fresh reload.
package lexicon

import "time"

// Category is a display-only classification of a derivation, inferred from
// its scheme name. It is never persisted.
type Category string

// Built-in category labels. Rule files may introduce additional labels.
const (
	CategoryAgentNoun     Category = "agent-noun"
	CategoryObjectNoun    Category = "object-noun"
	CategoryPlaceTimeNoun Category = "place/time-noun"
	CategoryIntensive     Category = "intensive-form"
	CategoryCausative     Category = "causative-form"
	CategoryReciprocal    Category = "reciprocal-form"
	CategoryVerbalNoun    Category = "verbal-noun-form"
	// CategoryDerived is the fallback for schemes no rule recognizes.
	CategoryDerived Category = "derived-form"
)

// Categories lists the built-in labels in display order.
func Categories() []Category {
	return []Category{
		CategoryAgentNoun,
		CategoryObjectNoun,
		CategoryPlaceTimeNoun,
		CategoryIntensive,
		CategoryCausative,
		CategoryReciprocal,
		CategoryVerbalNoun,
		CategoryDerived,
	}
}

// Root is a three-letter Arabic consonantal root with the words derived
// from it. The order of Derivations carries no meaning.
type Root struct {
	ID          string
	Text        string
	CreatedAt   time.Time
	Derivations []Derivation
}

// Derivation is a word produced by applying a scheme to a root.
type Derivation struct {
	ID        string
	Word      string
	Scheme    string
	CreatedAt time.Time
	Category  Category
}

// SchemeType classifies a scheme as the server stores it.
type SchemeType string

const (
	SchemeNormal SchemeType = "NORMAL"
	SchemeMazid  SchemeType = "MAZID"
	SchemeCustom SchemeType = "CUSTOM"
)

// Scheme is a named morphological pattern such as فاعل.
type Scheme struct {
	ID          string
	Name        string
	Pattern     string
	Type        SchemeType
	Description string
	UsageCount  int
	CreatedAt   time.Time
	Category    Category
}

// HasCategory reports whether at least one derivation of r carries c.
func (r Root) HasCategory(c Category) bool {
	for _, d := range r.Derivations {
		if d.Category == c {
			return true
		}
	}
	return false
}

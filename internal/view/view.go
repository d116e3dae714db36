// Package view derives display lists from a normalized root collection:
// substring search, category filtering, and stable Arabic-collated ordering.
// Every function here is pure; inputs are never modified.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// Order is the direction of an alphabetical sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// All is the category filter that retains every root.
const All lexicon.Category = "all"

// ParseOrder validates a user-supplied sort order. Empty means Asc.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort order %q: want asc or desc", s)
	}
}

// ParseFilter turns a user-supplied category into a filter. Empty means All.
// Labels outside the built-in set are accepted since rule files may add them.
func ParseFilter(s string) lexicon.Category {
	s = strings.TrimSpace(s)
	if s == "" {
		return All
	}
	return lexicon.Category(s)
}

// View filters roots by query and category, then orders them by text.
// A root matches query when its text, or any derivation's word or scheme,
// contains it; the comparison is case-sensitive and an empty query matches
// everything. Calling View twice with the same arguments yields the same
// content in the same order. The query is normalized like stored text, so
// decomposed and precomposed spellings match alike.
func View(roots []lexicon.Root, query string, order Order, filter lexicon.Category) []lexicon.Root {
	query = lexicon.Clean(query)
	out := make([]lexicon.Root, 0, len(roots))
	for _, r := range roots {
		if matchesQuery(r, query) && matchesFilter(r, filter) {
			out = append(out, r)
		}
	}

	cmp := newComparer()
	slices.SortStableFunc(out, func(a, b lexicon.Root) int {
		return cmp.ordered(a.Text, b.Text, order)
	})
	return out
}

// SortDerivations returns a copy of ds ordered by word.
func SortDerivations(ds []lexicon.Derivation, order Order) []lexicon.Derivation {
	out := slices.Clone(ds)
	cmp := newComparer()
	slices.SortStableFunc(out, func(a, b lexicon.Derivation) int {
		return cmp.ordered(a.Word, b.Word, order)
	})
	return out
}

func matchesQuery(r lexicon.Root, query string) bool {
	if query == "" || strings.Contains(r.Text, query) {
		return true
	}
	for _, d := range r.Derivations {
		if strings.Contains(d.Word, query) || strings.Contains(d.Scheme, query) {
			return true
		}
	}
	return false
}

func matchesFilter(r lexicon.Root, filter lexicon.Category) bool {
	return filter == "" || filter == All || r.HasCategory(filter)
}

// comparer orders strings with the Arabic collation and breaks collation
// ties by byte order, which makes the ordering total: a descending sort is
// then the exact reverse of an ascending one. A Collator keeps internal
// buffers, so each sort builds its own.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.Arabic)}
}

func (c *comparer) compare(a, b string) int {
	if n := c.col.CompareString(a, b); n != 0 {
		return n
	}
	return strings.Compare(a, b)
}

func (c *comparer) ordered(a, b string, order Order) int {
	if order == Desc {
		return c.compare(b, a)
	}
	return c.compare(a, b)
}

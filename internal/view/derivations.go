package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// SortKey selects the field a flattened derivation list is ordered by.
type SortKey string

const (
	ByWord SortKey = "word"
	ByDate SortKey = "date"
)

// ParseSortKey validates a user-supplied sort key. Empty means ByWord.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByWord:
		return ByWord, nil
	case ByDate:
		return ByDate, nil
	default:
		return "", fmt.Errorf("invalid sort key %q: want word or date", s)
	}
}

// DerivationQuery selects and orders derivations across all roots. Root and
// Scheme are exact matches; Search is a substring of the word, the root or
// the scheme. Empty fields do not filter.
type DerivationQuery struct {
	Root   string
	Scheme string
	Search string
	SortBy SortKey
	Order  Order
}

// Entry is one derivation together with the root it belongs to.
type Entry struct {
	Root string
	lexicon.Derivation
}

// Derivations flattens roots into entries matching q, ordered by q.SortBy.
func Derivations(roots []lexicon.Root, q DerivationQuery) []Entry {
	q.Root, q.Scheme, q.Search = lexicon.Clean(q.Root), lexicon.Clean(q.Scheme), lexicon.Clean(q.Search)
	var out []Entry
	for _, r := range roots {
		if q.Root != "" && r.Text != q.Root {
			continue
		}
		for _, d := range r.Derivations {
			if q.Scheme != "" && d.Scheme != q.Scheme {
				continue
			}
			if q.Search != "" && !strings.Contains(d.Word, q.Search) &&
				!strings.Contains(r.Text, q.Search) && !strings.Contains(d.Scheme, q.Search) {
				continue
			}
			out = append(out, Entry{Root: r.Text, Derivation: d})
		}
	}

	cmp := newComparer()
	slices.SortStableFunc(out, func(a, b Entry) int {
		if q.Order == Desc {
			a, b = b, a
		}
		if q.SortBy == ByDate {
			if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
				return n
			}
		}
		if n := cmp.compare(a.Word, b.Word); n != 0 {
			return n
		}
		return cmp.compare(a.Root, b.Root)
	})
	return out
}

// Package stats computes collection-level statistics for a normalized root
// collection. A Snapshot is always rebuilt from scratch; nothing here keeps
// running totals.
package stats

import (
	"time"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// CategoryCount is the number of derivations carrying one category.
type CategoryCount struct {
	Category lexicon.Category `json:"category"`
	Count    int              `json:"count"`
}

// Snapshot summarizes a root collection at ComputedAt.
//
// TopRoot is empty when there are no roots or no root has a derivation.
// TopCategory is empty when there are no derivations. Ties on either are
// resolved in favor of the first one encountered in input order.
type Snapshot struct {
	TotalRoots         int              `json:"total_roots"`
	TotalDerivations   int              `json:"total_derivations"`
	DistinctCategories int              `json:"distinct_categories"`
	TopRoot            string           `json:"top_root,omitempty"`
	TopCategory        lexicon.Category `json:"top_category,omitempty"`
	Categories         []CategoryCount  `json:"categories"`
	ComputedAt         time.Time        `json:"computed_at"`
}

// HasTopRoot reports whether a top root exists.
func (s Snapshot) HasTopRoot() bool { return s.TopRoot != "" }

// HasTopCategory reports whether a top category exists.
func (s Snapshot) HasTopCategory() bool { return s.TopCategory != "" }

// Aggregate computes a Snapshot in a single pass over roots. The per-category
// breakdown is then scanned once to pick the top category; that scan is
// bounded by the number of distinct categories, not the input size.
// roots is not modified.
func Aggregate(roots []lexicon.Root, now time.Time) Snapshot {
	snap := Snapshot{
		TotalRoots: len(roots),
		Categories: []CategoryCount{},
		ComputedAt: now,
	}

	index := make(map[lexicon.Category]int)
	topCount := 0
	for _, r := range roots {
		n := len(r.Derivations)
		snap.TotalDerivations += n
		if n > topCount {
			topCount = n
			snap.TopRoot = r.Text
		}
		for _, d := range r.Derivations {
			i, ok := index[d.Category]
			if !ok {
				i = len(snap.Categories)
				index[d.Category] = i
				snap.Categories = append(snap.Categories, CategoryCount{Category: d.Category})
			}
			snap.Categories[i].Count++
		}
	}

	snap.DistinctCategories = len(snap.Categories)
	best := 0
	for _, cc := range snap.Categories {
		if cc.Count > best {
			best = cc.Count
			snap.TopCategory = cc.Category
		}
	}
	return snap
}

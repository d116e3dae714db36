package category

import (
	"sync/atomic"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// Source holds the current Categorizer and lets a watcher swap it while
// readers keep classifying. Readers should call Current once per
// normalization pass so one pass never mixes two rule sets.
type Source struct {
	cur atomic.Pointer[Categorizer]
}

// NewSource returns a Source starting at c, or at Default() when c is nil.
func NewSource(c *Categorizer) *Source {
	if c == nil {
		c = Default()
	}
	s := &Source{}
	s.cur.Store(c)
	return s
}

// Current returns the active Categorizer.
func (s *Source) Current() *Categorizer {
	return s.cur.Load()
}

// Store replaces the active Categorizer. A nil c is ignored.
func (s *Source) Store(c *Categorizer) {
	if c != nil {
		s.cur.Store(c)
	}
}

// Categorize classifies scheme with the active Categorizer.
func (s *Source) Categorize(scheme string) lexicon.Category {
	return s.Current().Categorize(scheme)
}

package category

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// ErrInvalidRule indicates a rule file entry with an empty fragment or category.
var ErrInvalidRule = errors.New("rule needs both fragment and category")

// RuleFile is the on-disk TOML form of a rule set.
//
//	fallback = "derived-form"
//	replace_defaults = false
//
//	[[rule]]
//	fragment = "تفعلة"
//	category = "verbal-noun-form"
type RuleFile struct {
	Fallback        lexicon.Category `toml:"fallback"`
	ReplaceDefaults bool             `toml:"replace_defaults"`
	Rules           []Rule           `toml:"rule"`
}

// LoadRules reads a rule file and builds a Categorizer from it. Rules from
// the file take priority over the built-in rules, which follow them unless
// replace_defaults is set. A missing file yields Default().
func LoadRules(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules builds a Categorizer from the TOML contents of a rule file.
func ParseRules(data []byte) (*Categorizer, error) {
	var rf RuleFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for i, r := range rf.Rules {
		if normalizeScheme(r.Fragment) == "" || r.Category == "" {
			return nil, fmt.Errorf("rule %d: %w", i+1, ErrInvalidRule)
		}
	}

	rules := rf.Rules
	if !rf.ReplaceDefaults {
		rules = append(rules, DefaultRules()...)
	}
	return New(rules, rf.Fallback), nil
}

// MarshalRules renders c as a rule file that reproduces it exactly.
func MarshalRules(c *Categorizer) ([]byte, error) {
	data, err := toml.Marshal(RuleFile{
		Fallback:        c.fallback,
		ReplaceDefaults: true,
		Rules:           c.Rules(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}
	return data, nil
}

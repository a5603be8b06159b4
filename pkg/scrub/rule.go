package scrub

import (
	"fmt"
	"regexp"
	"sort"
)

// ColumnSelector describes which columns a rule targets. Exactly one of
// Columns, Pattern, or All may be set; resolution against the live schema is
// deferred until the rule executes.
type ColumnSelector struct {
	Columns []string
	Pattern string
	All     bool

	re *regexp.Regexp // compiled from Pattern at rule-set build time
}

// SelectColumns builds an explicit selector.
func SelectColumns(names ...string) ColumnSelector { return ColumnSelector{Columns: names} }

// SelectPattern builds a regex selector.
func SelectPattern(expr string) ColumnSelector { return ColumnSelector{Pattern: expr} }

// SelectAll targets every column of the working schema.
func SelectAll() ColumnSelector { return ColumnSelector{All: true} }

func (s *ColumnSelector) compile(rule string) error {
	set := 0
	if len(s.Columns) > 0 {
		set++
	}
	if s.Pattern != "" {
		set++
	}
	if s.All {
		set++
	}
	if set > 1 {
		return &ConfigError{Reason: fmt.Sprintf("rule %q: columns, pattern and all are mutually exclusive", rule)}
	}
	if set == 0 {
		// No selector defaults to every column, matching the config model.
		s.All = true
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return &ConfigError{Reason: fmt.Sprintf("rule %q: bad column pattern %q: %v", rule, s.Pattern, err)}
		}
		s.re = re
	}
	return nil
}

// Rule is one named, ordered transformation step.
type Rule struct {
	Name       string
	Operation  string
	Columns    ColumnSelector
	Parameters Params
	Order      int
	Disabled   bool
}

// RuleSet is an immutable, execution-ordered sequence of rules. Rules are
// sorted by Order ascending; ties keep their declaration order.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates selectors and fixes the execution order. Operation
// names are checked later, against the registry of the engine the set is
// attached to.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	for i := range sorted {
		if sorted[i].Name == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %d: name is required", i)}
		}
		if sorted[i].Operation == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %q: operation is required", sorted[i].Name)}
		}
		if err := sorted[i].Columns.compile(sorted[i].Name); err != nil {
			return nil, err
		}
		if sorted[i].Parameters == nil {
			sorted[i].Parameters = Params{}
		}
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Order < sorted[b].Order })
	return &RuleSet{rules: sorted}, nil
}

// Rules returns the rules in execution order.
func (rs *RuleSet) Rules() []Rule { return rs.rules }

// Len reports the number of rules, including disabled ones.
func (rs *RuleSet) Len() int { return len(rs.rules) }

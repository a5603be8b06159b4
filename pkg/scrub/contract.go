package scrub

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ColumnContract constrains a single column: logical type, nullability, and
// optional value checks.
type ColumnContract struct {
	Dtype    string
	Nullable bool
	Min      *float64
	Max      *float64
	Regex    string   // full-match against string cells
	In       []string // allowed values, compared against the cell's string form

	kind Kind
	re   *regexp.Regexp
}

// Contract is a declarative schema plus constraints, checked before and/or
// after the pipeline. Strict rejects table columns the contract does not
// mention; Coerce casts mismatched columns (leniently) before the value
// checks run instead of failing on dtype alone.
type Contract struct {
	Strict  bool
	Coerce  bool
	Columns map[string]ColumnContract

	compiled bool
}

// compile parses dtypes and regexes once. Called when the contract is bound
// to an engine; bad entries become ConfigErrors before any clean call.
func (c *Contract) compile() error {
	if c == nil || c.compiled {
		return nil
	}
	for name, cc := range c.Columns {
		kind, err := ParseKind(cc.Dtype)
		if err != nil {
			return &ConfigError{Reason: fmt.Sprintf("contract column %q: %v", name, err)}
		}
		cc.kind = kind
		if cc.Regex != "" {
			re, err := regexp.Compile(anchored(cc.Regex))
			if err != nil {
				return &ConfigError{Reason: fmt.Sprintf("contract column %q: bad regex %q: %v", name, cc.Regex, err)}
			}
			cc.re = re
		}
		c.Columns[name] = cc
	}
	c.compiled = true
	return nil
}

func anchored(expr string) string {
	return `\A(?:` + expr + `)\z`
}

// validateContract checks f against c for one phase and reports every
// violation at once. With Coerce enabled the returned frame carries the
// coerced columns; callers thread it onward.
func validateContract(f *Frame, c *Contract, phase string) (*Frame, error) {
	if c == nil {
		return f, nil
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	var violations []Violation

	names := make([]string, 0, len(c.Columns))
	for name := range c.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	out := f
	for _, name := range names {
		cc := c.Columns[name]
		col, ok := out.ColumnByName(name)
		if !ok {
			violations = append(violations, Violation{Column: name, Check: "missing", Detail: "column not present"})
			continue
		}
		if col.Kind() != cc.kind {
			if c.Coerce {
				coerced, err := castColumn(col, cc.kind, false)
				if err != nil {
					return nil, err
				}
				out = out.WithColumn(coerced)
				col = coerced
			} else {
				violations = append(violations, Violation{
					Column: name, Check: "dtype",
					Detail: fmt.Sprintf("expected %s, got %s", cc.kind, col.Kind()),
				})
			}
		}
		if !cc.Nullable {
			nulls := 0
			for i := 0; i < col.Len(); i++ {
				if col.IsNull(i) {
					nulls++
				}
			}
			if nulls > 0 {
				violations = append(violations, Violation{
					Column: name, Check: "nullable",
					Detail: fmt.Sprintf("%d null value(s)", nulls),
				})
			}
		}
		if cc.Min != nil || cc.Max != nil {
			below, above := 0, 0
			for i := 0; i < col.Len(); i++ {
				v, ok := numericAt(col, i)
				if !ok {
					continue
				}
				if cc.Min != nil && v < *cc.Min {
					below++
				}
				if cc.Max != nil && v > *cc.Max {
					above++
				}
			}
			if below > 0 {
				violations = append(violations, Violation{
					Column: name, Check: "min",
					Detail: fmt.Sprintf("%d value(s) below %v", below, *cc.Min),
				})
			}
			if above > 0 {
				violations = append(violations, Violation{
					Column: name, Check: "max",
					Detail: fmt.Sprintf("%d value(s) above %v", above, *cc.Max),
				})
			}
		}
		if cc.re != nil {
			if sc, ok := col.(*StringColumn); ok {
				bad := 0
				for i := 0; i < sc.Len(); i++ {
					if v, ok := sc.Get(i); ok && !cc.re.MatchString(v) {
						bad++
					}
				}
				if bad > 0 {
					violations = append(violations, Violation{
						Column: name, Check: "regex",
						Detail: fmt.Sprintf("%d value(s) not matching %q", bad, cc.Regex),
					})
				}
			}
		}
		if len(cc.In) > 0 {
			allowed := make(map[string]struct{}, len(cc.In))
			for _, v := range cc.In {
				allowed[v] = struct{}{}
			}
			bad := 0
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Value(i)
				if !ok {
					continue
				}
				if _, ok := allowed[formatCell(v)]; !ok {
					bad++
				}
			}
			if bad > 0 {
				violations = append(violations, Violation{
					Column: name, Check: "isin",
					Detail: fmt.Sprintf("%d value(s) outside {%s}", bad, strings.Join(cc.In, ", ")),
				})
			}
		}
	}

	if c.Strict {
		for _, cs := range out.Schema().Columns {
			if _, ok := c.Columns[cs.Name]; !ok {
				violations = append(violations, Violation{
					Column: cs.Name, Check: "strict",
					Detail: "column not declared in contract",
				})
			}
		}
	}

	if len(violations) > 0 {
		return nil, &ContractViolationError{Phase: phase, Violations: violations}
	}
	return out, nil
}

// InferContract derives a contract from a sample frame: observed dtype,
// observed nullability, and min/max for numeric columns.
func InferContract(f *Frame, strict bool) *Contract {
	c := &Contract{Strict: strict, Columns: make(map[string]ColumnContract, f.Cols())}
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		hasNulls := false
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				hasNulls = true
				break
			}
		}
		cc := ColumnContract{Dtype: cs.Type.String(), Nullable: hasNulls}
		if cs.Type.Numeric() {
			if xs := numericValues(col); len(xs) > 0 {
				lo, hi := xs[0], xs[0]
				for _, x := range xs[1:] {
					if x < lo {
						lo = x
					}
					if x > hi {
						hi = x
					}
				}
				cc.Min, cc.Max = &lo, &hi
			}
		}
		c.Columns[cs.Name] = cc
	}
	return c
}

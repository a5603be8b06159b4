package scrub

import (
	"context"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// String-only transforms. Non-string target columns are a TypeMismatch:
// selectors decide what these operations touch, so a selector that sweeps in
// an int column is a configuration bug worth surfacing, not skipping.

type trimWhitespaceOp struct{}

func (trimWhitespaceOp) ValidateParams(Params) error { return nil }

func (trimWhitespaceOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	return mapStrings(f, cols, strings.TrimSpace)
}

type lowercaseOp struct{}

func (lowercaseOp) ValidateParams(Params) error { return nil }

func (lowercaseOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	return mapStrings(f, cols, strings.ToLower)
}

type uppercaseOp struct{}

func (uppercaseOp) ValidateParams(Params) error { return nil }

func (uppercaseOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	return mapStrings(f, cols, strings.ToUpper)
}

func mapStrings(f *Frame, cols []string, fn func(string) string) (*Frame, []Warning, error) {
	out := f
	for _, name := range cols {
		sc, err := stringColumn(out, name)
		if err != nil {
			return nil, nil, err
		}
		next := sc.Clone().(*StringColumn)
		changed := false
		for i := 0; i < next.Len(); i++ {
			if v, ok := next.Get(i); ok {
				if nv := fn(v); nv != v {
					next.Set(i, nv)
					changed = true
				}
			}
		}
		if changed {
			out = out.WithColumn(next)
		}
	}
	return out, nil, nil
}

// replaceOp rewrites values in the target columns. With regex=true the
// pattern parameter is a regular expression applied to string columns
// (substring substitution); otherwise value is matched literally against
// whole cells of any kind. Unmatched cells are unchanged.
type replaceOp struct{}

func (replaceOp) ValidateParams(p Params) error {
	if p.BoolOr("regex", false) {
		pattern, ok := p.String("pattern")
		if !ok {
			return errors.New("replace: regex mode requires a pattern parameter")
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return errors.Wrap(err, "replace: bad pattern")
		}
	} else if !p.Has("value") {
		return errors.New("replace: literal mode requires a value parameter")
	}
	if !p.Has("replacement") {
		return errors.New("replace: replacement parameter is required")
	}
	return nil
}

func (replaceOp) Apply(_ context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	replacement, _ := p.Any("replacement")
	if p.BoolOr("regex", false) {
		pattern, _ := p.String("pattern")
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, nil, errors.Wrap(err, "replace")
		}
		repl, ok := replacement.(string)
		if !ok {
			return nil, nil, errors.New("replace: regex mode requires a string replacement")
		}
		return mapStrings(f, cols, func(s string) string { return re.ReplaceAllString(s, repl) })
	}
	needle, _ := p.Any("value")
	out := f
	for _, name := range cols {
		col, _ := out.ColumnByName(name)
		next, err := replaceLiteral(col, needle, replacement)
		if err != nil {
			return nil, nil, err
		}
		if next != nil {
			out = out.WithColumn(next)
		}
	}
	return out, nil, nil
}

func replaceLiteral(col Column, needle, replacement any) (Column, error) {
	switch c := col.(type) {
	case *StringColumn:
		from, ok1 := needle.(string)
		to, ok2 := replacement.(string)
		if !ok1 || !ok2 {
			// Needle of another kind can never match a string column.
			return nil, nil
		}
		var out *StringColumn
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok && v == from {
				if out == nil {
					out = c.Clone().(*StringColumn)
				}
				out.Set(i, to)
			}
		}
		if out == nil {
			return nil, nil
		}
		return out, nil
	case *IntColumn:
		from, ok1 := asInt64(needle)
		to, ok2 := asInt64(replacement)
		if !ok1 || !ok2 {
			return nil, nil
		}
		var out *IntColumn
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok && v == from {
				if out == nil {
					out = c.Clone().(*IntColumn)
				}
				out.Set(i, to)
			}
		}
		if out == nil {
			return nil, nil
		}
		return out, nil
	case *FloatColumn:
		from, ok1 := asFloat64(needle)
		to, ok2 := asFloat64(replacement)
		if !ok1 || !ok2 {
			return nil, nil
		}
		var out *FloatColumn
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok && v == from {
				if out == nil {
					out = c.Clone().(*FloatColumn)
				}
				out.Set(i, to)
			}
		}
		if out == nil {
			return nil, nil
		}
		return out, nil
	case *BoolColumn:
		from, ok1 := needle.(bool)
		to, ok2 := replacement.(bool)
		if !ok1 || !ok2 {
			return nil, nil
		}
		var out *BoolColumn
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok && v == from {
				if out == nil {
					out = c.Clone().(*BoolColumn)
				}
				out.Set(i, to)
			}
		}
		if out == nil {
			return nil, nil
		}
		return out, nil
	default:
		return nil, nil
	}
}

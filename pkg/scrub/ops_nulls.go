package scrub

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// dropNullsOp removes every row holding a null in any target column.
type dropNullsOp struct{}

func (dropNullsOp) ValidateParams(Params) error { return nil }

func (dropNullsOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	if len(cols) == 0 {
		return f, nil, nil
	}
	targets := make([]Column, len(cols))
	for i, name := range cols {
		targets[i], _ = f.ColumnByName(name)
	}
	keep := make([]int, 0, f.Rows())
rows:
	for i := 0; i < f.Rows(); i++ {
		for _, c := range targets {
			if c.IsNull(i) {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	if len(keep) == f.Rows() {
		return f, nil, nil
	}
	return f.Retain(keep), nil, nil
}

// fillNullsOp fills nulls per target column. Strategies: value (literal),
// forward, backward, mean, median. Statistics are computed from the
// column's values before this rule's own edits, independently per column;
// mean/median retype int columns to float so the statistic is exact.
type fillNullsOp struct{}

var fillStrategies = map[string]bool{
	"value": true, "forward": true, "backward": true, "mean": true, "median": true,
}

func (fillNullsOp) ValidateParams(p Params) error {
	strategy := p.StringOr("strategy", "value")
	if !fillStrategies[strategy] {
		return errors.Newf("fill_nulls: unknown strategy %q", strategy)
	}
	if strategy == "value" && !p.Has("value") {
		return errors.New("fill_nulls: strategy value requires a value parameter")
	}
	return nil
}

func (fillNullsOp) Apply(_ context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	strategy := p.StringOr("strategy", "value")
	out := f
	for _, name := range cols {
		col, _ := out.ColumnByName(name)
		filled, err := fillColumn(col, strategy, p)
		if err != nil {
			return nil, nil, err
		}
		if filled != nil {
			out = out.WithColumn(filled)
		}
	}
	return out, nil, nil
}

func fillColumn(col Column, strategy string, p Params) (Column, error) {
	hasNull := false
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			hasNull = true
			break
		}
	}
	if !hasNull {
		return nil, nil
	}
	switch strategy {
	case "forward":
		c := col.Clone()
		last := -1
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				last = i
			} else if last >= 0 {
				copyCell(c, last, i)
			}
		}
		return c, nil
	case "backward":
		c := col.Clone()
		next := -1
		for i := c.Len() - 1; i >= 0; i-- {
			if !c.IsNull(i) {
				next = i
			} else if next >= 0 {
				copyCell(c, next, i)
			}
		}
		return c, nil
	case "mean", "median":
		xs := numericValues(col)
		if xs == nil {
			// Non-numeric target: nothing to compute, leave the column.
			return nil, nil
		}
		if len(xs) == 0 {
			return nil, nil
		}
		stat := mean(xs)
		if strategy == "median" {
			stat = median(xs)
		}
		return fillNumeric(col, stat), nil
	default: // value
		raw, _ := p.Any("value")
		return fillLiteral(col, raw)
	}
}

// fillNumeric replaces nulls with stat. Int columns become float columns so
// a fractional statistic is preserved.
func fillNumeric(col Column, stat float64) Column {
	switch c := col.(type) {
	case *FloatColumn:
		out := c.Clone().(*FloatColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, stat)
			}
		}
		return out
	case *IntColumn:
		out := NewFloatColumn(c.Name(), c.Len())
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				out.Set(i, float64(v))
			} else {
				out.Set(i, stat)
			}
		}
		return out
	default:
		return nil
	}
}

func fillLiteral(col Column, raw any) (Column, error) {
	switch c := col.(type) {
	case *StringColumn:
		s, ok := raw.(string)
		if !ok {
			return nil, &TypeMismatchError{Column: col.Name(), Want: KindString, Got: kindOfValue(raw)}
		}
		out := c.Clone().(*StringColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, s)
			}
		}
		return out, nil
	case *IntColumn:
		v, ok := asInt64(raw)
		if !ok {
			return nil, &TypeMismatchError{Column: col.Name(), Want: KindInt, Got: kindOfValue(raw)}
		}
		out := c.Clone().(*IntColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, v)
			}
		}
		return out, nil
	case *FloatColumn:
		v, ok := asFloat64(raw)
		if !ok {
			return nil, &TypeMismatchError{Column: col.Name(), Want: KindFloat, Got: kindOfValue(raw)}
		}
		out := c.Clone().(*FloatColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, v)
			}
		}
		return out, nil
	case *BoolColumn:
		v, ok := raw.(bool)
		if !ok {
			return nil, &TypeMismatchError{Column: col.Name(), Want: KindBool, Got: kindOfValue(raw)}
		}
		out := c.Clone().(*BoolColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, v)
			}
		}
		return out, nil
	default:
		return nil, &TypeMismatchError{Column: col.Name(), Want: col.Kind(), Got: kindOfValue(raw)}
	}
}

// kindOfValue classifies a literal for error reporting.
func kindOfValue(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int64:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case time.Time:
		return KindTime
	}
	return KindInvalid
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if float64(int64(t)) == t {
			return int64(t), true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

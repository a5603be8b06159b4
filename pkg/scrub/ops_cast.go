package scrub

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// castTypeOp converts target columns to a declared dtype. strict=true fails
// the rule on the first unparsable value; strict=false turns unparsable
// values into nulls.
type castTypeOp struct{}

func (castTypeOp) ValidateParams(p Params) error {
	dtype, ok := p.String("dtype")
	if !ok {
		return errors.New("cast_type: dtype parameter is required")
	}
	if _, err := ParseKind(dtype); err != nil {
		return errors.Wrap(err, "cast_type")
	}
	return nil
}

func (castTypeOp) Apply(_ context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	dtype, _ := p.String("dtype")
	kind, err := ParseKind(dtype)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cast_type")
	}
	strict := p.BoolOr("strict", false)
	out := f
	for _, name := range cols {
		col, _ := out.ColumnByName(name)
		if col.Kind() == kind {
			continue
		}
		next, err := castColumn(col, kind, strict)
		if err != nil {
			return nil, nil, err
		}
		out = out.WithColumn(next)
	}
	return out, nil, nil
}

// timeLayouts are tried in order when casting strings to time.
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// castColumn converts col to the target kind. Also used by the contract
// validator when coerce is enabled (always lenient there).
func castColumn(col Column, target Kind, strict bool) (Column, error) {
	if col.Kind() == target {
		return col, nil
	}
	out := NewColumn(col.Name(), target, col.Len())
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Value(i)
		if !ok {
			out.SetNull(i)
			continue
		}
		cv, ok := convertValue(v, target)
		if !ok {
			if strict {
				return nil, &TypeCoercionError{Column: col.Name(), Target: target, Value: formatCell(v), Row: i}
			}
			out.SetNull(i)
			continue
		}
		switch c := out.(type) {
		case *BoolColumn:
			c.Set(i, cv.(bool))
		case *IntColumn:
			c.Set(i, cv.(int64))
		case *FloatColumn:
			c.Set(i, cv.(float64))
		case *StringColumn:
			c.Set(i, cv.(string))
		case *TimeColumn:
			c.Set(i, cv.(time.Time))
		}
	}
	return out, nil
}

// convertValue coerces a single non-null cell value to the target kind.
func convertValue(v any, target Kind) (any, bool) {
	switch target {
	case KindString:
		return formatCell(v), true
	case KindInt:
		switch t := v.(type) {
		case int64:
			return t, true
		case float64:
			return int64(t), true
		case bool:
			if t {
				return int64(1), true
			}
			return int64(0), true
		case string:
			if x, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return x, true
			}
			// Integral floats written as "3.0" still count.
			if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && x == float64(int64(x)) {
				return int64(x), true
			}
		case time.Time:
			return t.Unix(), true
		}
	case KindFloat:
		switch t := v.(type) {
		case int64:
			return float64(t), true
		case float64:
			return t, true
		case bool:
			if t {
				return float64(1), true
			}
			return float64(0), true
		case string:
			if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return x, true
			}
		}
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, true
		case int64:
			return t != 0, true
		case string:
			if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
				return x, true
			}
		}
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t, true
		case string:
			for _, layout := range timeLayouts {
				if x, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return x, true
				}
			}
		case int64:
			return time.Unix(t, 0).UTC(), true
		}
	}
	return nil, false
}

// formatCell renders a cell value for string casts and error messages.
func formatCell(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

package scrub

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// dropDuplicatesOp keeps the first occurrence of each distinct row, where
// rows are compared over the resolved target columns (the All selector
// therefore yields full-row equality). With maintain_order=true surviving
// rows keep their original relative order; with false the implementation is
// free to reorder but does not have to.
type dropDuplicatesOp struct{}

func (dropDuplicatesOp) ValidateParams(Params) error { return nil }

func (dropDuplicatesOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	if len(cols) == 0 || f.Rows() == 0 {
		return f, nil, nil
	}
	targets := make([]Column, len(cols))
	for i, name := range cols {
		targets[i], _ = f.ColumnByName(name)
	}
	seen := make(map[string]struct{}, f.Rows())
	keep := make([]int, 0, f.Rows())
	var sb strings.Builder
	for i := 0; i < f.Rows(); i++ {
		sb.Reset()
		for _, c := range targets {
			writeCellKey(&sb, c, i)
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	if len(keep) == f.Rows() {
		return f, nil, nil
	}
	return f.Retain(keep), nil, nil
}

// writeCellKey appends an unambiguous encoding of one cell to the row key.
func writeCellKey(sb *strings.Builder, c Column, i int) {
	if c.IsNull(i) {
		sb.WriteByte(0x00)
		return
	}
	switch col := c.(type) {
	case *BoolColumn:
		v, _ := col.Get(i)
		if v {
			sb.WriteByte('t')
		} else {
			sb.WriteByte('f')
		}
	case *IntColumn:
		v, _ := col.Get(i)
		sb.WriteString(strconv.FormatInt(v, 10))
	case *FloatColumn:
		v, _ := col.Get(i)
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case *StringColumn:
		v, _ := col.Get(i)
		sb.WriteString(v)
	case *TimeColumn:
		v, _ := col.Get(i)
		sb.WriteString(v.Format(time.RFC3339Nano))
	}
}

// filterOp retains rows where `column operator value` holds for every target
// column. Null cells never satisfy an operator, so rows with a null in any
// target column are dropped.
type filterOp struct{}

var filterOperators = map[string]bool{
	"eq": true, "ne": true, "gt": true, "gte": true, "lt": true, "lte": true,
	"in": true, "contains": true,
}

func (filterOp) ValidateParams(p Params) error {
	op := p.StringOr("operator", "")
	if op == "" {
		return errors.New("filter: operator parameter is required")
	}
	if !filterOperators[op] {
		return errors.Newf("filter: unsupported operator %q", op)
	}
	if !p.Has("value") {
		return errors.New("filter: value parameter is required")
	}
	if op == "in" {
		if _, ok := p.List("value"); !ok {
			return errors.New("filter: operator in requires a list value")
		}
	}
	return nil
}

func (filterOp) Apply(_ context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	if len(cols) == 0 {
		return f, nil, nil
	}
	op := p.StringOr("operator", "eq")
	value, _ := p.Any("value")
	targets := make([]Column, len(cols))
	for i, name := range cols {
		targets[i], _ = f.ColumnByName(name)
	}
	keep := make([]int, 0, f.Rows())
rows:
	for i := 0; i < f.Rows(); i++ {
		for _, c := range targets {
			if !cellMatches(c, i, op, value) {
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

func cellMatches(c Column, i int, op string, value any) bool {
	if c.IsNull(i) {
		return false
	}
	if op == "in" {
		list, ok := Params{"v": value}.List("v")
		if !ok {
			return false
		}
		for _, item := range list {
			if cellMatches(c, i, "eq", item) {
				return true
			}
		}
		return false
	}
	switch col := c.(type) {
	case *IntColumn, *FloatColumn:
		want, ok := asFloat64(value)
		if !ok {
			return false
		}
		got, _ := numericAt(col, i)
		return compareFloat(got, want, op)
	case *StringColumn:
		want, ok := value.(string)
		if !ok {
			return false
		}
		got, _ := col.Get(i)
		if op == "contains" {
			return strings.Contains(got, want)
		}
		return compareOrdered(strings.Compare(got, want), op)
	case *BoolColumn:
		want, ok := value.(bool)
		if !ok {
			return false
		}
		got, _ := col.Get(i)
		switch op {
		case "eq":
			return got == want
		case "ne":
			return got != want
		}
		return false
	case *TimeColumn:
		raw, ok := value.(string)
		if !ok {
			return false
		}
		want, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return false
		}
		got, _ := col.Get(i)
		switch {
		case got.Before(want):
			return compareOrdered(-1, op)
		case got.After(want):
			return compareOrdered(1, op)
		default:
			return compareOrdered(0, op)
		}
	}
	return false
}

func compareFloat(got, want float64, op string) bool {
	switch op {
	case "eq":
		return got == want
	case "ne":
		return got != want
	case "gt":
		return got > want
	case "gte":
		return got >= want
	case "lt":
		return got < want
	case "lte":
		return got <= want
	}
	return false
}

// compareOrdered interprets a three-way comparison result against op.
func compareOrdered(cmp int, op string) bool {
	switch op {
	case "eq":
		return cmp == 0
	case "ne":
		return cmp != 0
	case "gt":
		return cmp > 0
	case "gte":
		return cmp >= 0
	case "lt":
		return cmp < 0
	case "lte":
		return cmp <= 0
	}
	return false
}

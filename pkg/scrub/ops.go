package scrub

import (
	"math"
	"sort"
)

// Shared helpers for the built-in operations.

// copyCell copies the value at row from to row to within a single column.
func copyCell(c Column, from, to int) {
	switch col := c.(type) {
	case *BoolColumn:
		if v, ok := col.Get(from); ok {
			col.Set(to, v)
		}
	case *IntColumn:
		if v, ok := col.Get(from); ok {
			col.Set(to, v)
		}
	case *FloatColumn:
		if v, ok := col.Get(from); ok {
			col.Set(to, v)
		}
	case *StringColumn:
		if v, ok := col.Get(from); ok {
			col.Set(to, v)
		}
	case *TimeColumn:
		if v, ok := col.Get(from); ok {
			col.Set(to, v)
		}
	}
}

// numericValues extracts the non-null values of an int or float column as
// float64, in row order. Returns nil for non-numeric columns.
func numericValues(c Column) []float64 {
	switch col := c.(type) {
	case *IntColumn:
		out := make([]float64, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); ok {
				out = append(out, float64(v))
			}
		}
		return out
	case *FloatColumn:
		out := make([]float64, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); ok {
				out = append(out, v)
			}
		}
		return out
	default:
		return nil
	}
}

// numericAt returns the cell as float64 for int/float columns.
func numericAt(c Column, i int) (float64, bool) {
	switch col := c.(type) {
	case *IntColumn:
		if v, ok := col.Get(i); ok {
			return float64(v), true
		}
	case *FloatColumn:
		return col.Get(i)
	}
	return 0, false
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the ddof=1 standard deviation, matching what columnar engines
// report by default. A single observation yields 0.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// quantile computes q in [0,1] with linear interpolation between order
// statistics. xs is not assumed sorted.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func median(xs []float64) float64 { return quantile(xs, 0.5) }

// stringColumn returns the target as a *StringColumn or a TypeMismatchError.
func stringColumn(f *Frame, name string) (*StringColumn, error) {
	col, _ := f.ColumnByName(name)
	sc, ok := col.(*StringColumn)
	if !ok {
		return nil, &TypeMismatchError{Column: name, Want: KindString, Got: col.Kind()}
	}
	return sc, nil
}

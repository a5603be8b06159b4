package scrub

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
)

// removeOutliersOp drops rows whose value in a target column falls outside
// the column's inlier band. Columns are handled independently and in order,
// so a later column's statistics see the rows already removed for an
// earlier one. Non-numeric target columns are skipped; rows with a null in
// a target column are never removed (null is not an outlier).
type removeOutliersOp struct{}

func (removeOutliersOp) ValidateParams(p Params) error {
	switch p.StringOr("method", "iqr") {
	case "iqr", "zscore":
	default:
		return errors.Newf("remove_outliers: unknown method %q", p.StringOr("method", ""))
	}
	if t := p.FloatOr("threshold", 1.5); t <= 0 {
		return errors.Newf("remove_outliers: threshold must be positive, got %v", t)
	}
	return nil
}

func (removeOutliersOp) Apply(_ context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	method := p.StringOr("method", "iqr")
	threshold := p.FloatOr("threshold", 1.5)
	out := f
	for _, name := range cols {
		col, _ := out.ColumnByName(name)
		if !col.Kind().Numeric() {
			continue
		}
		xs := numericValues(col)
		if len(xs) == 0 {
			continue
		}
		var lower, upper float64
		switch method {
		case "iqr":
			q1 := quantile(xs, 0.25)
			q3 := quantile(xs, 0.75)
			iqr := q3 - q1
			lower = q1 - threshold*iqr
			upper = q3 + threshold*iqr
		case "zscore":
			std := sampleStd(xs)
			if std == 0 {
				continue
			}
			m := mean(xs)
			lower = m - threshold*std
			upper = m + threshold*std
		}
		keep := make([]int, 0, out.Rows())
		for i := 0; i < out.Rows(); i++ {
			v, ok := numericAt(col, i)
			if !ok || (v >= lower && v <= upper) {
				keep = append(keep, i)
			}
		}
		if len(keep) < out.Rows() {
			out = out.Retain(keep)
		}
	}
	return out, nil, nil
}

// standardizeOp replaces each numeric target column with its z-score,
// (x − mean) / stddev, using the sample standard deviation. A zero-variance
// column is left unchanged and reported as a ZeroVariance warning rather
// than failing the rule. Int columns are retyped to float.
type standardizeOp struct{}

func (standardizeOp) ValidateParams(Params) error { return nil }

func (standardizeOp) Apply(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
	out := f
	var warnings []Warning
	for _, name := range cols {
		col, _ := out.ColumnByName(name)
		if !col.Kind().Numeric() {
			continue
		}
		xs := numericValues(col)
		if len(xs) == 0 {
			continue
		}
		m := mean(xs)
		std := sampleStd(xs)
		if std == 0 || math.IsNaN(std) {
			warnings = append(warnings, Warning{Code: "ZeroVariance", Column: name})
			continue
		}
		next := NewFloatColumn(name, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := numericAt(col, i); ok {
				next.Set(i, (v-m)/std)
			} else {
				next.SetNull(i)
			}
		}
		out = out.WithColumn(next)
	}
	return out, warnings, nil
}

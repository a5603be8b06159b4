// Package csvio reads and writes frames as CSV, with lightweight schema
// inference over a row sample.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wdm0006/scrub/pkg/io/ioutils"
	"github.com/wdm0006/scrub/pkg/scrub"
)

type Options struct {
	HasHeader  bool
	Delimiter  rune // default ','
	SampleRows int  // rows sampled for type inference; default 100
}

// Read loads a whole CSV file (optionally gzipped) into a frame.
func Read(path string, opt Options) (*scrub.Frame, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return ReadFrom(rc, opt)
}

// ReadFrom loads CSV records from r into a frame.
func ReadFrom(r io.Reader, opt Options) (*scrub.Frame, error) {
	cr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return scrub.NewFrame(scrub.Schema{}), nil
	}

	var names []string
	if opt.HasHeader {
		names = make([]string, len(records[0]))
		for i, h := range records[0] {
			names[i] = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
		}
		records = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := records
	max := opt.SampleRows
	if max <= 0 {
		max = 100
	}
	if len(sample) > max {
		sample = sample[:max]
	}
	kinds := inferKinds(sample, len(names))

	schema := scrub.Schema{Columns: make([]scrub.ColumnSchema, len(names))}
	for i, name := range names {
		schema.Columns[i] = scrub.ColumnSchema{Name: name, Type: kinds[i], Nullable: true}
	}
	f := scrub.NewFrame(schema)
	for _, rec := range records {
		f.AppendNullRow()
		row := f.Rows() - 1
		for i, cs := range schema.Columns {
			if i >= len(rec) {
				continue
			}
			val := strings.TrimSpace(rec[i])
			if val == "" {
				continue // null cell
			}
			switch cs.Type {
			case scrub.KindInt:
				if x, err := strconv.ParseInt(val, 10, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			case scrub.KindFloat:
				if x, err := strconv.ParseFloat(val, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			case scrub.KindBool:
				if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			default:
				_ = f.SetCell(row, cs.Name, val)
			}
		}
	}
	return f, nil
}

// inferKinds classifies each column from the sample: all-int cells make an
// int column, numeric cells a float column, true/false a bool column,
// anything else a string column. Empty cells are nulls and carry no vote.
func inferKinds(sample [][]string, ncol int) []scrub.Kind {
	kinds := make([]scrub.Kind, ncol)
	for c := 0; c < ncol; c++ {
		ints, floats, bools, strs := 0, 0, 0, 0
		for _, rec := range sample {
			if c >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[c])
			if v == "" {
				continue
			}
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				ints++
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				floats++
				continue
			}
			switch strings.ToLower(v) {
			case "true", "false":
				bools++
			default:
				strs++
			}
		}
		switch {
		case strs > 0 || ints+floats+bools == 0:
			kinds[c] = scrub.KindString
		case bools > ints+floats:
			kinds[c] = scrub.KindBool
		case floats > 0:
			kinds[c] = scrub.KindFloat
		default:
			kinds[c] = scrub.KindInt
		}
	}
	return kinds
}

// Write stores a frame as CSV with a header row. Null cells become empty
// fields.
func Write(path string, f *scrub.Frame, opt Options) error {
	wc, err := ioutils.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(wc)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	schema := f.Schema()
	if err := w.Write(schema.Names()); err != nil {
		_ = wc.Close()
		return err
	}
	rec := make([]string, len(schema.Columns))
	for r := 0; r < f.Rows(); r++ {
		for i, cs := range schema.Columns {
			col, _ := f.ColumnByName(cs.Name)
			rec[i] = cellString(col, r)
		}
		if err := w.Write(rec); err != nil {
			_ = wc.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

func cellString(col scrub.Column, row int) string {
	v, ok := col.Value(row)
	if !ok {
		return ""
	}
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

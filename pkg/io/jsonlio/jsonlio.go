// Package jsonlio reads and writes frames as newline-delimited JSON.
package jsonlio

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wdm0006/scrub/pkg/io/ioutils"
	"github.com/wdm0006/scrub/pkg/scrub"
)

// Read loads a whole JSONL file (optionally gzipped) into a frame. Column
// kinds are inferred from the union of keys over all objects; columns are
// ordered by name since JSON objects carry no order.
func Read(path string) (*scrub.Frame, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return ReadFrom(rc)
}

func ReadFrom(r io.Reader) (*scrub.Frame, error) {
	dec := json.NewDecoder(r)
	var rows []map[string]any
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "decode jsonl")
		}
		rows = append(rows, m)
	}

	keySet := map[string]struct{}{}
	for _, m := range rows {
		for k := range m {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	schema := scrub.Schema{Columns: make([]scrub.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = scrub.ColumnSchema{Name: k, Type: inferKind(rows, k), Nullable: true}
	}
	f := scrub.NewFrame(schema)
	for _, m := range rows {
		f.AppendNullRow()
		row := f.Rows() - 1
		for _, cs := range schema.Columns {
			v, ok := m[cs.Name]
			if !ok || v == nil {
				continue
			}
			_ = f.SetCell(row, cs.Name, coerce(v, cs.Type))
		}
	}
	return f, nil
}

// inferKind votes over the non-null values of one key. JSON numbers decode
// as float64; integral values promote the column to int only when every
// numeric cell is integral.
func inferKind(rows []map[string]any, key string) scrub.Kind {
	nums, ints, bools, strs := 0, 0, 0, 0
	for _, m := range rows {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			nums++
			if t == float64(int64(t)) {
				ints++
			}
		case bool:
			bools++
		case string:
			strs++
		default:
			strs++
		}
	}
	switch {
	case strs > 0:
		return scrub.KindString
	case bools > nums:
		return scrub.KindBool
	case nums > 0 && ints == nums:
		return scrub.KindInt
	case nums > 0:
		return scrub.KindFloat
	default:
		return scrub.KindString
	}
}

func coerce(v any, kind scrub.Kind) any {
	switch kind {
	case scrub.KindInt:
		if t, ok := v.(float64); ok {
			return int64(t)
		}
	case scrub.KindString:
		switch t := v.(type) {
		case string:
			return t
		default:
			b, _ := json.Marshal(t)
			return string(b)
		}
	}
	return v
}

// Write stores a frame as one JSON object per row. Null cells are omitted
// from the object.
func Write(path string, f *scrub.Frame) error {
	wc, err := ioutils.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(wc)
	schema := f.Schema()
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, len(schema.Columns))
		for _, cs := range schema.Columns {
			col, _ := f.ColumnByName(cs.Name)
			v, ok := col.Value(r)
			if !ok {
				continue
			}
			if t, isTime := v.(time.Time); isTime {
				v = t.Format(time.RFC3339Nano)
			}
			m[cs.Name] = v
		}
		if err := enc.Encode(m); err != nil {
			_ = wc.Close()
			return err
		}
	}
	return wc.Close()
}

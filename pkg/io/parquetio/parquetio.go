// Package parquetio reads and writes frames as Parquet files.
package parquetio

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	segment "github.com/segmentio/parquet-go"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/scrub/pkg/scrub"
)

// Read loads a whole Parquet file into a frame. Values arrive as generic
// maps; column kinds are inferred from the observed Go types.
func Read(path string) (*scrub.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := segment.NewGenericReader[map[string]any](f)
	defer func() { _ = r.Close() }()

	var rows []map[string]any
	buf := make([]map[string]any, 1024)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			m := make(map[string]any, len(buf[i]))
			for k, v := range buf[i] {
				m[k] = v
			}
			rows = append(rows, m)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
				break
			}
			return nil, errors.Wrap(err, "read parquet")
		}
		if n == 0 {
			break
		}
	}
	return fromRows(rows), nil
}

func fromRows(rows []map[string]any) *scrub.Frame {
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
		schema.Columns[i] = scrub.ColumnSchema{Name: k, Type: kindOf(rows, k), Nullable: true}
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
			_ = f.SetCell(row, cs.Name, normalize(v, cs.Type))
		}
	}
	return f
}

func kindOf(rows []map[string]any, key string) scrub.Kind {
	for _, m := range rows {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case bool:
			return scrub.KindBool
		case int32, int64, int:
			return scrub.KindInt
		case float32, float64:
			return scrub.KindFloat
		case string, []byte:
			return scrub.KindString
		}
	}
	return scrub.KindString
}

func normalize(v any, kind scrub.Kind) any {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float32:
		return float64(t)
	case []byte:
		return string(t)
	}
	_ = kind
	return v
}

// Write stores a frame as Parquet. The writer consumes JSON-shaped rows
// against a schema derived from the frame.
func Write(path string, f *scrub.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	w, err := pw.NewJSONWriter(schemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return errors.Wrap(err, "parquet writer")
	}
	schema := f.Schema()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(schema.Columns))
		for _, cs := range schema.Columns {
			col, _ := f.ColumnByName(cs.Name)
			if v, ok := col.Value(r); ok {
				rec[cs.Name] = v
			}
		}
		b, _ := json.Marshal(rec)
		if err := w.Write(string(b)); err != nil {
			_ = w.WriteStop()
			_ = fw.Close()
			return errors.Wrapf(err, "write row %d", r)
		}
	}
	if err := w.WriteStop(); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, "finish parquet")
	}
	return fw.Close()
}

func schemaJSON(s scrub.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type root struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := root{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case scrub.KindInt:
			tag += "INT64"
		case scrub.KindFloat:
			tag += "DOUBLE"
		case scrub.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

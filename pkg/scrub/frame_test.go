package scrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFrame builds a frame from a column-name -> cell-slice map, with nil
// cells becoming nulls. Shared by the operation and engine tests.
func makeFrame(t *testing.T, columns []ColumnSchema, rows [][]any) *Frame {
	t.Helper()
	f := NewFrame(Schema{Columns: columns})
	for r, row := range rows {
		f.AppendNullRow()
		require.Len(t, row, len(columns))
		for c, v := range row {
			require.NoError(t, f.SetCell(r, columns[c].Name, v))
		}
	}
	return f
}

func stringCol(name string) ColumnSchema { return ColumnSchema{Name: name, Type: KindString, Nullable: true} }
func intCol(name string) ColumnSchema    { return ColumnSchema{Name: name, Type: KindInt, Nullable: true} }
func floatCol(name string) ColumnSchema  { return ColumnSchema{Name: name, Type: KindFloat, Nullable: true} }
func boolCol(name string) ColumnSchema   { return ColumnSchema{Name: name, Type: KindBool, Nullable: true} }

// cells returns column values as a slice with nil for nulls.
func cells(t *testing.T, f *Frame, name string) []any {
	t.Helper()
	col, ok := f.ColumnByName(name)
	require.True(t, ok, "column %q", name)
	out := make([]any, col.Len())
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Value(i); ok {
			out[i] = v
		}
	}
	return out
}

func TestFrameSetCellAndNulls(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("name"), intCol("age")}, [][]any{
		{"ada", int64(36)},
		{nil, nil},
	})
	assert.Equal(t, 2, f.Rows())
	assert.Equal(t, []any{"ada", nil}, cells(t, f, "name"))
	assert.Equal(t, []any{int64(36), nil}, cells(t, f, "age"))
}

func TestFrameSetCellRejectsWrongType(t *testing.T) {
	f := NewFrame(Schema{Columns: []ColumnSchema{intCol("age")}})
	f.AppendNullRow()
	err := f.SetCell(0, "age", "not a number")
	require.Error(t, err)
}

func TestFrameWithColumnSharesUntouched(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("a"), stringCol("b")}, [][]any{
		{"x", "y"},
	})
	repl := NewStringColumn("a", 1)
	repl.Set(0, "z")
	g := f.WithColumn(repl)

	assert.Equal(t, []any{"z"}, cells(t, g, "a"))
	assert.Equal(t, []any{"x"}, cells(t, f, "a"))

	fb, _ := f.ColumnByName("b")
	gb, _ := g.ColumnByName("b")
	assert.Same(t, fb, gb)
}

func TestFrameWithColumnAppendsNew(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("a")}, [][]any{{"x"}})
	extra := NewIntColumn("n", 1)
	extra.Set(0, 7)
	g := f.WithColumn(extra)

	assert.Equal(t, 1, f.Cols())
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, []string{"a", "n"}, g.Schema().Names())
}

func TestFrameRetain(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{intCol("n")}, [][]any{
		{int64(1)}, {int64(2)}, {int64(3)},
	})
	g := f.Retain([]int{0, 2})
	assert.Equal(t, []any{int64(1), int64(3)}, cells(t, g, "n"))
	assert.Equal(t, 3, f.Rows())
}

func TestParseKindAliases(t *testing.T) {
	for in, want := range map[string]Kind{
		"int": KindInt, "int64": KindInt, "integer": KindInt,
		"float": KindFloat, "double": KindFloat,
		"str": KindString, "string": KindString,
		"bool": KindBool, "boolean": KindBool,
		"datetime": KindTime, "date": KindTime,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("decimal")
	assert.Error(t, err)
}

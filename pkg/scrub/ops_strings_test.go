package scrub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimLowerUpper(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("s")}, [][]any{
		{"  Hello World  "}, {nil}, {"x"},
	})

	out, _, err := trimWhitespaceOp{}.Apply(context.Background(), f, []string{"s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"Hello World", nil, "x"}, cells(t, out, "s"))

	out, _, err = lowercaseOp{}.Apply(context.Background(), out, []string{"s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"hello world", nil, "x"}, cells(t, out, "s"))

	out, _, err = uppercaseOp{}.Apply(context.Background(), out, []string{"s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"HELLO WORLD", nil, "X"}, cells(t, out, "s"))
}

func TestStringOpRejectsNonStringColumn(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{intCol("n")}, [][]any{{int64(1)}})
	_, _, err := lowercaseOp{}.Apply(context.Background(), f, []string{"n"}, nil)
	var tme *TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.Equal(t, "n", tme.Column)
	assert.Equal(t, KindString, tme.Want)
	assert.Equal(t, KindInt, tme.Got)
}

func TestStringOpNoChangeReturnsSameFrame(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("s")}, [][]any{{"already lower"}})
	out, _, err := lowercaseOp{}.Apply(context.Background(), f, []string{"s"}, nil)
	require.NoError(t, err)
	assert.Same(t, f, out)
}

func TestReplaceLiteralString(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("s")}, [][]any{
		{"N/A"}, {"ok"}, {"N/A value"},
	})
	out, _, err := replaceOp{}.Apply(context.Background(), f, []string{"s"},
		Params{"value": "N/A", "replacement": "missing"})
	require.NoError(t, err)
	// literal mode matches whole cells only
	assert.Equal(t, []any{"missing", "ok", "N/A value"}, cells(t, out, "s"))
}

func TestReplaceLiteralNumeric(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{intCol("n")}, [][]any{
		{int64(-1)}, {int64(7)},
	})
	out, _, err := replaceOp{}.Apply(context.Background(), f, []string{"n"},
		Params{"value": -1, "replacement": 0})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(0), int64(7)}, cells(t, out, "n"))
}

func TestReplaceLiteralWrongTypedNeedleIsNoop(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{intCol("n")}, [][]any{{int64(1)}})
	out, _, err := replaceOp{}.Apply(context.Background(), f, []string{"n"},
		Params{"value": "one", "replacement": "zero"})
	require.NoError(t, err)
	assert.Same(t, f, out)
}

func TestReplaceRegex(t *testing.T) {
	f := makeFrame(t, []ColumnSchema{stringCol("phone")}, [][]any{
		{"555-123-4567"}, {nil},
	})
	out, _, err := replaceOp{}.Apply(context.Background(), f, []string{"phone"},
		Params{"regex": true, "pattern": `[^0-9]`, "replacement": ""})
	require.NoError(t, err)
	assert.Equal(t, []any{"5551234567", nil}, cells(t, out, "phone"))
}

func TestReplaceValidateParams(t *testing.T) {
	op := replaceOp{}
	assert.Error(t, op.ValidateParams(Params{"replacement": "x"}))
	assert.Error(t, op.ValidateParams(Params{"value": "a"}))
	assert.Error(t, op.ValidateParams(Params{"regex": true, "replacement": "x"}))
	assert.Error(t, op.ValidateParams(Params{"regex": true, "pattern": "(bad", "replacement": "x"}))
	assert.NoError(t, op.ValidateParams(Params{"value": "a", "replacement": "b"}))
	assert.NoError(t, op.ValidateParams(Params{"regex": true, "pattern": `\d+`, "replacement": ""}))
}

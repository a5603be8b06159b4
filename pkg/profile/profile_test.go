package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scrub/pkg/scrub"
)

func sampleFrame(t *testing.T) *scrub.Frame {
	t.Helper()
	f := scrub.NewFrame(scrub.Schema{Columns: []scrub.ColumnSchema{
		{Name: "n", Type: scrub.KindInt, Nullable: true},
		{Name: "flag", Type: scrub.KindBool, Nullable: true},
		{Name: "tag", Type: scrub.KindString, Nullable: true},
	}})
	for _, row := range []struct {
		n    any
		flag any
		tag  any
	}{
		{int64(1), true, "a"},
		{int64(5), false, "a"},
		{nil, true, "b"},
		{int64(3), nil, nil},
	} {
		f.AppendNullRow()
		r := f.Rows() - 1
		require.NoError(t, f.SetCell(r, "n", row.n))
		require.NoError(t, f.SetCell(r, "flag", row.flag))
		require.NoError(t, f.SetCell(r, "tag", row.tag))
	}
	return f
}

func TestOf(t *testing.T) {
	p := Of(sampleFrame(t), 5)
	assert.Equal(t, 4, p.Rows)
	require.Len(t, p.Columns, 3)

	n := p.Columns[0]
	require.NotNil(t, n.Num)
	assert.Equal(t, 3, n.Num.Count)
	assert.Equal(t, 1, n.Num.Nulls)
	assert.Equal(t, 1.0, n.Num.Min)
	assert.Equal(t, 5.0, n.Num.Max)
	assert.InDelta(t, 3.0, n.Num.Mean, 1e-9)

	flag := p.Columns[1]
	require.NotNil(t, flag.Bool)
	assert.Equal(t, 2, flag.Bool.True)
	assert.Equal(t, 1, flag.Bool.False)
	assert.Equal(t, 1, flag.Bool.Nulls)

	tag := p.Columns[2]
	require.NotNil(t, tag.Str)
	assert.Equal(t, 3, tag.Str.Count)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, tag.Str.Top)
}

func TestTopKBounds(t *testing.T) {
	p := Of(sampleFrame(t), 1)
	tag := p.Columns[2]
	assert.Equal(t, map[string]int{"a": 2}, tag.Str.Top)

	p = Of(sampleFrame(t), 0)
	assert.Nil(t, p.Columns[2].Str.Top)
}

func TestText(t *testing.T) {
	out := Of(sampleFrame(t), 5).Text()
	assert.True(t, strings.HasPrefix(out, "rows=4\n"))
	assert.Contains(t, out, "- n (int):")
	assert.Contains(t, out, "true=2 false=1")
	assert.Contains(t, out, `"a": 2`)
}

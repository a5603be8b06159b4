package golearn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scrub/pkg/scrub"
)

func irisLikeFrame(t *testing.T) *scrub.Frame {
	t.Helper()
	f := scrub.NewFrame(scrub.Schema{Columns: []scrub.ColumnSchema{
		{Name: "petal_len", Type: scrub.KindFloat, Nullable: true},
		{Name: "petal_wid", Type: scrub.KindFloat, Nullable: true},
		{Name: "species", Type: scrub.KindString, Nullable: true},
	}})
	rows := [][]any{
		{1.4, 0.2, "setosa"},
		{4.7, 1.4, "versicolor"},
		{5.1, 1.9, "virginica"},
	}
	for r, row := range rows {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(r, "petal_len", row[0]))
		require.NoError(t, f.SetCell(r, "petal_wid", row[1]))
		require.NoError(t, f.SetCell(r, "species", row[2]))
	}
	return f
}

func TestToInstances(t *testing.T) {
	inst, err := ToInstances(irisLikeFrame(t), "species")
	require.NoError(t, err)

	cols, rows := inst.Size()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, rows)
	require.Len(t, inst.AllClassAttributes(), 1)
	assert.Equal(t, "species", inst.AllClassAttributes()[0].GetName())
}

func TestRoundTrip(t *testing.T) {
	f := irisLikeFrame(t)
	inst, err := ToInstances(f, "")
	require.NoError(t, err)

	g, err := FromInstances(inst)
	require.NoError(t, err)
	require.Equal(t, f.Rows(), g.Rows())

	pl, ok := g.ColumnByName("petal_len")
	require.True(t, ok)
	assert.Equal(t, scrub.KindFloat, pl.Kind())
	v, present := pl.Value(1)
	require.True(t, present)
	assert.InDelta(t, 4.7, v.(float64), 1e-6)

	sp, ok := g.ColumnByName("species")
	require.True(t, ok)
	v, present = sp.Value(2)
	require.True(t, present)
	assert.Equal(t, "virginica", v)
}

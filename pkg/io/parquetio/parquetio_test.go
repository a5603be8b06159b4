package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scrub/pkg/scrub"
)

func TestWriteReadRoundTrip(t *testing.T) {
	f := scrub.NewFrame(scrub.Schema{Columns: []scrub.ColumnSchema{
		{Name: "name", Type: scrub.KindString, Nullable: true},
		{Name: "age", Type: scrub.KindInt, Nullable: true},
		{Name: "score", Type: scrub.KindFloat, Nullable: true},
	}})
	f.AppendNullRow()
	require.NoError(t, f.SetCell(0, "name", "ada"))
	require.NoError(t, f.SetCell(0, "age", int64(36)))
	require.NoError(t, f.SetCell(0, "score", 91.5))
	f.AppendNullRow()
	require.NoError(t, f.SetCell(1, "name", "grace"))
	// age and score stay null

	path := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, Write(path, f))

	g, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, 2, g.Rows())

	name, ok := g.ColumnByName("name")
	require.True(t, ok)
	v, present := name.Value(0)
	require.True(t, present)
	assert.Equal(t, "ada", v)

	age, ok := g.ColumnByName("age")
	require.True(t, ok)
	assert.Equal(t, scrub.KindInt, age.Kind())
	assert.True(t, age.IsNull(1))

	score, ok := g.ColumnByName("score")
	require.True(t, ok)
	v, present = score.Value(0)
	require.True(t, present)
	assert.Equal(t, 91.5, v)
}

package csvio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scrub/pkg/scrub"
)

const sampleCSV = `name,age,score,active
ada,36,91.5,true
grace,,88.0,false
mary,42,,true
`

func TestReadInfersKinds(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleCSV), Options{HasHeader: true})
	require.NoError(t, err)
	require.Equal(t, 3, f.Rows())

	for name, want := range map[string]scrub.Kind{
		"name":   scrub.KindString,
		"age":    scrub.KindInt,
		"score":  scrub.KindFloat,
		"active": scrub.KindBool,
	} {
		col, ok := f.ColumnByName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, col.Kind(), name)
	}

	age, _ := f.ColumnByName("age")
	assert.True(t, age.IsNull(1))
	v, ok := age.Value(2)
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestReadWithoutHeader(t *testing.T) {
	f, err := ReadFrom(strings.NewReader("a,1\nb,2\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"col_0", "col_1"}, f.Schema().Names())
}

func TestMixedColumnFallsBackToString(t *testing.T) {
	f, err := ReadFrom(strings.NewReader("x\n1\noops\n"), Options{HasHeader: true})
	require.NoError(t, err)
	col, _ := f.ColumnByName("x")
	assert.Equal(t, scrub.KindString, col.Kind())
}

func TestWriteReadRoundTrip(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleCSV), Options{HasHeader: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(path, f, Options{}))

	g, err := Read(path, Options{HasHeader: true})
	require.NoError(t, err)
	require.Equal(t, f.Rows(), g.Rows())
	assert.Equal(t, f.Schema().Names(), g.Schema().Names())

	score, _ := g.ColumnByName("score")
	assert.True(t, score.IsNull(2))
}

func TestGzipRoundTrip(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleCSV), Options{HasHeader: true})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv.gz")
	require.NoError(t, Write(path, f, Options{}))

	g, err := Read(path, Options{HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, f.Rows(), g.Rows())
}

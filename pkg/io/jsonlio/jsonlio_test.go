package jsonlio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scrub/pkg/scrub"
)

const sampleJSONL = `{"name":"ada","age":36,"score":91.5,"active":true}
{"name":"grace","score":88.0,"active":false}
{"name":"mary","age":42}
`

func TestReadInfersKindsAndKeyUnion(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJSONL))
	require.NoError(t, err)
	require.Equal(t, 3, f.Rows())
	// columns are sorted by name
	assert.Equal(t, []string{"active", "age", "name", "score"}, f.Schema().Names())

	age, _ := f.ColumnByName("age")
	assert.Equal(t, scrub.KindInt, age.Kind())
	assert.True(t, age.IsNull(1))

	score, _ := f.ColumnByName("score")
	assert.Equal(t, scrub.KindFloat, score.Kind())

	active, _ := f.ColumnByName("active")
	assert.Equal(t, scrub.KindBool, active.Kind())
	assert.True(t, active.IsNull(2))
}

func TestIntegralFloatsStayFloatWhenMixed(t *testing.T) {
	f, err := ReadFrom(strings.NewReader("{\"x\":1}\n{\"x\":2.5}\n"))
	require.NoError(t, err)
	col, _ := f.ColumnByName("x")
	assert.Equal(t, scrub.KindFloat, col.Kind())
}

func TestWriteReadRoundTrip(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(sampleJSONL))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, Write(path, f))

	g, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, f.Rows(), g.Rows())
	assert.Equal(t, f.Schema().Names(), g.Schema().Names())

	// omitted nulls survive the trip as nulls
	age, _ := g.ColumnByName("age")
	assert.True(t, age.IsNull(1))
}

func TestReadEmpty(t *testing.T) {
	f, err := ReadFrom(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Rows())
}

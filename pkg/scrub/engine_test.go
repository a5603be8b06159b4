package scrub

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerFrame(t *testing.T) *Frame {
	return makeFrame(t, []ColumnSchema{stringCol("name"), stringCol("email"), intCol("age")}, [][]any{
		{"  Ada ", "ADA@EXAMPLE.COM", int64(36)},
		{"Grace", "grace@example.com", nil},
		{"  Ada ", "ADA@EXAMPLE.COM", int64(36)},
		{"Mary", "mary@example.com", int64(42)},
	})
}

func mustRules(t *testing.T, rules []Rule) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet(rules)
	require.NoError(t, err)
	return rs
}

func TestEngineCleanEndToEnd(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "trim", Operation: "trim_whitespace", Columns: SelectColumns("name", "email"), Order: 1},
		{Name: "lower emails", Operation: "lowercase", Columns: SelectColumns("email"), Order: 2},
		{Name: "fill ages", Operation: "fill_nulls", Columns: SelectColumns("age"), Parameters: Params{"strategy": "median"}, Order: 3},
		{Name: "dedupe", Operation: "drop_duplicates", Columns: SelectAll(), Order: 4},
	})
	sink := &MemorySink{}
	eng, err := New(rs, WithSink(sink))
	require.NoError(t, err)

	in := customerFrame(t)
	out, err := eng.Clean(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []any{"Ada", "Grace", "Mary"}, cells(t, out, "name"))
	assert.Equal(t, []any{"ada@example.com", "grace@example.com", "mary@example.com"}, cells(t, out, "email"))
	assert.Equal(t, []any{36.0, 36.0, 42.0}, cells(t, out, "age"))

	// input frame untouched
	assert.Equal(t, 4, in.Rows())
	assert.Equal(t, []any{"  Ada ", "Grace", "  Ada ", "Mary"}, cells(t, in, "name"))

	events := sink.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "trim", events[0].RuleName)
	assert.Equal(t, []string{"name", "email"}, events[0].Columns)
	assert.Equal(t, 4, events[3].RowsBefore)
	assert.Equal(t, 3, events[3].RowsAfter)
	for _, ev := range events {
		assert.NoError(t, ev.Err)
	}
}

func TestEngineRuleFailureIsWrapped(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "ok", Operation: "trim_whitespace", Columns: SelectColumns("name"), Order: 1},
		{Name: "boom", Operation: "lowercase", Columns: SelectColumns("age"), Order: 2},
	})
	sink := &MemorySink{}
	eng, err := New(rs, WithSink(sink))
	require.NoError(t, err)

	out, err := eng.Clean(context.Background(), customerFrame(t))
	assert.Nil(t, out)

	var ree *RuleExecutionError
	require.ErrorAs(t, err, &ree)
	assert.Equal(t, "boom", ree.RuleName)
	assert.Equal(t, 1, ree.RuleIndex)

	var tme *TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.Equal(t, "age", tme.Column)

	// the failing rule still produced an event
	events := sink.Events()
	require.Len(t, events, 2)
	assert.Error(t, events[1].Err)
	assert.Equal(t, events[1].RowsBefore, events[1].RowsAfter)
}

func TestEngineUnknownColumnFails(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "trim_whitespace", Columns: SelectColumns("nope"), Order: 1},
	})
	eng, err := New(rs)
	require.NoError(t, err)

	_, err = eng.Clean(context.Background(), customerFrame(t))
	var uce *UnknownColumnError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "nope", uce.Column)
}

func TestEngineDisabledRuleSkipped(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "off", Operation: "drop_nulls", Columns: SelectAll(), Order: 1, Disabled: true},
	})
	sink := &MemorySink{}
	eng, err := New(rs, WithSink(sink))
	require.NoError(t, err)

	in := customerFrame(t)
	out, err := eng.Clean(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Rows(), out.Rows())
	assert.Empty(t, sink.Events())
}

func TestEngineRejectsUnknownOperation(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "transmogrify", Order: 1},
	})
	_, err := New(rs)
	var uoe *UnknownOperationError
	require.ErrorAs(t, err, &uoe)
	assert.Equal(t, "transmogrify", uoe.Operation)
}

func TestEngineRejectsBadParamsAtBuild(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "fill_nulls", Parameters: Params{"strategy": "mode"}, Order: 1},
	})
	_, err := New(rs)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestEngineWarningsReachSink(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "scale", Operation: "standardize", Columns: SelectColumns("x"), Order: 1},
	})
	sink := &MemorySink{}
	eng, err := New(rs, WithSink(sink))
	require.NoError(t, err)

	f := makeFrame(t, []ColumnSchema{floatCol("x")}, [][]any{{1.0}, {1.0}})
	_, err = eng.Clean(context.Background(), f)
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Warnings, 1)
	assert.Equal(t, "ZeroVariance", events[0].Warnings[0].Code)
}

func TestEngineOutputContractFailure(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "noop", Operation: "trim_whitespace", Columns: SelectColumns("name"), Order: 1},
	})
	hi := 40.0
	eng, err := New(rs, WithOutputContract(&Contract{Columns: map[string]ColumnContract{
		"age": {Dtype: "int", Nullable: true, Max: &hi},
	}}))
	require.NoError(t, err)

	_, err = eng.Clean(context.Background(), customerFrame(t))
	var cve *ContractViolationError
	require.ErrorAs(t, err, &cve)
	assert.Equal(t, "output", cve.Phase)
	assert.Equal(t, "age", cve.Violations[0].Column)
}

func TestEngineInputContractCoercion(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "drop minors", Operation: "filter", Columns: SelectColumns("age"),
			Parameters: Params{"operator": "gte", "value": 18}, Order: 1},
	})
	eng, err := New(rs, WithInputContract(&Contract{Coerce: true, Columns: map[string]ColumnContract{
		"age": {Dtype: "int", Nullable: true},
	}}))
	require.NoError(t, err)

	f := makeFrame(t, []ColumnSchema{stringCol("age")}, [][]any{
		{"15"}, {"40"},
	})
	out, err := eng.Clean(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(40)}, cells(t, out, "age"))
}

func TestEngineSchemaTrackedAcrossRules(t *testing.T) {
	// cast retypes a string column; the later numeric rule must see it
	rs := mustRules(t, []Rule{
		{Name: "to int", Operation: "cast_type", Columns: SelectColumns("n"), Parameters: Params{"dtype": "int"}, Order: 1},
		{Name: "scale", Operation: "standardize", Columns: SelectColumns("n"), Order: 2},
	})
	eng, err := New(rs)
	require.NoError(t, err)

	f := makeFrame(t, []ColumnSchema{stringCol("n")}, [][]any{
		{"1"}, {"2"}, {"3"},
	})
	out, err := eng.Clean(context.Background(), f)
	require.NoError(t, err)
	col, _ := out.ColumnByName("n")
	assert.Equal(t, KindFloat, col.Kind())
}

func TestEngineCustomOperation(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "redact", Operation: "redact", Columns: SelectColumns("email"), Order: 1},
	})
	reg := NewRegistry()
	reg.RegisterFunc("redact", func(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
		return mapStrings(f, cols, func(string) string { return "***" })
	})
	eng, err := New(rs, WithRegistry(reg))
	require.NoError(t, err)

	out, err := eng.Clean(context.Background(), customerFrame(t))
	require.NoError(t, err)
	assert.Equal(t, []any{"***", "***", "***", "***"}, cells(t, out, "email"))
}

func TestEngineRegistryIsolation(t *testing.T) {
	reg := NewRegistry()
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "trim_whitespace", Columns: SelectColumns("name"), Order: 1},
	})
	eng, err := New(rs, WithRegistry(reg))
	require.NoError(t, err)

	// mutating the source registry after construction must not reach the engine
	reg.RegisterFunc("trim_whitespace", func(_ context.Context, f *Frame, _ []string, _ Params) (*Frame, []Warning, error) {
		return nil, nil, errors.New("hijacked")
	})
	_, err = eng.Clean(context.Background(), customerFrame(t))
	assert.NoError(t, err)
}

func TestEngineOverrideBuiltin(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "lowercase", Columns: SelectColumns("name"), Order: 1},
	})
	eng, err := New(rs)
	require.NoError(t, err)
	eng.Register("lowercase", OperationFunc(func(_ context.Context, f *Frame, cols []string, _ Params) (*Frame, []Warning, error) {
		return mapStrings(f, cols, func(string) string { return "overridden" })
	}))

	out, err := eng.Clean(context.Background(), customerFrame(t))
	require.NoError(t, err)
	assert.Equal(t, "overridden", cells(t, out, "name")[0])
}

type memStore struct {
	tables map[string]*Frame
}

func (m *memStore) Load(_ context.Context, name string) (*Frame, error) {
	f, ok := m.tables[name]
	if !ok {
		return nil, errors.Newf("no table %q", name)
	}
	return f, nil
}

func (m *memStore) Save(_ context.Context, name string, f *Frame) error {
	m.tables[name] = f
	return nil
}

func TestEngineCleanFromStorage(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "trim", Operation: "trim_whitespace", Columns: SelectColumns("name"), Order: 1},
	})
	st := &memStore{tables: map[string]*Frame{"raw": customerFrame(t)}}
	eng, err := New(rs, WithStore(st))
	require.NoError(t, err)

	out, err := eng.CleanFromStorage(context.Background(), "raw", "clean")
	require.NoError(t, err)
	assert.Equal(t, "Ada", cells(t, out, "name")[0])
	require.Contains(t, st.tables, "clean")
	assert.Equal(t, out, st.tables["clean"])
}

func TestEngineCleanFromStorageNoStore(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "r", Operation: "drop_nulls", Order: 1},
	})
	eng, err := New(rs)
	require.NoError(t, err)
	_, err = eng.CleanFromStorage(context.Background(), "raw", "")
	assert.Error(t, err)
}

func TestEngineCleanFromStorageSkipsSaveOnFailure(t *testing.T) {
	rs := mustRules(t, []Rule{
		{Name: "boom", Operation: "lowercase", Columns: SelectColumns("age"), Order: 1},
	})
	st := &memStore{tables: map[string]*Frame{"raw": customerFrame(t)}}
	eng, err := New(rs, WithStore(st))
	require.NoError(t, err)

	_, err = eng.CleanFromStorage(context.Background(), "raw", "clean")
	require.Error(t, err)
	assert.NotContains(t, st.tables, "clean")
}

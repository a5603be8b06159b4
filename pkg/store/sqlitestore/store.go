// Package sqlitestore persists frames as named SQLite tables. It backs the
// engine's CleanFromStorage entry point.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/wdm0006/scrub/pkg/scrub"
)

// SaveMode controls behavior when the destination table already exists.
type SaveMode string

const (
	Replace SaveMode = "replace"
	Append  SaveMode = "append"
	Fail    SaveMode = "fail"
)

// metaTable records each stored table's logical column kinds, so bool and
// time columns survive a round trip through SQLite's coarser type system.
const metaTable = "scrub_schema"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite-backed scrub.Store. Use ":memory:" for an ephemeral
// database.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// Open opens (or creates) the database at path. A nil logger is fine.
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "exec %s", pragma)
		}
	}
	if _, err := db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (table_name TEXT, column_name TEXT, position INTEGER, kind TEXT,
		 PRIMARY KEY (table_name, column_name))`, metaTable)); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema table")
	}
	log.Debugw("sqlite store opened", "path", path)
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores f under name with Replace semantics, satisfying scrub.Store.
func (s *Store) Save(ctx context.Context, name string, f *scrub.Frame) error {
	return s.SaveMode(ctx, name, f, Replace)
}

// SaveMode stores f under name. Replace drops any existing table, Append
// inserts into it, Fail errors if it exists.
func (s *Store) SaveMode(ctx context.Context, name string, f *scrub.Frame, mode SaveMode) error {
	if !identRe.MatchString(name) {
		return errors.Newf("invalid table name %q", name)
	}
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return err
	}
	switch mode {
	case Fail:
		if exists {
			return errors.Newf("table %q already exists", name)
		}
	case Replace:
		if exists {
			if _, err := s.db.ExecContext(ctx, `DROP TABLE "`+name+`"`); err != nil {
				return errors.Wrapf(err, "drop %q", name)
			}
			exists = false
		}
	case Append:
	default:
		return errors.Newf("unknown save mode %q", mode)
	}

	schema := f.Schema()
	if !exists {
		if _, err := s.db.ExecContext(ctx, createTableSQL(name, schema)); err != nil {
			return errors.Wrapf(err, "create %q", name)
		}
	}
	if err := s.writeMeta(ctx, name, schema); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin insert")
	}
	defer func() { _ = tx.Rollback() }()

	cols := schema.Names()
	quoted := make([]string, len(cols))
	holes := make([]string, len(cols))
	for i, c := range cols {
		if !identRe.MatchString(c) {
			return errors.Newf("invalid column name %q", c)
		}
		quoted[i] = `"` + c + `"`
		holes[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO "%s" (%s) VALUES (%s)`, name, strings.Join(quoted, ", "), strings.Join(holes, ", ")))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(cols))
	for r := 0; r < f.Rows(); r++ {
		for i, c := range cols {
			col, _ := f.ColumnByName(c)
			args[i] = sqlValue(col, r)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "insert row %d", r)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit insert")
	}
	s.log.Debugw("table saved", "table", name, "rows", f.Rows(), "mode", mode)
	return nil
}

// Load reads the whole table, satisfying scrub.Store.
func (s *Store) Load(ctx context.Context, name string) (*scrub.Frame, error) {
	return s.LoadLimit(ctx, name, 0)
}

// LoadLimit reads at most limit rows (0 = all).
func (s *Store) LoadLimit(ctx context.Context, name string, limit int) (*scrub.Frame, error) {
	if !identRe.MatchString(name) {
		return nil, errors.Newf("invalid table name %q", name)
	}
	schema, err := s.readMeta(ctx, name)
	if err != nil {
		return nil, err
	}
	query := `SELECT * FROM "` + name + `"`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "select %q", name)
	}
	defer func() { _ = rows.Close() }()

	f := scrub.NewFrame(schema)
	dest := make([]any, len(schema.Columns))
	for i := range dest {
		dest[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		f.AppendNullRow()
		r := f.Rows() - 1
		for i, cs := range schema.Columns {
			raw := *(dest[i].(*any))
			if raw == nil {
				continue
			}
			if err := f.SetCell(r, cs.Name, frameValue(raw, cs.Type)); err != nil {
				return nil, errors.Wrapf(err, "column %q", cs.Name)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}
	return f, nil
}

// ListTables reports the stored table names, excluding internals.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name != ? AND name NOT LIKE 'sqlite_%' ORDER BY name`,
		metaTable)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "check table")
	}
	return n > 0, nil
}

func (s *Store) writeMeta(ctx context.Context, name string, schema scrub.Schema) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin meta")
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE table_name = ?`, metaTable), name); err != nil {
		return errors.Wrap(err, "clear meta")
	}
	for i, cs := range schema.Columns {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (table_name, column_name, position, kind) VALUES (?, ?, ?, ?)`, metaTable),
			name, cs.Name, i, cs.Type.String()); err != nil {
			return errors.Wrap(err, "write meta")
		}
	}
	return tx.Commit()
}

func (s *Store) readMeta(ctx context.Context, name string) (scrub.Schema, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT column_name, kind FROM %s WHERE table_name = ? ORDER BY position`, metaTable), name)
	if err != nil {
		return scrub.Schema{}, errors.Wrap(err, "read meta")
	}
	defer func() { _ = rows.Close() }()
	var schema scrub.Schema
	for rows.Next() {
		var col, kindName string
		if err := rows.Scan(&col, &kindName); err != nil {
			return scrub.Schema{}, err
		}
		kind, err := scrub.ParseKind(kindName)
		if err != nil {
			return scrub.Schema{}, errors.Wrapf(err, "column %q", col)
		}
		schema.Columns = append(schema.Columns, scrub.ColumnSchema{Name: col, Type: kind, Nullable: true})
	}
	if err := rows.Err(); err != nil {
		return scrub.Schema{}, err
	}
	if len(schema.Columns) == 0 {
		return scrub.Schema{}, errors.Newf("table %q not found", name)
	}
	return schema, nil
}

func createTableSQL(name string, schema scrub.Schema) string {
	defs := make([]string, len(schema.Columns))
	for i, cs := range schema.Columns {
		defs[i] = fmt.Sprintf(`"%s" %s`, cs.Name, sqliteType(cs.Type))
	}
	return fmt.Sprintf(`CREATE TABLE "%s" (%s)`, name, strings.Join(defs, ", "))
}

func sqliteType(k scrub.Kind) string {
	switch k {
	case scrub.KindInt, scrub.KindBool:
		return "INTEGER"
	case scrub.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqlValue converts one cell to its SQLite representation: bool → 0/1,
// time → RFC3339 text, null → nil.
func sqlValue(col scrub.Column, row int) any {
	v, ok := col.Value(row)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// frameValue converts a scanned SQLite value back to the frame's logical
// kind.
func frameValue(raw any, kind scrub.Kind) any {
	switch kind {
	case scrub.KindBool:
		switch t := raw.(type) {
		case int64:
			return t != 0
		case bool:
			return t
		}
	case scrub.KindTime:
		switch t := raw.(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts
			}
		case time.Time:
			return t
		}
	case scrub.KindString:
		switch t := raw.(type) {
		case string:
			return t
		case []byte:
			return string(t)
		}
	case scrub.KindInt:
		if t, ok := raw.(int64); ok {
			return t
		}
	case scrub.KindFloat:
		switch t := raw.(type) {
		case float64:
			return t
		case int64:
			return float64(t)
		}
	}
	return raw
}

// Package store persists templates and lookup tables in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formbuilder/components/lookups"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// ErrNotFound is returned when a template id does not exist.
var ErrNotFound = errors.New("store: template not found")

const driverName = "sqlite"

// DefaultDSN keeps the database next to the working directory.
const DefaultDSN = "file:formbuilder.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

const migration = `
CREATE TABLE IF NOT EXISTS templates (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	schema TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at);

CREATE TABLE IF NOT EXISTS lookup_options (
	table_name TEXT NOT NULL,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	label TEXT NOT NULL,
	PRIMARY KEY (table_name, value)
);
CREATE INDEX IF NOT EXISTS idx_lookup_options_table ON lookup_options(table_name, position);
`

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("store")
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid generation for new templates.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store implements builder.Persister and lookups.Provider.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

var (
	_ builder.Persister = (*Store)(nil)
	_ lookups.Provider  = (*Store)(nil)
)

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY and keeps
	// in-memory databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if _, err := db.ExecContext(ctx, migration); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTemplate inserts tpl, or replaces the stored copy when tpl.ID already
// exists. CreatedAt is kept across updates.
func (s *Store) SaveTemplate(ctx context.Context, tpl builder.Template) (builder.Template, error) {
	raw, err := schema.Marshal(tpl.Schema)
	if err != nil {
		return builder.Template{}, fmt.Errorf("store: encode schema: %w", err)
	}

	now := s.now().UTC()
	if tpl.ID == "" {
		tpl.ID = s.newID()
	}
	tpl.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return builder.Template{}, fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var created string
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM templates WHERE id = ?`, tpl.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		tpl.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO templates (id, title, schema, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			tpl.ID, tpl.Title, string(raw), formatTime(tpl.CreatedAt), formatTime(tpl.UpdatedAt))
	case err != nil:
		return builder.Template{}, fmt.Errorf("store: lookup template %s: %w", tpl.ID, err)
	default:
		if tpl.CreatedAt, err = parseTime(created); err != nil {
			return builder.Template{}, err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE templates SET title = ?, schema = ?, updated_at = ? WHERE id = ?`,
			tpl.Title, string(raw), formatTime(tpl.UpdatedAt), tpl.ID)
	}
	if err != nil {
		return builder.Template{}, fmt.Errorf("store: write template %s: %w", tpl.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return builder.Template{}, fmt.Errorf("store: commit: %w", err)
	}

	s.logger.Debug("template saved",
		zap.String("id", tpl.ID),
		zap.String("title", tpl.Title),
		zap.Int("fields", tpl.Schema.FieldCount()),
	)
	return tpl, nil
}

// GetTemplate loads one template.
func (s *Store) GetTemplate(ctx context.Context, id string) (builder.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, schema, created_at, updated_at FROM templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return builder.Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return builder.Template{}, fmt.Errorf("store: get template %s: %w", id, err)
	}
	return tpl, nil
}

// ListTemplates returns every template, most recently updated first.
func (s *Store) ListTemplates(ctx context.Context) ([]builder.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, schema, created_at, updated_at FROM templates ORDER BY updated_at DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	defer rows.Close()

	out := []builder.Template{}
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list templates: %w", err)
		}
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	return out, nil
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete template %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete template %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.logger.Debug("template deleted", zap.String("id", id))
	return nil
}

// ReplaceLookup swaps the rows of a lookup table.
func (s *Store) ReplaceLookup(ctx context.Context, table string, rows []lookups.Option) error {
	table = strings.TrimSpace(table)
	if table == "" {
		return errors.New("store: lookup table name is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lookup_options WHERE table_name = ?`, table); err != nil {
		return fmt.Errorf("store: clear lookup %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO lookup_options (table_name, position, value, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare lookup insert: %w", err)
	}
	defer stmt.Close()
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, table, i, row.Value, row.Label); err != nil {
			return fmt.Errorf("store: insert lookup %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	s.logger.Debug("lookup replaced", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

// SearchLookup ranks the rows of table against query. Tables without rows
// are unknown.
func (s *Store) SearchLookup(ctx context.Context, table, query string, limit int) ([]lookups.Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value, label FROM lookup_options WHERE table_name = ? ORDER BY position`, table)
	if err != nil {
		return nil, fmt.Errorf("store: search lookup %s: %w", table, err)
	}
	defer rows.Close()

	var options []lookups.Option
	for rows.Next() {
		var opt lookups.Option
		if err := rows.Scan(&opt.Value, &opt.Label); err != nil {
			return nil, fmt.Errorf("store: search lookup %s: %w", table, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: search lookup %s: %w", table, err)
	}
	if len(options) == 0 {
		return nil, lookups.ErrUnknownTable
	}
	return lookups.Rank(options, query, limit), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (builder.Template, error) {
	var (
		tpl              builder.Template
		raw              string
		created, updated string
	)
	if err := row.Scan(&tpl.ID, &tpl.Title, &raw, &created, &updated); err != nil {
		return builder.Template{}, err
	}
	parsed, err := schema.Parse([]byte(raw))
	if err != nil {
		return builder.Template{}, err
	}
	tpl.Schema = parsed
	if tpl.CreatedAt, err = parseTime(created); err != nil {
		return builder.Template{}, err
	}
	if tpl.UpdatedAt, err = parseTime(updated); err != nil {
		return builder.Template{}, err
	}
	return tpl, nil
}

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

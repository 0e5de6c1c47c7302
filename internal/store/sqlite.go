// Package store persists reconciled commands in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dotdex/dotdex/internal/domain"
)

// migrations are applied in sequence at open time. The entry index plus one
// is the schema version recorded in the meta table.
var migrations = []string{
	`CREATE TABLE commands (
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		source_path TEXT NOT NULL,
		code        TEXT NOT NULL DEFAULT '',
		line        INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		hidden      INTEGER NOT NULL DEFAULT 0,
		desc_custom INTEGER NOT NULL DEFAULT 0,
		cat_custom  INTEGER NOT NULL DEFAULT 0,
		removed     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (name, kind, source_path)
	);
	CREATE INDEX idx_commands_name ON commands(name);
	CREATE INDEX idx_commands_category ON commands(category);`,
}

// Store is the sole persistence layer for commands. During indexing only the
// reconciler writes to it, and only through Apply.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	version := 0
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		if _, err := fmt.Sscanf(raw, "%d", &version); err != nil {
			return fmt.Errorf("corrupt schema version %q: %w", raw, err)
		}
	}

	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			fmt.Sprintf("%d", i+1),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

const commandColumns = `name, kind, source_path, code, line, description, category, hidden, desc_custom, cat_custom, removed`

func scanCommand(rows *sql.Rows) (domain.Command, error) {
	var c domain.Command
	var kind string
	err := rows.Scan(&c.Name, &kind, &c.SourcePath, &c.Code, &c.Line,
		&c.Description, &c.Category, &c.Hidden, &c.DescriptionIsCustom, &c.CategoryIsCustom, &c.Removed)
	c.Kind = domain.CommandKind(kind)
	return c, err
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]domain.Command, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []domain.Command
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// All returns every persisted command, tombstones included, ordered by
// identity key.
func (s *Store) All(ctx context.Context) ([]domain.Command, error) {
	return s.query(ctx, `SELECT `+commandColumns+` FROM commands ORDER BY name, kind, source_path`)
}

// List returns commands for display: tombstones are always excluded, hidden
// commands only with includeHidden, and category filters when non-empty.
func (s *Store) List(ctx context.Context, category string, includeHidden bool) ([]domain.Command, error) {
	q := `SELECT ` + commandColumns + ` FROM commands WHERE removed = 0`
	var args []any
	if !includeHidden {
		q += ` AND hidden = 0`
	}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY category, name, kind, source_path`
	return s.query(ctx, q, args...)
}

// FindByName returns all live commands with the given name.
func (s *Store) FindByName(ctx context.Context, name string) ([]domain.Command, error) {
	return s.query(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE name = ? AND removed = 0 ORDER BY kind, source_path`,
		name)
}

// SetHidden flips the user-set hidden flag for every live command with the
// given name. Returns the number of affected rows.
func (s *Store) SetHidden(ctx context.Context, name string, hidden bool) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE commands SET hidden = ? WHERE name = ? AND removed = 0`, hidden, name)
	if err != nil {
		return 0, fmt.Errorf("failed to update hidden flag for %q: %w", name, err)
	}
	return res.RowsAffected()
}

// Annotate records user overrides. A non-nil description or category is
// written together with its custom flag so reindexing preserves it.
func (s *Store) Annotate(ctx context.Context, name string, description, category *string) (int64, error) {
	if description == nil && category == nil {
		return 0, nil
	}

	q := `UPDATE commands SET `
	var sets []string
	var args []any
	if description != nil {
		sets = append(sets, `description = ?, desc_custom = 1`)
		args = append(args, *description)
	}
	if category != nil {
		sets = append(sets, `category = ?, cat_custom = 1`)
		args = append(args, *category)
	}
	for i, set := range sets {
		if i > 0 {
			q += ", "
		}
		q += set
	}
	q += ` WHERE name = ? AND removed = 0`
	args = append(args, name)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to annotate %q: %w", name, err)
	}
	return res.RowsAffected()
}

// Batch is one reconciliation result to be applied atomically.
type Batch struct {
	Insert    []domain.Command
	Update    []domain.Command
	Delete    []domain.Key
	Tombstone []domain.Key
}

// Empty reports whether applying the batch would be a no-op.
func (b Batch) Empty() bool {
	return len(b.Insert) == 0 && len(b.Update) == 0 && len(b.Delete) == 0 && len(b.Tombstone) == 0
}

// Apply executes the whole batch in a single transaction. Any failure rolls
// everything back, leaving the prior state intact.
func (s *Store) Apply(ctx context.Context, b Batch) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range b.Insert {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO commands (`+commandColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			c.Name, string(c.Kind), c.SourcePath, c.Code, c.Line,
			c.Description, c.Category, c.Hidden, c.DescriptionIsCustom, c.CategoryIsCustom, c.Removed,
		); err != nil {
			return fmt.Errorf("insert %s: %w", c.Key(), err)
		}
	}

	for _, c := range b.Update {
		if _, err = tx.ExecContext(ctx,
			`UPDATE commands SET code = ?, line = ?, description = ?, category = ?,
				desc_custom = ?, cat_custom = ?, removed = ?
			 WHERE name = ? AND kind = ? AND source_path = ?`,
			c.Code, c.Line, c.Description, c.Category,
			c.DescriptionIsCustom, c.CategoryIsCustom, c.Removed,
			c.Name, string(c.Kind), c.SourcePath,
		); err != nil {
			return fmt.Errorf("update %s: %w", c.Key(), err)
		}
	}

	for _, k := range b.Delete {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM commands WHERE name = ? AND kind = ? AND source_path = ?`,
			k.Name, string(k.Kind), k.SourcePath,
		); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}

	for _, k := range b.Tombstone {
		if _, err = tx.ExecContext(ctx,
			`UPDATE commands SET removed = 1 WHERE name = ? AND kind = ? AND source_path = ?`,
			k.Name, string(k.Kind), k.SourcePath,
		); err != nil {
			return fmt.Errorf("tombstone %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reconcile transaction: %w", err)
	}
	return nil
}

// Wipe removes every row. Used by index --rebuild; customizations do not
// survive a rebuild.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM commands`); err != nil {
		return fmt.Errorf("failed to wipe commands: %w", err)
	}
	return nil
}

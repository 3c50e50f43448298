package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores datasets in long form in a SQLite database. Storing a dataset
// replaces any earlier copy of the same project, version and tag.
type SQLiteSink struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteSink{conn: conn, path: path}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize dataset schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS features (
			project TEXT NOT NULL,
			version TEXT NOT NULL,
			type TEXT NOT NULL,
			entity TEXT NOT NULL,
			feature TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (project, version, type, entity, feature)
		);
		CREATE INDEX IF NOT EXISTS idx_features_version ON features(project, version);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Store implements Sink. Each dataset is written in its own transaction.
func (s *SQLiteSink) Store(ctx context.Context, sets ...*Dataset) error {
	for _, d := range sets {
		if err := s.storeOne(ctx, d); err != nil {
			return fmt.Errorf("failed to store %s/%s/%s: %w", d.Project(), d.Version(), d.Type(), err)
		}
	}
	return nil
}

func (s *SQLiteSink) storeOne(ctx context.Context, d *Dataset) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM features WHERE project = ? AND version = ? AND type = ?`,
		d.Project(), d.Version(), string(d.Type()),
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO features (project, version, type, entity, feature, kind, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	cols := d.Columns()
	for _, id := range d.IDs() {
		for _, c := range cols {
			v, ok := d.Value(id, c.Name)
			if !ok {
				continue
			}
			if _, err := stmt.ExecContext(ctx,
				d.Project(), d.Version(), string(d.Type()),
				id.String(), c.Name, v.Kind().String(), v.String(),
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Count returns the number of stored cells for a project version.
func (s *SQLiteSink) Count(ctx context.Context, project, version string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM features WHERE project = ? AND version = ?`,
		project, version,
	).Scan(&n)
	return n, err
}

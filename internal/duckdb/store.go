// Package duckdb persists per-site dataset summaries in a DuckDB database
// so loaded datasets can be explored with plain SQL.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding site summaries.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS site_summary (
		site BIGINT,
		distance DOUBLE,
		mean_hom_ref DOUBLE,
		mean_het DOUBLE,
		mean_hom_alt DOUBLE,
		n_missing INTEGER,
		PRIMARY KEY (site)
	)`)
	return err
}

// Package query exposes an analysis run's table_access_info.json through
// a structured, parameterized query interface, rather than requiring
// downstream tooling to grep the JSON artifact directly. It loads the
// artifact into an in-memory SQLite table and builds lookups with
// Masterminds/squirrel, the same query-construction style the teacher
// uses over its own SQLite-backed storage layer.
package query

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/applycrypto/engine/internal/model"
)

// Store is an in-memory SQLite mirror of one run's table access info.
type Store struct {
	db *sql.DB
}

const schemaDDL = `
CREATE TABLE table_access (
	table_name TEXT NOT NULL,
	column_name TEXT,
	crypto_code TEXT,
	new_column INTEGER,
	layer TEXT NOT NULL,
	file_path TEXT NOT NULL,
	query_type TEXT NOT NULL
);
CREATE INDEX idx_table_access_table ON table_access(table_name);
CREATE INDEX idx_table_access_layer ON table_access(layer);
CREATE INDEX idx_table_access_file ON table_access(file_path);
`

// Open builds an in-memory Store from the given TableAccessInfo records,
// one row per (table, layer, file) triple — with one row per configured
// column when columns are present, so a column-filtered query is a plain
// WHERE clause rather than a JSON-array scan.
func Open(infos []model.TableAccessInfo) (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.load(infos); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenFromArtifact reads table_access_info.json from a run's results
// directory and opens a Store over it.
func OpenFromArtifact(targetProject string) (*Store, error) {
	path := filepath.Join(targetProject, ".applycrypto", "results", "table_access_info.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var infos []model.TableAccessInfo
	if err := json.Unmarshal(raw, &infos); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return Open(infos)
}

func (s *Store) load(infos []model.TableAccessInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO table_access (table_name, column_name, crypto_code, new_column, layer, file_path, query_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, info := range infos {
		for layer, files := range info.LayerFiles {
			for _, f := range files {
				if len(info.Columns) == 0 {
					if _, err := stmt.Exec(info.TableName, nil, nil, nil, string(layer), f, string(info.QueryType)); err != nil {
						tx.Rollback()
						return fmt.Errorf("insert row: %w", err)
					}
					continue
				}
				for _, col := range info.Columns {
					if _, err := stmt.Exec(info.TableName, col.Name, col.CryptoCode, col.NewColumn, string(layer), f, string(info.QueryType)); err != nil {
						tx.Rollback()
						return fmt.Errorf("insert row: %w", err)
					}
				}
			}
		}
	}
	return tx.Commit()
}

// Close releases the in-memory database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Row is one matched (table, column, layer, file) access record.
type Row struct {
	TableName  string
	ColumnName string
	CryptoCode string
	NewColumn  bool
	Layer      string
	FilePath   string
	QueryType  string
}

func (s *Store) run(query squirrel.SelectBuilder) ([]Row, error) {
	rows, err := query.PlaceholderFormat(squirrel.Question).RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var col, code sql.NullString
		var newCol sql.NullBool
		if err := rows.Scan(&r.TableName, &col, &code, &newCol, &r.Layer, &r.FilePath, &r.QueryType); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.ColumnName = col.String
		r.CryptoCode = code.String
		r.NewColumn = newCol.Bool
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) selectAll() squirrel.SelectBuilder {
	return squirrel.Select("table_name", "column_name", "crypto_code", "new_column", "layer", "file_path", "query_type").
		From("table_access")
}

// ByTable returns every row for the given table name.
func (s *Store) ByTable(tableName string) ([]Row, error) {
	return s.run(s.selectAll().Where(squirrel.Eq{"table_name": tableName}).OrderBy("layer", "file_path"))
}

// ByLayer returns every row whose layer matches, across all tables.
func (s *Store) ByLayer(layer string) ([]Row, error) {
	return s.run(s.selectAll().Where(squirrel.Eq{"layer": layer}).OrderBy("table_name", "file_path"))
}

// ByFile returns every table a given file is recorded as accessing.
func (s *Store) ByFile(filePath string) ([]Row, error) {
	return s.run(s.selectAll().Where(squirrel.Eq{"file_path": filePath}).OrderBy("table_name"))
}

// Tables returns the distinct table names present in the store.
func (s *Store) Tables() ([]string, error) {
	rows, err := squirrel.Select("DISTINCT table_name").From("table_access").OrderBy("table_name").
		PlaceholderFormat(squirrel.Question).RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

package io

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/galquench/galquench/catalog"
)

// SQLiteSource reads catalogs distributed as SQLite databases. Tables map
// onto groups and numeric table columns onto 1-D datasets. By convention a
// table named "catalog" holds the datasets of the top level itself, so a
// single-snapshot file is one "catalog" table and a snapshot-split file is
// one "Snapshot_{n}" table per snapshot. NULL cells read as NaN.
type SQLiteSource struct {
	db    *sql.DB
	name  string
	table string // empty at the root
}

const sqliteRootTable = "catalog"

// OpenSQLite opens a SQLite catalog. The caller owns the handle and must
// Close it.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLiteSource{db: db, name: path}, nil
}

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) Name() string {
	if s.table == "" {
		return s.name
	}
	return s.name + ":" + s.table
}

func (s *SQLiteSource) Keys() ([]string, error) {
	if s.table != "" {
		return s.columns(s.table)
	}

	tables, err := s.tables()
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, t := range tables {
		if t == sqliteRootTable {
			cols, err := s.columns(t)
			if err != nil {
				return nil, err
			}
			keys = append(keys, cols...)
			continue
		}
		keys = append(keys, t)
	}
	return keys, nil
}

func (s *SQLiteSource) IsGroup(key string) (bool, error) {
	if s.table == "" {
		tables, err := s.tables()
		if err != nil {
			return false, err
		}
		if contains(tables, key) && key != sqliteRootTable {
			return true, nil
		}
	}
	keys, err := s.Keys()
	if err != nil {
		return false, err
	}
	if !contains(keys, key) {
		return false, fmt.Errorf("no key `%s` in `%s`", key, s.Name())
	}
	return false, nil
}

func (s *SQLiteSource) Group(key string) (Source, error) {
	isGroup, err := s.IsGroup(key)
	if err != nil {
		return nil, err
	}
	if !isGroup {
		return nil, fmt.Errorf(
			"key `%s` in `%s` is a dataset, not a group", key, s.Name(),
		)
	}
	return &SQLiteSource{db: s.db, name: s.name, table: key}, nil
}

func (s *SQLiteSource) Dataset(key string) (*catalog.Column, error) {
	table := s.table
	if table == "" {
		isGroup, err := s.IsGroup(key)
		if err != nil {
			return nil, err
		}
		if isGroup {
			return nil, fmt.Errorf(
				"key `%s` in `%s` is a group, not a dataset", key, s.Name(),
			)
		}
		table = sqliteRootTable
	} else {
		keys, err := s.Keys()
		if err != nil {
			return nil, err
		}
		if !contains(keys, key) {
			return nil, fmt.Errorf("no dataset `%s` in `%s`", key, s.Name())
		}
	}

	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT %q FROM %q ORDER BY rowid", key, table,
	))
	if err != nil {
		return nil, fmt.Errorf("read `%s` from `%s`: %w", key, s.Name(), err)
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf(
				"read `%s` from `%s`: %w", key, s.Name(), err,
			)
		}
		if v.Valid {
			vals = append(vals, v.Float64)
		} else {
			vals = append(vals, math.NaN())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read `%s` from `%s`: %w", key, s.Name(), err)
	}
	return catalog.NewColumn(vals), nil
}

func (s *SQLiteSource) tables() ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list tables of `%s`: %w", s.name, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("list tables of `%s`: %w", s.name, err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (s *SQLiteSource) columns(table string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %q LIMIT 0", table))
	if err != nil {
		return nil, fmt.Errorf("list columns of `%s`: %w", s.Name(), err)
	}
	defer rows.Close()
	return rows.Columns()
}

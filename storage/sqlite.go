package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig
	*sqlStorage
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	types: map[columnType]string{
		typeText:  "TEXT",
		typeInt:   "INTEGER",
		typeFloat: "REAL",
	},
	timestampType: "TIMESTAMP",
	bulkInsert:    sqliteInsert,
}

// Creates SQLite storage. By default the database lives in memory
// and is lost on Close.
func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	config := SQLiteConfig{}
	if len(cfg) > 0 {
		config = cfg[0]
	}

	sourceName := ":memory:"
	if config.OnDisk {
		sourceName = filepath.Join(config.Directory, "gtfs.db")
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a database of its own.
	if !config.OnDisk {
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStorage{
		SQLiteConfig: config,
		sqlStorage: &sqlStorage{
			db:      db,
			dialect: sqliteDialect,
		},
	}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Inserts through a single prepared statement within the
// transaction.
func sqliteInsert(tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		placeholders,
	))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}

	return nil
}

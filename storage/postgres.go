package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PSQLStorage struct {
	*sqlStorage
}

var psqlDialect = dialect{
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	types: map[columnType]string{
		typeText:  "TEXT",
		typeInt:   "BIGINT",
		typeFloat: "DOUBLE PRECISION",
	},
	timestampType: "TIMESTAMPTZ",
	bulkInsert:    psqlCopy,
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		tables := append([]string{"feed", "feed_tables"}, recordTableNames()...)
		_, err = db.Exec("DROP TABLE IF EXISTS " + strings.Join(tables, ", "))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	s := &PSQLStorage{
		sqlStorage: &sqlStorage{
			db:      db,
			dialect: psqlDialect,
		},
	}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Streams rows with COPY FROM STDIN.
func psqlCopy(tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("COPY %s: %w", table, err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}

	return nil
}

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"tidbyt.dev/gtfsview/model"
)

// The differences between the SQL backends.
type dialect struct {
	// Placeholder for the i:th (1-based) parameter.
	placeholder func(i int) string

	types map[columnType]string

	timestampType string

	// Inserts rows into table within tx.
	bulkInsert func(tx *sql.Tx, table string, columns []string, rows [][]any) error
}

// Storage on top of a database/sql connection. The dialect covers
// what differs between SQLite and Postgres.
type sqlStorage struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlStorage) placeholders(from int, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = s.dialect.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

func (s *sqlStorage) createTables() error {
	_, err := s.db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS feed (
    hash TEXT NOT NULL,
    url TEXT NOT NULL,
    retrieved_at %s NOT NULL,
    timezone TEXT NOT NULL,
    calendar_start TEXT NOT NULL,
    calendar_end TEXT NOT NULL,
    PRIMARY KEY (hash, url)
);`, s.dialect.timestampType))
	if err != nil {
		return fmt.Errorf("creating feed table: %w", err)
	}

	_, err = s.db.Exec(`
CREATE TABLE IF NOT EXISTS feed_tables (
    hash TEXT NOT NULL,
    nil_tables TEXT NOT NULL,
    PRIMARY KEY (hash)
);`)
	if err != nil {
		return fmt.Errorf("creating feed_tables table: %w", err)
	}

	for _, t := range recordTables {
		defs := []string{"hash TEXT NOT NULL", "record_index INTEGER NOT NULL"}
		for _, c := range t.columns {
			def := c.name + " " + s.dialect.types[c.typ]
			if !c.nullable {
				def += " NOT NULL"
			}
			defs = append(defs, def)
		}
		defs = append(defs, "PRIMARY KEY (hash, record_index)")

		_, err := s.db.Exec(fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (\n    %s\n);",
			t.name,
			strings.Join(defs, ",\n    "),
		))
		if err != nil {
			return fmt.Errorf("creating %s table: %w", t.name, err)
		}
	}

	return nil
}

func (s *sqlStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing db: %w", err)
	}
	return nil
}

func (s *sqlStorage) ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error) {
	query := `
SELECT
    hash,
    url,
    retrieved_at,
    timezone,
    calendar_start,
    calendar_end
FROM feed`

	conditions := []string{}
	params := []any{}
	if filter.URL != "" {
		params = append(params, filter.URL)
		conditions = append(conditions, "url = "+s.dialect.placeholder(len(params)))
	}
	if filter.Hash != "" {
		params = append(params, filter.Hash)
		conditions = append(conditions, "hash = "+s.dialect.placeholder(len(params)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY retrieved_at DESC"

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("listing feeds: %w", err)
	}
	defer rows.Close()

	feeds := []*FeedMetadata{}
	for rows.Next() {
		var feed FeedMetadata
		err := rows.Scan(
			&feed.Hash,
			&feed.URL,
			&feed.RetrievedAt,
			&feed.Timezone,
			&feed.CalendarStartDate,
			&feed.CalendarEndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feed.RetrievedAt = feed.RetrievedAt.UTC()
		feeds = append(feeds, &feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing feeds: %w", err)
	}

	return feeds, nil
}

func (s *sqlStorage) WriteFeedMetadata(feed *FeedMetadata) error {
	_, err := s.db.Exec(fmt.Sprintf(`
INSERT INTO feed (
    hash,
    url,
    retrieved_at,
    timezone,
    calendar_start,
    calendar_end
)
VALUES (%s)
ON CONFLICT (hash, url) DO UPDATE SET
    retrieved_at = excluded.retrieved_at,
    timezone = excluded.timezone,
    calendar_start = excluded.calendar_start,
    calendar_end = excluded.calendar_end
`, s.placeholders(1, 6)),
		feed.Hash,
		feed.URL,
		feed.RetrievedAt.UTC(),
		feed.Timezone,
		feed.CalendarStartDate,
		feed.CalendarEndDate,
	)
	if err != nil {
		return fmt.Errorf("writing feed metadata: %w", err)
	}
	return nil
}

func (s *sqlStorage) DeleteFeedMetadata(url string, hash string) error {
	_, err := s.db.Exec(fmt.Sprintf(
		"DELETE FROM feed WHERE url = %s AND hash = %s",
		s.dialect.placeholder(1),
		s.dialect.placeholder(2),
	), url, hash)
	if err != nil {
		return fmt.Errorf("deleting feed metadata: %w", err)
	}
	return nil
}

func (s *sqlStorage) deleteTables(tx *sql.Tx, hash string) error {
	for _, name := range append([]string{"feed_tables"}, recordTableNames()...) {
		_, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE hash = %s", name, s.dialect.placeholder(1)),
			hash,
		)
		if err != nil {
			return fmt.Errorf("deleting %s records: %w", name, err)
		}
	}
	return nil
}

func recordTableNames() []string {
	names := make([]string, len(recordTables))
	for i, t := range recordTables {
		names[i] = t.name
	}
	return names
}

func (s *sqlStorage) WriteTables(hash string, tables *model.Tables) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteTables(tx, hash); err != nil {
		return err
	}

	nilTables := []string{}
	for _, t := range recordTables {
		if t.isNil(tables) {
			nilTables = append(nilTables, t.name)
		}
	}

	_, err = tx.Exec(
		fmt.Sprintf("INSERT INTO feed_tables (hash, nil_tables) VALUES (%s)", s.placeholders(1, 2)),
		hash,
		strings.Join(nilTables, ","),
	)
	if err != nil {
		return fmt.Errorf("inserting feed: %w", err)
	}

	for _, t := range recordTables {
		columns := []string{"hash", "record_index"}
		for _, c := range t.columns {
			columns = append(columns, c.name)
		}

		records := t.values(tables)
		rows := make([][]any, len(records))
		for i, values := range records {
			rows[i] = append([]any{hash, i}, values...)
		}

		if err := s.dialect.bulkInsert(tx, t.name, columns, rows); err != nil {
			return errors.Wrapf(err, "writing %s", t.name)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

func (s *sqlStorage) ReadTables(hash string) (*model.Tables, error) {
	var nilTables string
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT nil_tables FROM feed_tables WHERE hash = %s", s.dialect.placeholder(1)),
		hash,
	).Scan(&nilTables)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrFeedNotFound, "'%s'", hash)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up feed: %w", err)
	}

	isNil := map[string]bool{}
	for _, name := range strings.Split(nilTables, ",") {
		isNil[name] = true
	}

	tables := emptyTables()
	for _, t := range recordTables {
		if isNil[t.name] {
			t.clear(tables)
			continue
		}
		if err := s.readTable(hash, t, tables); err != nil {
			return nil, errors.Wrapf(err, "reading %s", t.name)
		}
	}

	return tables, nil
}

func (s *sqlStorage) readTable(hash string, t recordTable, tables *model.Tables) error {
	columns := make([]string, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c.name
	}

	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT %s FROM %s WHERE hash = %s ORDER BY record_index",
		strings.Join(columns, ", "),
		t.name,
		s.dialect.placeholder(1),
	), hash)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := t.scan(tables, rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *sqlStorage) DeleteTables(hash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteTables(tx, hash); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Tables with all collections non-nil. Collections that were nil
// when written are cleared after reading.
func emptyTables() *model.Tables {
	return &model.Tables{
		Agencies:      []model.Agency{},
		Stops:         []model.Stop{},
		Routes:        []model.Route{},
		Trips:         []model.Trip{},
		StopTimes:     []model.StopTime{},
		Shapes:        []model.Shape{},
		Calendars:     []model.Calendar{},
		CalendarDates: []model.CalendarDate{},
	}
}

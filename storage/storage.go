package storage

import (
	"errors"
	"time"

	"tidbyt.dev/gtfsview/model"
)

var ErrFeedNotFound = errors.New("feed not found")

// Persists parsed feeds, so they can be reopened without parsing CSV
// again. Feed records are keyed on the hash of the source data;
// metadata records on (URL, hash), since identical data may be served
// from several URLs.
type Storage interface {
	// Retrieves all feed metadata records matching the given
	// filter, most recently retrieved first.
	ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error)

	// Writes a FeedMetadata record. If a record with the same URL
	// and hash exists, it is updated.
	WriteFeedMetadata(metadata *FeedMetadata) error

	DeleteFeedMetadata(url string, hash string) error

	// Stores all records of a feed under hash, replacing any
	// records previously stored there. Either all records are
	// written or none are.
	WriteTables(hash string, tables *model.Tables) error

	// Reads back the records written by WriteTables, in the same
	// order. Fails with ErrFeedNotFound for an unknown hash.
	ReadTables(hash string) (*model.Tables, error)

	// Removes the records stored under hash. Metadata is kept.
	DeleteTables(hash string) error

	Close() error
}

type ListFeedsFilter struct {
	// If set, only include feeds with the given URL.
	URL string

	// If set, only include feeds with the given hash.
	Hash string
}

// Metadata for a parsed static GTFS feed. The records themselves are
// available via ReadTables(Hash).
type FeedMetadata struct {
	URL         string
	Hash        string
	RetrievedAt time.Time
	Timezone    string

	// Date range covered by calendar.txt and calendar_dates.txt,
	// as YYYYMMDD.
	CalendarStartDate string
	CalendarEndDate   string
}

package storage

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"tidbyt.dev/gtfsview/model"
)

type metadataKey struct {
	url  string
	hash string
}

// Keeps everything in memory. Records are copied on the way in and
// out, so callers never share slices with the storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	feeds  map[metadataKey]FeedMetadata
	tables map[string]*model.Tables
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		feeds:  map[metadataKey]FeedMetadata{},
		tables: map[string]*model.Tables{},
	}
}

func (s *MemoryStorage) ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feeds := []*FeedMetadata{}
	for _, feed := range s.feeds {
		if filter.URL != "" && feed.URL != filter.URL {
			continue
		}
		if filter.Hash != "" && feed.Hash != filter.Hash {
			continue
		}
		f := feed
		feeds = append(feeds, &f)
	}

	sort.Slice(feeds, func(i, j int) bool {
		return feeds[i].RetrievedAt.After(feeds[j].RetrievedAt)
	})

	return feeds, nil
}

func (s *MemoryStorage) WriteFeedMetadata(feed *FeedMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := *feed
	f.RetrievedAt = f.RetrievedAt.UTC()
	s.feeds[metadataKey{feed.URL, feed.Hash}] = f
	return nil
}

func (s *MemoryStorage) DeleteFeedMetadata(url string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.feeds, metadataKey{url, hash})
	return nil
}

func (s *MemoryStorage) WriteTables(hash string, tables *model.Tables) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[hash] = copyTables(tables)
	return nil
}

func (s *MemoryStorage) ReadTables(hash string) (*model.Tables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables, found := s.tables[hash]
	if !found {
		return nil, errors.Wrapf(ErrFeedNotFound, "'%s'", hash)
	}
	return copyTables(tables), nil
}

func (s *MemoryStorage) DeleteTables(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables, hash)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// Distances are the only pointers in the records.
func copyTables(t *model.Tables) *model.Tables {
	c := &model.Tables{
		Agencies:      clone(t.Agencies),
		Stops:         clone(t.Stops),
		Routes:        clone(t.Routes),
		Trips:         clone(t.Trips),
		StopTimes:     clone(t.StopTimes),
		Shapes:        clone(t.Shapes),
		Calendars:     clone(t.Calendars),
		CalendarDates: clone(t.CalendarDates),
	}

	for i, st := range c.StopTimes {
		if st.ShapeDistTraveled != nil {
			d := *st.ShapeDistTraveled
			c.StopTimes[i].ShapeDistTraveled = &d
		}
	}

	for i, s := range c.Shapes {
		if s.DistTraveled != nil {
			d := *s.DistTraveled
			c.Shapes[i].DistTraveled = &d
		}
	}

	return c
}

// Copies s, keeping nil apart from empty.
func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

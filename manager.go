package gtfs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tidbyt.dev/gtfsview/downloader"
	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/parse"
	"tidbyt.dev/gtfsview/storage"
)

const (
	DefaultRefreshInterval = 12 * time.Hour
	DefaultStaticTimeout   = 60 * time.Second
	DefaultStaticMaxSize   = 800 << 20 // 800 MB
)

var ErrNoActiveFeed = errors.New("no active feed found")

// Manager downloads feeds, keeps their records in storage and serves
// the most recent one whose calendar covers a given time.
type Manager struct {
	RefreshInterval time.Duration
	StaticTimeout   time.Duration
	StaticMaxSize   int
	Downloader      downloader.Downloader

	// Downloads are served from the Downloader's cache for this
	// long. Zero disables caching.
	DownloadCacheTTL time.Duration

	// Used when assembling feeds read back from storage.
	Options Options

	TimeNow func() time.Time

	storage storage.Storage
}

func NewManager(s storage.Storage, opts Options) *Manager {
	return &Manager{
		RefreshInterval: DefaultRefreshInterval,
		StaticTimeout:   DefaultStaticTimeout,
		StaticMaxSize:   DefaultStaticMaxSize,
		Downloader:      downloader.NewMemory(),
		Options:         opts,
		TimeNow:         time.Now,
		storage:         s,
	}
}

// Refresh downloads the feed at url and stores it, unless an
// identical archive is already in storage.
func (m *Manager) Refresh(ctx context.Context, url string, headers map[string]string) (*storage.FeedMetadata, error) {
	body, err := m.Downloader.Get(ctx, url, headers, downloader.GetOptions{
		Timeout:  m.StaticTimeout,
		MaxSize:  m.StaticMaxSize,
		Cache:    m.DownloadCacheTTL > 0,
		CacheTTL: m.DownloadCacheTTL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "downloading")
	}

	return m.Import(url, body)
}

// Import stores a feed archive as if retrieved from url.
func (m *Manager) Import(url string, body []byte) (*storage.FeedMetadata, error) {
	logger := m.Options.logger().With(zap.String("url", url))
	hash := fmt.Sprintf("%x", sha256.Sum256(body))
	now := m.TimeNow().UTC()

	// The same archive may already be stored, possibly under
	// another URL.
	existing, err := m.storage.ListFeeds(storage.ListFeedsFilter{Hash: hash})
	if err != nil {
		return nil, errors.Wrap(err, "listing feeds")
	}
	if len(existing) > 0 {
		metadata := *existing[0]
		metadata.URL = url
		metadata.RetrievedAt = now
		if err := m.storage.WriteFeedMetadata(&metadata); err != nil {
			return nil, errors.Wrap(err, "writing metadata")
		}
		logger.Info("feed unchanged", zap.String("hash", hash))
		return &metadata, nil
	}

	src, err := parse.Zip(body)
	if err != nil {
		return nil, err
	}
	tables, err := parse.Load(src, m.Options.parseOptions())
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	feed, err := NewFeed(tables, m.Options)
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}

	metadata := &storage.FeedMetadata{
		URL:         url,
		Hash:        hash,
		RetrievedAt: now,
	}
	if len(feed.Agencies) > 0 {
		metadata.Timezone = feed.Agencies[0].Timezone
	}
	if first, last, ok := feed.ServiceDates(); ok {
		metadata.CalendarStartDate = first.String()
		metadata.CalendarEndDate = last.String()
	}

	if err := m.storage.WriteTables(hash, tables); err != nil {
		return nil, errors.Wrap(err, "writing tables")
	}
	if err := m.storage.WriteFeedMetadata(metadata); err != nil {
		return nil, errors.Wrap(err, "writing metadata")
	}

	logger.Info(
		"stored feed",
		zap.String("hash", hash),
		zap.String("calendar_start", metadata.CalendarStartDate),
		zap.String("calendar_end", metadata.CalendarEndDate),
	)

	return metadata, nil
}

// LoadFeed returns the most recently retrieved feed for url that is
// active at when, or ErrNoActiveFeed. Nothing is downloaded.
func (m *Manager) LoadFeed(url string, when time.Time) (*Feed, error) {
	feeds, err := m.storage.ListFeeds(storage.ListFeedsFilter{URL: url})
	if err != nil {
		return nil, errors.Wrap(err, "listing feeds")
	}

	// Most recent first
	for _, metadata := range feeds {
		active, err := feedActive(metadata, when)
		if err != nil {
			return nil, errors.Wrapf(err, "checking feed %s", metadata.Hash)
		}
		if !active {
			continue
		}

		tables, err := m.storage.ReadTables(metadata.Hash)
		if err != nil {
			return nil, errors.Wrapf(err, "reading feed %s", metadata.Hash)
		}
		return NewFeed(tables, m.Options)
	}

	return nil, ErrNoActiveFeed
}

// Load is LoadFeed, refreshing first when url hasn't been retrieved
// within RefreshInterval. A failed refresh is only an error if no
// active feed is stored.
func (m *Manager) Load(ctx context.Context, url string, headers map[string]string, when time.Time) (*Feed, error) {
	feeds, err := m.storage.ListFeeds(storage.ListFeedsFilter{URL: url})
	if err != nil {
		return nil, errors.Wrap(err, "listing feeds")
	}

	if len(feeds) == 0 || feeds[0].RetrievedAt.Add(m.RefreshInterval).Before(m.TimeNow()) {
		if _, err := m.Refresh(ctx, url, headers); err != nil {
			feed, loadErr := m.LoadFeed(url, when)
			if loadErr != nil {
				return nil, err
			}
			m.Options.logger().Warn("refresh failed, serving stored feed", zap.String("url", url), zap.Error(err))
			return feed, nil
		}
	}

	return m.LoadFeed(url, when)
}

func feedActive(feed *storage.FeedMetadata, when time.Time) (bool, error) {
	tz, err := time.LoadLocation(feed.Timezone)
	if err != nil {
		return false, errors.Wrap(err, "loading timezone")
	}

	today := model.DateOf(when.In(tz)).String()
	if feed.CalendarStartDate == "" || feed.CalendarStartDate > today {
		return false, nil
	}
	if feed.CalendarEndDate < today {
		return false, nil
	}

	return true, nil
}

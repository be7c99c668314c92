package gtfs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/downloader"
	"tidbyt.dev/gtfsview/storage"
	"tidbyt.dev/gtfsview/testutil"
)

type MockGTFSServer struct {
	Feeds    map[string][]byte
	Requests []string
	Server   *httptest.Server

	mutex sync.Mutex
}

func (m *MockGTFSServer) handler(w http.ResponseWriter, r *http.Request) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Requests = append(m.Requests, r.URL.Path)
	if feed, found := m.Feeds[r.URL.Path]; found {
		w.Write(feed)
	} else {
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *MockGTFSServer) Serve(path string, feed []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if feed == nil {
		delete(m.Feeds, path)
		return
	}
	m.Feeds[path] = feed
}

func managerFixture(t *testing.T) *MockGTFSServer {
	m := &MockGTFSServer{
		Feeds:    map[string][]byte{},
		Requests: []string{},
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handler))
	t.Cleanup(m.Server.Close)
	return m
}

// A feed with service Jan 1 to Mar 2 2019, whose single stop is
// named stopName.
func managerFeed(t *testing.T, stopName string) []byte {
	return testutil.BuildZip(t, testutil.Files{
		"agency.txt": {
			"agency_timezone,agency_name,agency_url",
			"America/Los_Angeles,Fake Agency,http://agency/index.html",
		},
		"routes.txt": {
			"route_id,route_short_name,route_long_name,route_type",
			"r,R,,3",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"mondays,1,0,0,0,0,0,0,20190101,20190301",
		},
		"calendar_dates.txt": {
			"service_id,date,exception_type",
			"mondays,20190302,1",
		},
		"trips.txt": {
			"route_id,service_id,trip_id",
			"r,mondays,t",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"s," + stopName + ",12,34",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t,12:00:00,12:00:00,s,1",
		},
	})
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func newManager(t *testing.T, s storage.Storage) (*gtfs.Manager, *clock) {
	c := &clock{now: time.Date(2019, 1, 15, 12, 0, 0, 0, time.UTC)}
	m := gtfs.NewManager(s, gtfs.Options{})
	m.TimeNow = c.Now
	return m, c
}

func stopName(t *testing.T, feed *gtfs.Feed) string {
	stop, found := feed.Stop("s")
	require.True(t, found)
	return stop.Name
}

func TestManagerLoadSingleFeed(t *testing.T) {
	server := managerFixture(t)
	server.Serve("/static.zip", managerFeed(t, "S"))

	s := storage.NewMemoryStorage()
	m, _ := newManager(t, s)

	when := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
	feed, err := m.Load(context.Background(), server.Server.URL+"/static.zip", nil, when)
	require.NoError(t, err)
	assert.Equal(t, "S", stopName(t, feed))

	// Metadata records the calendar span and timezone
	feeds, err := s.ListFeeds(storage.ListFeedsFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, len(feeds))
	assert.Equal(t, server.Server.URL+"/static.zip", feeds[0].URL)
	assert.Equal(t, "America/Los_Angeles", feeds[0].Timezone)
	assert.Equal(t, "20190101", feeds[0].CalendarStartDate)
	assert.Equal(t, "20190302", feeds[0].CalendarEndDate)
	assert.Equal(t, 64, len(feeds[0].Hash))

	// Loading again doesn't download
	_, err = m.Load(context.Background(), server.Server.URL+"/static.zip", nil, when)
	require.NoError(t, err)
	assert.Equal(t, []string{"/static.zip"}, server.Requests)
}

func TestManagerLoadMultipleURLs(t *testing.T) {
	server := managerFixture(t)
	server.Serve("/static1.zip", managerFeed(t, "S1"))
	server.Serve("/static2.zip", managerFeed(t, "S2"))

	m, _ := newManager(t, storage.NewMemoryStorage())
	when := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)

	f1, err := m.Load(context.Background(), server.Server.URL+"/static1.zip", nil, when)
	require.NoError(t, err)
	f2, err := m.Load(context.Background(), server.Server.URL+"/static2.zip", nil, when)
	require.NoError(t, err)

	assert.Equal(t, "S1", stopName(t, f1))
	assert.Equal(t, "S2", stopName(t, f2))
}

func TestManagerSameArchiveOnTwoURLs(t *testing.T) {
	server := managerFixture(t)
	archive := managerFeed(t, "S")
	server.Serve("/a.zip", archive)
	server.Serve("/b.zip", archive)

	s := storage.NewMemoryStorage()
	m, _ := newManager(t, s)

	a, err := m.Refresh(context.Background(), server.Server.URL+"/a.zip", nil)
	require.NoError(t, err)
	b, err := m.Refresh(context.Background(), server.Server.URL+"/b.zip", nil)
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash)
	assert.Equal(t, a.CalendarStartDate, b.CalendarStartDate)
	assert.Equal(t, a.Timezone, b.Timezone)

	feeds, err := s.ListFeeds(storage.ListFeedsFilter{Hash: a.Hash})
	require.NoError(t, err)
	assert.Equal(t, 2, len(feeds))

	feed, err := m.LoadFeed(server.Server.URL+"/b.zip", time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "S", stopName(t, feed))
}

func TestManagerLoadWithRefresh(t *testing.T) {
	server := managerFixture(t)
	url := server.Server.URL + "/static.zip"
	when := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)

	s := storage.NewMemoryStorage()
	m, c := newManager(t, s)

	server.Serve("/static.zip", managerFeed(t, "v1"))
	feed, err := m.Load(context.Background(), url, nil, when)
	require.NoError(t, err)
	assert.Equal(t, "v1", stopName(t, feed))

	// New version published, but the stored one is fresh enough
	server.Serve("/static.zip", managerFeed(t, "v2"))
	c.now = c.now.Add(m.RefreshInterval / 2)
	feed, err = m.Load(context.Background(), url, nil, when)
	require.NoError(t, err)
	assert.Equal(t, "v1", stopName(t, feed))

	// Until it isn't
	c.now = c.now.Add(m.RefreshInterval)
	feed, err = m.Load(context.Background(), url, nil, when)
	require.NoError(t, err)
	assert.Equal(t, "v2", stopName(t, feed))

	feeds, err := s.ListFeeds(storage.ListFeedsFilter{URL: url})
	require.NoError(t, err)
	assert.Equal(t, 2, len(feeds))
	assert.Equal(t, 2, len(server.Requests))

	// A failed refresh falls back on what's stored
	server.Serve("/static.zip", nil)
	c.now = c.now.Add(2 * m.RefreshInterval)
	feed, err = m.Load(context.Background(), url, nil, when)
	require.NoError(t, err)
	assert.Equal(t, "v2", stopName(t, feed))
	assert.Equal(t, 3, len(server.Requests))
}

func TestManagerRefreshFailure(t *testing.T) {
	server := managerFixture(t)
	m, _ := newManager(t, storage.NewMemoryStorage())
	when := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := m.Load(context.Background(), server.Server.URL+"/missing.zip", nil, when)
	assert.ErrorIs(t, err, downloader.ErrUnexpectedStatus)

	// Broken archives aren't stored
	server.Serve("/broken.zip", []byte("not a zip"))
	_, err = m.Load(context.Background(), server.Server.URL+"/broken.zip", nil, when)
	assert.Error(t, err)
	_, err = m.LoadFeed(server.Server.URL+"/broken.zip", when)
	assert.ErrorIs(t, err, gtfs.ErrNoActiveFeed)
}

func TestManagerActiveFeed(t *testing.T) {
	server := managerFixture(t)
	url := server.Server.URL + "/static.zip"
	server.Serve("/static.zip", managerFeed(t, "S"))

	m, _ := newManager(t, storage.NewMemoryStorage())
	_, err := m.Refresh(context.Background(), url, nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		when   time.Time
		active bool
	}{
		// Calendar is 20190101 - 20190302 in Los Angeles
		{time.Date(2018, 12, 31, 12, 0, 0, 0, time.UTC), false},
		{time.Date(2019, 1, 1, 7, 59, 0, 0, time.UTC), false},
		{time.Date(2019, 1, 1, 8, 0, 0, 0, time.UTC), true},
		{time.Date(2019, 3, 2, 12, 0, 0, 0, time.UTC), true},
		{time.Date(2019, 3, 3, 7, 59, 0, 0, time.UTC), true},
		{time.Date(2019, 3, 3, 8, 0, 0, 0, time.UTC), false},
	} {
		feed, err := m.LoadFeed(url, tc.when)
		if tc.active {
			require.NoError(t, err, tc.when)
			assert.Equal(t, "S", stopName(t, feed))
		} else {
			assert.ErrorIs(t, err, gtfs.ErrNoActiveFeed, tc.when)
		}
	}
}

func TestManagerImportSQLite(t *testing.T) {
	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	defer s.Close()

	m, _ := newManager(t, s)
	metadata, err := m.Import("file://feed.zip", managerFeed(t, "S"))
	require.NoError(t, err)
	assert.Equal(t, "20190302", metadata.CalendarEndDate)

	feed, err := m.LoadFeed("file://feed.zip", time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "S", stopName(t, feed))

	trip, found := feed.Trip("t")
	require.True(t, found)
	assert.Equal(t, "mondays", trip.ServiceID)
	assert.Equal(t, 1, len(feed.StopTimesForTrip("t")))
}

func TestManagerDownloadCache(t *testing.T) {
	for _, tc := range []struct {
		name       string
		downloader func(t *testing.T, c *clock) downloader.Downloader
	}{
		{"memory", func(t *testing.T, c *clock) downloader.Downloader {
			d := downloader.NewMemory()
			d.TimeNow = c.Now
			return d
		}},
		{"filesystem", func(t *testing.T, c *clock) downloader.Downloader {
			d, err := downloader.NewFilesystem(t.TempDir(), nil)
			require.NoError(t, err)
			d.TimeNow = c.Now
			return d
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := managerFixture(t)
			url := server.Server.URL + "/static.zip"

			m, c := newManager(t, storage.NewMemoryStorage())
			m.Downloader = tc.downloader(t, c)
			m.DownloadCacheTTL = time.Hour

			server.Serve("/static.zip", managerFeed(t, "v1"))
			v1, err := m.Refresh(context.Background(), url, nil)
			require.NoError(t, err)

			// Served from cache while fresh
			server.Serve("/static.zip", managerFeed(t, "v2"))
			c.now = c.now.Add(30 * time.Minute)
			cached, err := m.Refresh(context.Background(), url, nil)
			require.NoError(t, err)
			assert.Equal(t, v1.Hash, cached.Hash)
			assert.Equal(t, 1, len(server.Requests))

			c.now = c.now.Add(time.Hour)
			v2, err := m.Refresh(context.Background(), url, nil)
			require.NoError(t, err)
			assert.NotEqual(t, v1.Hash, v2.Hash)
			assert.Equal(t, 2, len(server.Requests))
		})
	}
}

func TestManagerNoDownloadCacheByDefault(t *testing.T) {
	server := managerFixture(t)
	url := server.Server.URL + "/static.zip"
	m, _ := newManager(t, storage.NewMemoryStorage())

	server.Serve("/static.zip", managerFeed(t, "v1"))
	v1, err := m.Refresh(context.Background(), url, nil)
	require.NoError(t, err)

	server.Serve("/static.zip", managerFeed(t, "v2"))
	v2, err := m.Refresh(context.Background(), url, nil)
	require.NoError(t, err)
	assert.NotEqual(t, v1.Hash, v2.Hash)
	assert.Equal(t, 2, len(server.Requests))
}

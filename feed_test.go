package gtfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/testutil"
)

// Loads a feed from files, filling in missing required files with
// empty dummies.
func loadFeed(t *testing.T, files testutil.Files, opts ...gtfs.Options) *gtfs.Feed {
	o := gtfs.Options{}
	if len(opts) > 0 {
		o = opts[0]
	}
	feed, err := gtfs.LoadZip(testutil.BuildZip(t, testutil.WithDefaults(files)), o)
	require.NoError(t, err)
	return feed
}

func stopTimeSequences(sts []*model.StopTime) []uint32 {
	seqs := []uint32{}
	for _, st := range sts {
		seqs = append(seqs, st.StopSequence)
	}
	return seqs
}

func TestFeedIndexes(t *testing.T) {
	feed := loadFeed(t, testutil.Files{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"s1,S1,1,1",
			"s2,S2,2,2",
			"s3,S3,3,3",
		},
		"routes.txt": {
			"route_id,route_short_name,route_long_name,route_type",
			"r,R,,3",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,shape_id",
			"r,all,t,sh",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t,08:10:00,08:10:00,s3,5",
			"t,08:00:00,08:00:00,s1,1",
			"t,08:05:00,08:05:00,s2,3",
		},
		"shapes.txt": {
			"shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence",
			"sh,1,1,20",
			"sh,2,2,10",
		},
		"calendar_dates.txt": {
			"service_id,date,exception_type",
			"all,20240101,1",
		},
	})

	// Stop times and shape points are ordered by sequence
	assert.Equal(t, []uint32{1, 3, 5}, stopTimeSequences(feed.StopTimesForTrip("t")))
	points := feed.ShapePoints("sh")
	require.Equal(t, 2, len(points))
	assert.Equal(t, uint32(10), points[0].Sequence)
	assert.Equal(t, uint32(20), points[1].Sequence)

	// The records themselves keep file order
	assert.Equal(t, uint32(5), feed.StopTimes[0].StopSequence)

	// Lookups
	agency, found := feed.Agency(model.DefaultAgencyID)
	require.True(t, found)
	assert.Equal(t, "FooAgency", agency.Name)
	stop, found := feed.Stop("s2")
	require.True(t, found)
	assert.Equal(t, "S2", stop.Name)
	route, found := feed.Route("r")
	require.True(t, found)
	assert.Equal(t, model.DefaultAgencyID, route.AgencyID)
	trip, found := feed.Trip("t")
	require.True(t, found)
	assert.Equal(t, "sh", trip.ShapeID)

	_, found = feed.Stop("nope")
	assert.False(t, found)
	_, found = feed.Trip("nope")
	assert.False(t, found)
	assert.Equal(t, 0, len(feed.StopTimesForTrip("nope")))
	assert.Equal(t, 0, len(feed.ShapePoints("nope")))

	// Index entries point into the tables
	assert.Same(t, &feed.Stops[1], stop)
}

func TestFeedDuplicates(t *testing.T) {
	for _, tc := range []struct {
		name  string
		files testutil.Files
	}{
		{
			"agency",
			testutil.Files{
				"agency.txt": {
					"agency_id,agency_timezone,agency_name,agency_url",
					"a,UTC,A,http://a",
					"a,UTC,B,http://b",
				},
			},
		},
		{
			"stop",
			testutil.Files{
				"stops.txt": {
					"stop_id,stop_name,stop_lat,stop_lon",
					"s,S,1,1",
					"s,T,2,2",
				},
			},
		},
		{
			"route",
			testutil.Files{
				"routes.txt": {
					"route_id,route_short_name,route_long_name,route_type",
					"r,R,,3",
					"r,Q,,3",
				},
			},
		},
		{
			"trip",
			testutil.Files{
				"trips.txt": {
					"route_id,service_id,trip_id",
					"r,s,t",
					"r,s,t",
				},
			},
		},
		{
			"stop time sequence",
			testutil.Files{
				"stop_times.txt": {
					"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
					"t,08:00:00,08:00:00,s1,1",
					"t,08:05:00,08:05:00,s2,1",
				},
			},
		},
		{
			"shape point sequence",
			testutil.Files{
				"shapes.txt": {
					"shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence",
					"sh,1,1,1",
					"sh,2,2,1",
				},
			},
		},
		{
			"calendar",
			testutil.Files{
				"calendar.txt": {
					"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
					"s,1,1,1,1,1,0,0,20240101,20241231",
					"s,0,0,0,0,0,1,1,20240101,20241231",
				},
			},
		},
		{
			"calendar date",
			testutil.Files{
				"calendar_dates.txt": {
					"service_id,date,exception_type",
					"s,20240101,1",
					"s,20240101,2",
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gtfs.LoadZip(testutil.BuildZip(t, testutil.WithDefaults(tc.files)), gtfs.Options{})
			assert.ErrorIs(t, err, model.ErrDuplicateID)
		})
	}

	// Same stop_sequence on different trips is fine
	loadFeed(t, testutil.Files{
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t1,08:00:00,08:00:00,s1,1",
			"t2,08:05:00,08:05:00,s2,1",
		},
	})
}

func TestFeedLoadDirAndZip(t *testing.T) {
	files := testutil.WithDefaults(testutil.Files{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"s,S,1,1",
		},
	})

	fromDir, err := gtfs.Load(testutil.BuildDir(t, files), gtfs.Options{})
	require.NoError(t, err)
	fromZip, err := gtfs.LoadZip(testutil.BuildZip(t, files), gtfs.Options{})
	require.NoError(t, err)

	assert.Equal(t, fromDir.Tables, fromZip.Tables)

	_, err = gtfs.Load(t.TempDir()+"/nope", gtfs.Options{})
	assert.Error(t, err)

	// Missing required files
	_, err = gtfs.Load(t.TempDir(), gtfs.Options{})
	assert.ErrorIs(t, err, model.ErrMissingFile)
}

func TestFeedLogsAssembly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	loadFeed(t, testutil.Files{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"s1,S1,1,1",
			"s2,S2,2,2",
		},
	}, gtfs.Options{Logger: zap.New(core)})

	assembled := logs.FilterMessage("assembled feed").All()
	require.Equal(t, 1, len(assembled))
	assert.Equal(t, int64(2), assembled[0].ContextMap()["stops"])
	assert.Equal(t, int64(1), assembled[0].ContextMap()["agencies"])
}

func TestNewFeed(t *testing.T) {
	feed, err := gtfs.NewFeed(&model.Tables{
		Agencies: []model.Agency{{ID: "a", Name: "A", Timezone: "UTC"}},
		Stops:    []model.Stop{{ID: "s", Name: "S"}},
	}, gtfs.Options{StrictCalendar: true})
	require.NoError(t, err)

	stop, found := feed.Stop("s")
	require.True(t, found)
	assert.Equal(t, "S", stop.Name)
	assert.True(t, feed.Options().StrictCalendar)
}

func TestFeedRouteAgencyDefault(t *testing.T) {
	// With several agencies, a route without agency_id belongs to
	// none of them
	feed := loadFeed(t, testutil.Files{
		"agency.txt": {
			"agency_id,agency_name,agency_url,agency_timezone",
			"A1,Agency One,http://a1,UTC",
			"A2,Agency Two,http://a2,UTC",
		},
		"routes.txt": {
			"route_id,agency_id,route_short_name,route_long_name,route_type",
			"R1,,R1,,3",
			"R2,A2,R2,,3",
		},
	})

	route, found := feed.Route("R1")
	require.True(t, found)
	assert.Equal(t, model.DefaultAgencyID, route.AgencyID)
	route, found = feed.Route("R2")
	require.True(t, found)
	assert.Equal(t, "A2", route.AgencyID)
}

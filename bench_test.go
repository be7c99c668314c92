package gtfs_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/testutil"
)

// A grid of stops served by bus routes running every 10 minutes
// from 05:00 to 24:00.
func benchFiles(routes int, stopsPerRoute int) testutil.Files {
	files := testutil.Files{
		"agency.txt": {
			"agency_id,agency_name,agency_url,agency_timezone",
			"a,Agency,http://a,America/Los_Angeles",
		},
		"stops.txt":  {"stop_id,stop_name,stop_lat,stop_lon"},
		"routes.txt": {"route_id,agency_id,route_short_name,route_long_name,route_type"},
		"trips.txt":  {"route_id,service_id,trip_id,trip_headsign,direction_id"},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"all,1,1,1,1,1,1,1,20200101,20301231",
		},
	}

	for r := 0; r < routes; r++ {
		files["routes.txt"] = append(files["routes.txt"], fmt.Sprintf("r%d,a,%d,,3", r, r))
		for s := 0; s < stopsPerRoute; s++ {
			files["stops.txt"] = append(files["stops.txt"], fmt.Sprintf(
				"s%d_%d,Stop %d/%d,%f,%f", r, s, r, s, 37+float64(r)*0.01, -122+float64(s)*0.01,
			))
		}
		for start := 5 * 3600; start < 24*3600; start += 600 {
			tripID := fmt.Sprintf("r%d_%d", r, start)
			files["trips.txt"] = append(files["trips.txt"], fmt.Sprintf("r%d,all,%s,Route %d,0", r, tripID, r))
			for s := 0; s < stopsPerRoute; s++ {
				t := model.FormatTime(model.ServiceTime(start + s*120))
				files["stop_times.txt"] = append(files["stop_times.txt"], fmt.Sprintf(
					"%s,%s,%s,s%d_%d,%d", tripID, t, t, r, s, s+1,
				))
			}
		}
	}

	return files
}

func benchFeed(b *testing.B) *gtfs.Feed {
	feed, err := gtfs.LoadZip(testutil.BuildZip(b, benchFiles(20, 30)), gtfs.Options{})
	require.NoError(b, err)
	return feed
}

func BenchmarkLoadZip(b *testing.B) {
	buf := testutil.BuildZip(b, benchFiles(20, 30))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := gtfs.LoadZip(buf, gtfs.Options{})
		if err != nil {
			b.Error(err)
		}
	}
}

func BenchmarkNearbyStops(b *testing.B) {
	feed := benchFeed(b)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		feed.NearbyStops(model.Point{Lat: 37.1, Lon: -121.9}, 20, nil)
	}
}

func BenchmarkRouteDirections(b *testing.B) {
	feed := benchFeed(b)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		feed.RouteDirections(feed.Stops[i%len(feed.Stops)].ID)
	}
}

func BenchmarkDepartures(b *testing.B) {
	feed := benchFeed(b)

	tz, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(b, err)
	when := time.Date(2024, 2, 5, 8, 0, 0, 0, tz)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := feed.Departures(feed.Stops[i%len(feed.Stops)].ID, when, time.Hour, gtfs.DepartureFilter{})
		if err != nil {
			b.Error(err)
		}
	}
}

func BenchmarkStopVisits(b *testing.B) {
	feed := benchFeed(b)
	date := model.NewDate(2024, time.February, 5)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := feed.StopVisits(date, "a")
		if err != nil {
			b.Error(err)
		}
	}
}

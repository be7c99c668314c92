package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// One agency running one trip on Wednesdays.
func cliFeed() testutil.Files {
	return testutil.Files{
		"agency.txt": {
			"agency_id,agency_name,agency_url,agency_timezone",
			"A1,Agency,http://a,America/New_York",
		},
		"routes.txt": {
			"route_id,agency_id,route_short_name,route_long_name,route_type",
			"R1,A1,R1,,3",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign",
			"R1,S1,T1,Downtown",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"X,Main St,40.7,-74.0",
			"Y,Broad St,40.8,-73.9",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"T1,08:00:00,08:00:00,X,1",
			"T1,08:05:00,08:05:00,Y,2",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"S1,0,0,1,0,0,0,0,20240101,20991231",
		},
	}
}

func TestVisits(t *testing.T) {
	dir := testutil.BuildDir(t, cliFeed())

	out, err := run(t, "visits", dir, "2024-01-10", "A1")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"08:00:00: bus R1 Downtown : Main St\n"+
		"08:05:00: bus R1 Downtown : Broad St\n",
		out,
	)

	// Thursday
	out, err = run(t, "visits", dir, "20240111", "A1")
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = run(t, "visits", dir, "2024-01-10", "A2")
	assert.ErrorContains(t, err, "agency not found")

	_, err = run(t, "visits", dir, "tomorrow", "A1")
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestLoadFailureProducesNoOutput(t *testing.T) {
	files := cliFeed()
	files["stop_times.txt"] = append(files["stop_times.txt"], "T1,08:10:00,08:10:00,X,three")

	out, err := run(t, "visits", testutil.BuildDir(t, files), "2024-01-10", "A1")
	assert.ErrorIs(t, err, model.ErrInvalidSequenceNumber)
	assert.Equal(t, "", out)

	_, err = run(t, "describe", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestQueries(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(zipPath, testutil.BuildZip(t, cliFeed()), 0644))

	out, err := run(t, "services", zipPath, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "S1\n", out)

	out, err = run(t, "bounds", zipPath)
	require.NoError(t, err)
	assert.Equal(t, "SW (40.70N 74.00W) NE (40.80N 73.90W)\n", out)

	out, err = run(t, "bounds", zipPath, "A1")
	require.NoError(t, err)
	assert.Equal(t, "SW (40.70N 74.00W) NE (40.80N 73.90W)\n", out)

	out, err = run(t, "describe", zipPath)
	require.NoError(t, err)
	assert.Contains(t, out, "stop_times: 2\n")
	assert.Contains(t, out, "agency A1 (Agency): 1 routes, 2 stops")
	assert.Contains(t, out, "service: 20240101 - 20991231\n")

	out, err = run(t, "events", zipPath, "2024-01-10", "A1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, 6, len(lines))
	assert.Equal(t, "08:00:00: trip started bus R1 Downtown : Main St", lines[0])
	assert.Equal(t, "08:05:00: trip completed bus R1 Downtown : Broad St", lines[5])

	out, err = run(t, "departures", zipPath, "X", "--at", "2024-01-10T07:55:00-05:00", "--window", "10m")
	require.NoError(t, err)
	assert.Equal(t, "08:00:00 R1 X Downtown\n", out)

	_, err = run(t, "departures", zipPath, "X", "--direction", "7")
	assert.Error(t, err)

	out, err = run(t, "stops", zipPath)
	require.NoError(t, err)
	assert.Equal(t, "Y: Broad St\nX: Main St\n", out)

	out, err = run(t, "stops", zipPath, "40.8", "-73.9", "1")
	require.NoError(t, err)
	assert.Equal(t, "Y: Broad St (0.00 km)\n", out)

	// Southern and western coordinates, root flags first
	out, err = run(t, "--workers", "2", "stops", zipPath, "-40.8", "-73.9")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "X: Main St ("), out)

	out, err = run(t, "directions", zipPath, "X")
	require.NoError(t, err)
	assert.Equal(t, "R1 undefined: Downtown\n", out)
}

func TestImport(t *testing.T) {
	dbDir := t.TempDir()
	zipPath := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(zipPath, testutil.BuildZip(t, cliFeed()), 0644))

	out, err := run(t, "--db-driver", "sqlite", "--db", dbDir, "import", zipPath)
	require.NoError(t, err)
	assert.Contains(t, out, "20240101-20991231")

	url, err := fileURL(zipPath)
	require.NoError(t, err)

	out, err = run(t, "--db-driver", "sqlite", "--db", dbDir, "feeds")
	require.NoError(t, err)
	assert.Contains(t, out, url)

	// The archive itself is no longer needed
	require.NoError(t, os.Remove(zipPath))

	out, err = run(t, "--db-driver", "sqlite", "--db", dbDir, "services", url, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "S1\n", out)
}

func TestConfigFeeds(t *testing.T) {
	dir := testutil.BuildDir(t, cliFeed())
	configPath := filepath.Join(t.TempDir(), "gtfs.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"strict_calendar: true\nfeeds:\n  - name: local\n    source: "+dir+"\n",
	), 0644))

	out, err := run(t, "--config", configPath, "services", "local", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "S1\n", out)

	// Outside the calendar range with strict checking
	out, err = run(t, "--config", configPath, "services", "local", "2023-01-04")
	require.NoError(t, err)
	assert.Equal(t, "", out)

	// Overridden by flag
	out, err = run(t, "--config", configPath, "--strict-calendar=false", "services", "local", "2023-01-04")
	require.NoError(t, err)
	assert.Equal(t, "S1\n", out)

	_, err = run(t, "--db-driver", "mysql", "services", "local", "2023-01-04")
	assert.Error(t, err)
}

func TestCacheDir(t *testing.T) {
	archive := testutil.BuildZip(t, cliFeed())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	url := server.URL + "/feed.zip"
	cacheDir := t.TempDir()

	out, err := run(t, "--cache-dir", cacheDir, "import", url)
	require.NoError(t, err)
	assert.Contains(t, out, "20240101-20991231")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 1, len(entries))

	// The cached archive outlives the server
	server.Close()
	out, err = run(t, "--cache-dir", cacheDir, "import", url)
	require.NoError(t, err)
	assert.Contains(t, out, "20240101-20991231")

	_, err = run(t, "import", url)
	assert.Error(t, err)
}

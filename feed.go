package gtfs

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tidbyt.dev/gtfsview/model"
	"tidbyt.dev/gtfsview/parse"
)

type Options struct {
	// Only consider calendar.txt rows whose start_date..end_date
	// range covers the queried date. Off by default, since most
	// feeds are trimmed to their validity window anyway.
	StrictCalendar bool

	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Passed on to the table loader.
	Workers int
	Metrics *parse.Metrics
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) parseOptions() parse.Options {
	return parse.Options{
		Logger:  o.Logger,
		Workers: o.Workers,
		Metrics: o.Metrics,
	}
}

// Feed holds every record of a loaded GTFS feed, with indexes for the
// common lookups. A Feed is read-only once constructed and safe for
// concurrent use.
type Feed struct {
	model.Tables

	opts Options

	agencyByID      map[string]*model.Agency
	stopByID        map[string]*model.Stop
	routeByID       map[string]*model.Route
	tripByID        map[string]*model.Trip
	stopsByParent   map[string][]*model.Stop
	stopTimesByTrip map[string][]*model.StopTime
	stopTimesByStop map[string][]*model.StopTime
	shapePoints     map[string][]*model.Shape
	exceptionsByDay map[model.Date][]*model.CalendarDate
	maxDeparture    model.ServiceTime
}

// Load reads a feed from a directory of GTFS files.
func Load(dir string, opts Options) (*Feed, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening feed: %s is not a directory", dir)
	}

	return load(parse.FS(os.DirFS(dir)), opts)
}

// LoadZip reads a feed from a zip archive.
func LoadZip(buf []byte, opts Options) (*Feed, error) {
	src, err := parse.Zip(buf)
	if err != nil {
		return nil, err
	}
	return load(src, opts)
}

func load(src parse.Source, opts Options) (*Feed, error) {
	tables, err := parse.Load(src, opts.parseOptions())
	if err != nil {
		return nil, err
	}
	return NewFeed(tables, opts)
}

// NewFeed indexes tables. The Feed takes ownership of tables, which
// must not be modified afterwards.
func NewFeed(tables *model.Tables, opts Options) (*Feed, error) {
	f := &Feed{
		Tables:          *tables,
		opts:            opts,
		agencyByID:      map[string]*model.Agency{},
		stopByID:        map[string]*model.Stop{},
		routeByID:       map[string]*model.Route{},
		tripByID:        map[string]*model.Trip{},
		stopsByParent:   map[string][]*model.Stop{},
		stopTimesByTrip: map[string][]*model.StopTime{},
		stopTimesByStop: map[string][]*model.StopTime{},
		shapePoints:     map[string][]*model.Shape{},
		exceptionsByDay: map[model.Date][]*model.CalendarDate{},
	}

	for i := range f.Agencies {
		a := &f.Agencies[i]
		if _, found := f.agencyByID[a.ID]; found {
			return nil, duplicate("agency.txt", "agency_id", a.ID)
		}
		f.agencyByID[a.ID] = a
	}

	for i := range f.Stops {
		s := &f.Stops[i]
		if _, found := f.stopByID[s.ID]; found {
			return nil, duplicate("stops.txt", "stop_id", s.ID)
		}
		f.stopByID[s.ID] = s
		if s.ParentStation != "" {
			f.stopsByParent[s.ParentStation] = append(f.stopsByParent[s.ParentStation], s)
		}
	}

	for i := range f.Routes {
		r := &f.Routes[i]
		if _, found := f.routeByID[r.ID]; found {
			return nil, duplicate("routes.txt", "route_id", r.ID)
		}
		f.routeByID[r.ID] = r

		// agency_id is optional for routes of a feed's only agency
		if len(f.Agencies) == 1 && r.AgencyID == model.DefaultAgencyID {
			r.AgencyID = f.Agencies[0].ID
		}
	}

	for i := range f.Trips {
		t := &f.Trips[i]
		if _, found := f.tripByID[t.ID]; found {
			return nil, duplicate("trips.txt", "trip_id", t.ID)
		}
		f.tripByID[t.ID] = t
	}

	for i := range f.StopTimes {
		st := &f.StopTimes[i]
		f.stopTimesByTrip[st.TripID] = append(f.stopTimesByTrip[st.TripID], st)
		f.stopTimesByStop[st.StopID] = append(f.stopTimesByStop[st.StopID], st)
		if st.Departure > f.maxDeparture {
			f.maxDeparture = st.Departure
		}
	}
	for tripID, sts := range f.stopTimesByTrip {
		sort.Slice(sts, func(i, j int) bool {
			return sts[i].StopSequence < sts[j].StopSequence
		})
		for i := 1; i < len(sts); i++ {
			if sts[i].StopSequence == sts[i-1].StopSequence {
				return nil, duplicate(
					"stop_times.txt",
					"trip_id/stop_sequence",
					fmt.Sprintf("%s/%d", tripID, sts[i].StopSequence),
				)
			}
		}
	}

	for i := range f.Shapes {
		s := &f.Shapes[i]
		f.shapePoints[s.ID] = append(f.shapePoints[s.ID], s)
	}
	for shapeID, points := range f.shapePoints {
		sort.Slice(points, func(i, j int) bool {
			return points[i].Sequence < points[j].Sequence
		})
		for i := 1; i < len(points); i++ {
			if points[i].Sequence == points[i-1].Sequence {
				return nil, duplicate(
					"shapes.txt",
					"shape_id/shape_pt_sequence",
					fmt.Sprintf("%s/%d", shapeID, points[i].Sequence),
				)
			}
		}
	}

	services := map[string]bool{}
	for _, c := range f.Calendars {
		if services[c.ServiceID] {
			return nil, duplicate("calendar.txt", "service_id", c.ServiceID)
		}
		services[c.ServiceID] = true
	}

	for i := range f.CalendarDates {
		cd := &f.CalendarDates[i]
		for _, other := range f.exceptionsByDay[cd.Date] {
			if other.ServiceID == cd.ServiceID {
				return nil, duplicate(
					"calendar_dates.txt",
					"service_id/date",
					fmt.Sprintf("%s/%s", cd.ServiceID, cd.Date),
				)
			}
		}
		f.exceptionsByDay[cd.Date] = append(f.exceptionsByDay[cd.Date], cd)
	}

	opts.logger().Info(
		"assembled feed",
		zap.Int("agencies", len(f.Agencies)),
		zap.Int("stops", len(f.Stops)),
		zap.Int("routes", len(f.Routes)),
		zap.Int("trips", len(f.Trips)),
		zap.Int("stop_times", len(f.StopTimes)),
		zap.Int("shapes", len(f.Shapes)),
		zap.Int("calendars", len(f.Calendars)),
		zap.Int("calendar_dates", len(f.CalendarDates)),
	)

	return f, nil
}

func duplicate(table string, column string, value string) error {
	return errors.Wrapf(model.ErrDuplicateID, "%s: %s '%s'", table, column, value)
}

func (f *Feed) Agency(id string) (*model.Agency, bool) {
	a, found := f.agencyByID[id]
	return a, found
}

func (f *Feed) Stop(id string) (*model.Stop, bool) {
	s, found := f.stopByID[id]
	return s, found
}

func (f *Feed) Route(id string) (*model.Route, bool) {
	r, found := f.routeByID[id]
	return r, found
}

func (f *Feed) Trip(id string) (*model.Trip, bool) {
	t, found := f.tripByID[id]
	return t, found
}

// StopTimesForTrip returns the itinerary of a trip, ordered by
// stop_sequence. The slice is shared and must not be modified.
func (f *Feed) StopTimesForTrip(tripID string) []*model.StopTime {
	return f.stopTimesByTrip[tripID]
}

// ShapePoints returns the points of a shape, ordered by sequence.
func (f *Feed) ShapePoints(shapeID string) []*model.Shape {
	return f.shapePoints[shapeID]
}

func (f *Feed) Options() Options {
	return f.opts
}

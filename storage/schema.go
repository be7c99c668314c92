package storage

import (
	"database/sql"
	"fmt"
	"time"

	"tidbyt.dev/gtfsview/model"
)

// Column types, translated per dialect.
type columnType int

const (
	typeText columnType = iota
	typeInt
	typeFloat
)

type column struct {
	name     string
	typ      columnType
	nullable bool
}

// One table of feed records. Every table has a hash column holding
// the feed's hash and a record_index column preserving record order, in
// addition to the columns listed here.
type recordTable struct {
	name    string
	columns []column

	// Values of each record, in column order.
	values func(t *model.Tables) [][]any

	// Scans one row (in column order) and appends the record.
	scan func(t *model.Tables, rows *sql.Rows) error

	// A file absent from the feed leaves its collection nil, which
	// is kept apart from an empty one.
	isNil func(t *model.Tables) bool
	clear func(t *model.Tables)
}

func text(name string) column    { return column{name: name, typ: typeText} }
func integer(name string) column { return column{name: name, typ: typeInt} }
func float(name string) column   { return column{name: name, typ: typeFloat} }

var calendarDays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func scanDate(s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("scanning date: %w", err)
	}
	return d, nil
}

var recordTables = []recordTable{
	{
		name: "agency",
		columns: []column{
			text("id"), text("name"), text("url"), text("timezone"),
			text("lang"), text("phone"), text("fare_url"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Agencies))
			for _, a := range t.Agencies {
				rows = append(rows, []any{a.ID, a.Name, a.URL, a.Timezone, a.Lang, a.Phone, a.FareURL})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var a model.Agency
			err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.Timezone, &a.Lang, &a.Phone, &a.FareURL)
			if err != nil {
				return err
			}
			t.Agencies = append(t.Agencies, a)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Agencies == nil },
		clear: func(t *model.Tables) { t.Agencies = nil },
	},

	{
		name: "stops",
		columns: []column{
			text("id"), text("code"), text("name"), text("description"),
			float("lat"), float("lon"), text("zone_id"), text("url"),
			integer("location_type"), text("parent_station"), text("timezone"),
			integer("wheelchair_boarding"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Stops))
			for _, s := range t.Stops {
				rows = append(rows, []any{
					s.ID, s.Code, s.Name, s.Desc,
					s.Point.Lat, s.Point.Lon, s.ZoneID, s.URL,
					int(s.LocationType), s.ParentStation, s.Timezone,
					int(s.WheelchairBoarding),
				})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var s model.Stop
			var locationType, wheelchairBoarding int
			err := rows.Scan(
				&s.ID, &s.Code, &s.Name, &s.Desc,
				&s.Point.Lat, &s.Point.Lon, &s.ZoneID, &s.URL,
				&locationType, &s.ParentStation, &s.Timezone,
				&wheelchairBoarding,
			)
			if err != nil {
				return err
			}
			s.LocationType = model.LocationType(locationType)
			s.WheelchairBoarding = model.WheelchairBoarding(wheelchairBoarding)
			t.Stops = append(t.Stops, s)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Stops == nil },
		clear: func(t *model.Tables) { t.Stops = nil },
	},

	{
		name: "routes",
		columns: []column{
			text("id"), text("agency_id"), text("short_name"), text("long_name"),
			text("description"), integer("type"), text("url"), text("color"),
			text("text_color"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Routes))
			for _, r := range t.Routes {
				rows = append(rows, []any{
					r.ID, r.AgencyID, r.ShortName, r.LongName,
					r.Desc, int(r.Type), r.URL, r.Color,
					r.TextColor,
				})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var r model.Route
			var routeType int
			err := rows.Scan(
				&r.ID, &r.AgencyID, &r.ShortName, &r.LongName,
				&r.Desc, &routeType, &r.URL, &r.Color,
				&r.TextColor,
			)
			if err != nil {
				return err
			}
			r.Type = model.RouteType(routeType)
			t.Routes = append(t.Routes, r)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Routes == nil },
		clear: func(t *model.Tables) { t.Routes = nil },
	},

	{
		name: "trips",
		columns: []column{
			text("id"), text("route_id"), text("service_id"), text("headsign"),
			text("short_name"), integer("direction"), text("block_id"), text("shape_id"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Trips))
			for _, tr := range t.Trips {
				rows = append(rows, []any{
					tr.ID, tr.RouteID, tr.ServiceID, tr.Headsign,
					tr.ShortName, int(tr.Direction), tr.BlockID, tr.ShapeID,
				})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var tr model.Trip
			var direction int
			err := rows.Scan(
				&tr.ID, &tr.RouteID, &tr.ServiceID, &tr.Headsign,
				&tr.ShortName, &direction, &tr.BlockID, &tr.ShapeID,
			)
			if err != nil {
				return err
			}
			tr.Direction = model.Direction(direction)
			t.Trips = append(t.Trips, tr)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Trips == nil },
		clear: func(t *model.Tables) { t.Trips = nil },
	},

	{
		name: "stop_times",
		columns: []column{
			text("trip_id"), text("stop_id"), integer("arrival_time"), integer("departure_time"),
			integer("stop_sequence"), text("headsign"), integer("pickup_type"), integer("drop_off_type"),
			{name: "shape_dist_traveled", typ: typeFloat, nullable: true},
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.StopTimes))
			for _, st := range t.StopTimes {
				var dist any
				if st.ShapeDistTraveled != nil {
					dist = *st.ShapeDistTraveled
				}
				rows = append(rows, []any{
					st.TripID, st.StopID, int(st.Arrival), int(st.Departure),
					int64(st.StopSequence), st.Headsign, int(st.PickupType), int(st.DropOffType),
					dist,
				})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var st model.StopTime
			var arrival, departure, pickup, dropOff int
			var seq int64
			var dist sql.NullFloat64
			err := rows.Scan(
				&st.TripID, &st.StopID, &arrival, &departure,
				&seq, &st.Headsign, &pickup, &dropOff,
				&dist,
			)
			if err != nil {
				return err
			}
			st.Arrival = model.ServiceTime(arrival)
			st.Departure = model.ServiceTime(departure)
			st.StopSequence = uint32(seq)
			st.PickupType = model.VisitType(pickup)
			st.DropOffType = model.VisitType(dropOff)
			st.ShapeDistTraveled = nullFloat(dist)
			t.StopTimes = append(t.StopTimes, st)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.StopTimes == nil },
		clear: func(t *model.Tables) { t.StopTimes = nil },
	},

	{
		name: "shapes",
		columns: []column{
			text("id"), float("lat"), float("lon"), integer("sequence"),
			{name: "dist_traveled", typ: typeFloat, nullable: true},
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Shapes))
			for _, s := range t.Shapes {
				var dist any
				if s.DistTraveled != nil {
					dist = *s.DistTraveled
				}
				rows = append(rows, []any{s.ID, s.Point.Lat, s.Point.Lon, int64(s.Sequence), dist})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var s model.Shape
			var seq int64
			var dist sql.NullFloat64
			err := rows.Scan(&s.ID, &s.Point.Lat, &s.Point.Lon, &seq, &dist)
			if err != nil {
				return err
			}
			s.Sequence = uint32(seq)
			s.DistTraveled = nullFloat(dist)
			t.Shapes = append(t.Shapes, s)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Shapes == nil },
		clear: func(t *model.Tables) { t.Shapes = nil },
	},

	{
		name: "calendar",
		columns: []column{
			text("service_id"), text("start_date"), text("end_date"),
			integer("monday"), integer("tuesday"), integer("wednesday"), integer("thursday"),
			integer("friday"), integer("saturday"), integer("sunday"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.Calendars))
			for _, c := range t.Calendars {
				row := []any{c.ServiceID, c.StartDate.String(), c.EndDate.String()}
				for _, day := range calendarDays {
					active := 0
					if c.Weekdays.Has(day) {
						active = 1
					}
					row = append(row, active)
				}
				rows = append(rows, row)
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var c model.Calendar
			var start, end string
			flags := make([]int, len(calendarDays))
			dest := []any{&c.ServiceID, &start, &end}
			for i := range flags {
				dest = append(dest, &flags[i])
			}
			if err := rows.Scan(dest...); err != nil {
				return err
			}

			days := []time.Weekday{}
			for i, day := range calendarDays {
				if flags[i] == 1 {
					days = append(days, day)
				}
			}
			c.Weekdays = model.NewWeekdays(days...)

			var err error
			if c.StartDate, err = scanDate(start); err != nil {
				return err
			}
			if c.EndDate, err = scanDate(end); err != nil {
				return err
			}

			t.Calendars = append(t.Calendars, c)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.Calendars == nil },
		clear: func(t *model.Tables) { t.Calendars = nil },
	},

	{
		name: "calendar_dates",
		columns: []column{
			text("service_id"), text("date"), integer("exception_type"),
		},
		values: func(t *model.Tables) [][]any {
			rows := make([][]any, 0, len(t.CalendarDates))
			for _, cd := range t.CalendarDates {
				rows = append(rows, []any{cd.ServiceID, cd.Date.String(), int(cd.ExceptionType)})
			}
			return rows
		},
		scan: func(t *model.Tables, rows *sql.Rows) error {
			var cd model.CalendarDate
			var date string
			var exceptionType int
			if err := rows.Scan(&cd.ServiceID, &date, &exceptionType); err != nil {
				return err
			}
			d, err := scanDate(date)
			if err != nil {
				return err
			}
			cd.Date = d
			cd.ExceptionType = model.ExceptionType(exceptionType)
			t.CalendarDates = append(t.CalendarDates, cd)
			return nil
		},
		isNil: func(t *model.Tables) bool { return t.CalendarDates == nil },
		clear: func(t *model.Tables) { t.CalendarDates = nil },
	},
}

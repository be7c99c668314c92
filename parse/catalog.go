package parse

import (
	"io"

	"tidbyt.dev/gtfsview/model"
)

// Descriptor is one entry in the Catalog: a file, its schema and a
// way to decode it into model.Tables.
type Descriptor struct {
	File     string
	Schema   Schema
	Required bool

	decode func(r io.Reader) (int, func(*model.Tables), error)
}

func describe[T any](required bool, table Table[T], assign func(*model.Tables, []T)) Descriptor {
	return Descriptor{
		File:     table.Schema.Table,
		Schema:   table.Schema,
		Required: required,
		decode: func(r io.Reader) (int, func(*model.Tables), error) {
			records, err := table.Collect(r)
			if err != nil {
				return 0, nil, err
			}
			return len(records), func(t *model.Tables) { assign(t, records) }, nil
		},
	}
}

// Catalog lists every table loaded from a feed. At least one of
// calendar.txt and calendar_dates.txt must be present, which is
// checked by Load rather than expressed here.
var Catalog = []Descriptor{
	describe(true, AgencyTable, func(t *model.Tables, r []model.Agency) { t.Agencies = r }),
	describe(true, StopTable, func(t *model.Tables, r []model.Stop) { t.Stops = r }),
	describe(true, RouteTable, func(t *model.Tables, r []model.Route) { t.Routes = r }),
	describe(true, TripTable, func(t *model.Tables, r []model.Trip) { t.Trips = r }),
	describe(true, StopTimeTable, func(t *model.Tables, r []model.StopTime) { t.StopTimes = r }),
	describe(false, ShapeTable, func(t *model.Tables, r []model.Shape) { t.Shapes = r }),
	describe(false, CalendarTable, func(t *model.Tables, r []model.Calendar) { t.Calendars = r }),
	describe(false, CalendarDateTable, func(t *model.Tables, r []model.CalendarDate) { t.CalendarDates = r }),
}

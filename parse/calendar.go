package parse

import (
	"time"

	"tidbyt.dev/gtfsview/model"
)

const (
	calendarServiceID = iota
	calendarMonday
	calendarTuesday
	calendarWednesday
	calendarThursday
	calendarFriday
	calendarSaturday
	calendarSunday
	calendarStartDate
	calendarEndDate
)

var CalendarTable = Table[model.Calendar]{
	Schema: Schema{
		Table: "calendar.txt",
		Required: []string{
			"service_id",
			"monday",
			"tuesday",
			"wednesday",
			"thursday",
			"friday",
			"saturday",
			"sunday",
			"start_date",
			"end_date",
		},
	},
	Decode: decodeCalendar,
}

var calendarDays = []struct {
	column  int
	weekday time.Weekday
}{
	{calendarMonday, time.Monday},
	{calendarTuesday, time.Tuesday},
	{calendarWednesday, time.Wednesday},
	{calendarThursday, time.Thursday},
	{calendarFriday, time.Friday},
	{calendarSaturday, time.Saturday},
	{calendarSunday, time.Sunday},
}

var serviceAvailableCodes = map[string]bool{
	"0": false,
	"1": true,
}

func decodeCalendar(row Row) (model.Calendar, error) {
	days := []time.Weekday{}
	for _, d := range calendarDays {
		active, err := decodeEnum(row.requiredName(d.column), row.Required(d.column), serviceAvailableCodes)
		if err != nil {
			return model.Calendar{}, err
		}
		if active {
			days = append(days, d.weekday)
		}
	}

	start, err := decodeDate(row.requiredName(calendarStartDate), row.Required(calendarStartDate))
	if err != nil {
		return model.Calendar{}, err
	}

	end, err := decodeDate(row.requiredName(calendarEndDate), row.Required(calendarEndDate))
	if err != nil {
		return model.Calendar{}, err
	}

	return model.Calendar{
		ServiceID: row.Required(calendarServiceID),
		Weekdays:  model.NewWeekdays(days...),
		StartDate: start,
		EndDate:   end,
	}, nil
}

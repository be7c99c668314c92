package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	calendarDateServiceID = iota
	calendarDateDate
	calendarDateExceptionType
)

var CalendarDateTable = Table[model.CalendarDate]{
	Schema: Schema{
		Table:    "calendar_dates.txt",
		Required: []string{"service_id", "date", "exception_type"},
	},
	Decode: decodeCalendarDate,
}

var exceptionTypeCodes = map[string]model.ExceptionType{
	"1": model.ExceptionTypeAdd,
	"2": model.ExceptionTypeRemove,
}

func decodeCalendarDate(row Row) (model.CalendarDate, error) {
	date, err := decodeDate(row.requiredName(calendarDateDate), row.Required(calendarDateDate))
	if err != nil {
		return model.CalendarDate{}, err
	}

	exceptionType, err := decodeEnum(
		row.requiredName(calendarDateExceptionType),
		row.Required(calendarDateExceptionType),
		exceptionTypeCodes,
	)
	if err != nil {
		return model.CalendarDate{}, err
	}

	return model.CalendarDate{
		ServiceID:     row.Required(calendarDateServiceID),
		Date:          date,
		ExceptionType: exceptionType,
	}, nil
}

package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	stopID = iota
	stopName
	stopLat
	stopLon
)

const (
	stopCode = iota
	stopDesc
	stopZoneID
	stopURL
	stopLocationType
	stopParentStation
	stopTimezone
	stopWheelchairBoarding
)

var StopTable = Table[model.Stop]{
	Schema: Schema{
		Table:    "stops.txt",
		Required: []string{"stop_id", "stop_name", "stop_lat", "stop_lon"},
		Optional: []Field{
			{Name: "stop_code"},
			{Name: "stop_desc"},
			{Name: "zone_id"},
			{Name: "stop_url"},
			{Name: "location_type", Default: "0"},
			{Name: "parent_station"},
			{Name: "stop_timezone"},
			{Name: "wheelchair_boarding", Default: "0"},
		},
	},
	Decode: decodeStop,
}

var locationTypeCodes = map[string]model.LocationType{
	"0": model.LocationTypeStop,
	"1": model.LocationTypeStation,
}

var wheelchairBoardingCodes = map[string]model.WheelchairBoarding{
	"0": model.WheelchairBoardingUnknown,
	"1": model.WheelchairBoardingPossible,
	"2": model.WheelchairBoardingNone,
}

func decodeStop(row Row) (model.Stop, error) {
	point, err := decodePoint(
		row.requiredName(stopLat), row.Required(stopLat),
		row.requiredName(stopLon), row.Required(stopLon),
	)
	if err != nil {
		return model.Stop{}, err
	}

	locationType, err := decodeEnum(
		row.optionalName(stopLocationType),
		row.Optional(stopLocationType),
		locationTypeCodes,
	)
	if err != nil {
		return model.Stop{}, err
	}

	return model.Stop{
		ID:            row.Required(stopID),
		Code:          row.Optional(stopCode),
		Name:          row.Required(stopName),
		Desc:          row.Optional(stopDesc),
		Point:         point,
		ZoneID:        row.Optional(stopZoneID),
		URL:           row.Optional(stopURL),
		LocationType:  locationType,
		ParentStation: row.Optional(stopParentStation),
		Timezone:      row.Optional(stopTimezone),
		WheelchairBoarding: decodeEnumDefault(
			row.Optional(stopWheelchairBoarding),
			wheelchairBoardingCodes,
			model.WheelchairBoardingUnknown,
		),
	}, nil
}

package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	routeID = iota
	routeShortName
	routeLongName
	routeType
)

const (
	routeAgencyID = iota
	routeDesc
	routeURL
	routeColor
	routeTextColor
)

var RouteTable = Table[model.Route]{
	Schema: Schema{
		Table:    "routes.txt",
		Required: []string{"route_id", "route_short_name", "route_long_name", "route_type"},
		Optional: []Field{
			// Routes without agency belong to the feed's
			// default (single) agency.
			{Name: "agency_id", Default: model.DefaultAgencyID},
			{Name: "route_desc"},
			{Name: "route_url"},
			// Defaults from the GTFS reference
			{Name: "route_color", Default: "FFFFFF"},
			{Name: "route_text_color", Default: "000000"},
		},
	},
	Decode: decodeRoute,
}

var routeTypeCodes = map[string]model.RouteType{
	"0": model.RouteTypeTram,
	"1": model.RouteTypeSubway,
	"2": model.RouteTypeRail,
	"3": model.RouteTypeBus,
	"4": model.RouteTypeFerry,
	"5": model.RouteTypeCableCar,
	"6": model.RouteTypeGondola,
	"7": model.RouteTypeFunicular,
}

func decodeRoute(row Row) (model.Route, error) {
	rt, err := decodeEnum(row.requiredName(routeType), row.Required(routeType), routeTypeCodes)
	if err != nil {
		return model.Route{}, err
	}

	return model.Route{
		ID:        row.Required(routeID),
		AgencyID:  row.Optional(routeAgencyID),
		ShortName: row.Required(routeShortName),
		LongName:  row.Required(routeLongName),
		Desc:      row.Optional(routeDesc),
		Type:      rt,
		URL:       row.Optional(routeURL),
		Color:     row.Optional(routeColor),
		TextColor: row.Optional(routeTextColor),
	}, nil
}

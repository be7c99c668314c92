package parse

import (
	"tidbyt.dev/gtfsview/model"
)

const (
	agencyName = iota
	agencyURL
	agencyTimezone
)

const (
	agencyID = iota
	agencyLang
	agencyPhone
	agencyFareURL
)

var AgencyTable = Table[model.Agency]{
	Schema: Schema{
		Table:    "agency.txt",
		Required: []string{"agency_name", "agency_url", "agency_timezone"},
		Optional: []Field{
			{Name: "agency_id", Default: model.DefaultAgencyID},
			{Name: "agency_lang"},
			{Name: "agency_phone"},
			{Name: "agency_fare_url"},
		},
	},
	Decode: decodeAgency,
}

func decodeAgency(row Row) (model.Agency, error) {
	return model.Agency{
		ID:       row.Optional(agencyID),
		Name:     row.Required(agencyName),
		URL:      row.Required(agencyURL),
		Timezone: row.Required(agencyTimezone),
		Lang:     row.Optional(agencyLang),
		Phone:    row.Optional(agencyPhone),
		FareURL:  row.Optional(agencyFareURL),
	}, nil
}

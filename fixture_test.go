package gtfs_test

import (
	"testing"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/testutil"
)

// Two agencies in New York time. Agency A runs a bus (R1) and a
// subway (R2), agency B a ferry (Q) running past midnight. Central
// is a station with two platforms.
//
// Service wkd runs Monday to Friday, sat on Saturdays. On July 4th
// 2024 (a Thursday) sat replaces wkd.
func twoAgencyFiles() testutil.Files {
	return testutil.Files{
		"agency.txt": {
			"agency_id,agency_name,agency_url,agency_timezone",
			"A,Agency A,http://a,America/New_York",
			"B,Agency B,http://b,America/New_York",
		},
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station",
			"X,Xstreet,10,20,,",
			"Y,Ystreet,30,-5,,",
			"Z,Zstreet,50,50,,",
			"ST,Central,40,-70,1,",
			"P1,Platform 1,40.001,-70,0,ST",
			"P2,Platform 2,40.002,-70,0,ST",
			"U,Unused,0,0,,",
		},
		"routes.txt": {
			"route_id,agency_id,route_short_name,route_long_name,route_type",
			"R1,A,R1,,3",
			"R2,A,R2,,1",
			"Q,B,Q,,4",
		},
		"trips.txt": {
			"route_id,service_id,trip_id,trip_headsign,direction_id,shape_id",
			"R1,wkd,t1,To Y,0,sh1",
			"R1,wkd,t2,To X,1,",
			"R1,sat,t3,To Y Saturday,0,",
			"R2,wkd,t4,Uptown,0,",
			"Q,wkd,q1,Ferry,0,sh2",
		},
		"stop_times.txt": {
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence,stop_headsign",
			"t1,08:00:00,08:00:00,X,1,",
			"t1,08:10:00,08:11:00,P1,2,",
			"t1,08:20:00,08:20:00,Y,3,",
			"t2,09:00:00,09:00:00,Y,1,",
			"t2,09:30:00,09:30:00,X,2,",
			"t3,10:00:00,10:00:00,X,1,",
			"t3,10:20:00,10:20:00,Y,2,",
			"t4,08:05:00,08:05:00,P2,1,Express",
			"t4,08:15:00,08:15:00,Z,2,",
			"q1,23:50:00,23:50:00,Z,1,",
			"q1,24:30:00,24:30:00,P2,2,",
			"q1,24:40:00,24:40:00,Y,3,",
		},
		"shapes.txt": {
			"shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence",
			"sh1,10,20,1",
			"sh1,30,-5,2",
			"sh2,50,50,1",
			"sh2,60,60,2",
		},
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"wkd,1,1,1,1,1,0,0,20240101,20241231",
			"sat,0,0,0,0,0,1,0,20240101,20241231",
		},
		"calendar_dates.txt": {
			"service_id,date,exception_type",
			"wkd,20240704,2",
			"sat,20240704,1",
		},
	}
}

func twoAgencyFeed(t *testing.T) *gtfs.Feed {
	return loadFeed(t, twoAgencyFiles())
}

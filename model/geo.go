package model

import (
	"fmt"
	"math"
	"strconv"
)

type Point struct {
	Lat float64
	Lon float64
}

// ParsePoint parses a latitude/longitude pair. No range checks.
func ParsePoint(lat string, lon string) (Point, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude '%s'", ErrInvalidCoordinate, lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude '%s'", ErrInvalidCoordinate, lon)
	}
	return Point{Lat: la, Lon: lo}, nil
}

// E.g. "40.70N 74.10W".
func (p Point) String() string {
	var lat, lon string
	if p.Lat >= 0 {
		lat = fmt.Sprintf("%3.2fN", p.Lat)
	} else {
		lat = fmt.Sprintf("%3.2fS", -p.Lat)
	}
	if p.Lon > 0 {
		lon = fmt.Sprintf("%3.2fE", p.Lon)
	} else {
		lon = fmt.Sprintf("%3.2fW", -p.Lon)
	}
	return lat + " " + lon
}

// A lat/lon aligned bounding box.
type Rectangle struct {
	SW Point
	NE Point
}

// BoundingBox returns the smallest Rectangle holding all points. The
// second return value is false if points is empty.
func BoundingBox(points []Point) (Rectangle, bool) {
	if len(points) == 0 {
		return Rectangle{}, false
	}

	r := Rectangle{SW: points[0], NE: points[0]}
	for _, p := range points[1:] {
		r.SW.Lat = math.Min(r.SW.Lat, p.Lat)
		r.SW.Lon = math.Min(r.SW.Lon, p.Lon)
		r.NE.Lat = math.Max(r.NE.Lat, p.Lat)
		r.NE.Lon = math.Max(r.NE.Lon, p.Lon)
	}
	return r, true
}

func (r Rectangle) Contains(p Point) bool {
	return p.Lat >= r.SW.Lat && p.Lat <= r.NE.Lat && p.Lon >= r.SW.Lon && p.Lon <= r.NE.Lon
}

func (r Rectangle) String() string {
	return fmt.Sprintf("SW (%s) NE (%s)", r.SW, r.NE)
}

// HaversineDistance is the great circle distance in kilometers.
func HaversineDistance(a Point, b Point) float64 {
	const earthRadiusKm = 6371

	aLatRad := a.Lat * math.Pi / 180
	aLonRad := a.Lon * math.Pi / 180
	bLatRad := b.Lat * math.Pi / 180
	bLonRad := b.Lon * math.Pi / 180
	deltaLat := aLatRad - bLatRad
	deltaLon := aLonRad - bLonRad

	h := math.Cos(aLatRad)*math.Cos(bLatRad)*math.Pow(math.Sin(deltaLon/2), 2) + math.Pow(math.Sin(deltaLat/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return c * earthRadiusKm
}

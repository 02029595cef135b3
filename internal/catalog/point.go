package catalog

import (
	"strconv"
	"strings"
)

// Point is a geographic coordinate carried in a WKT-style POINT(lon lat)
// location string.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ParsePoint extracts the two numeric tokens from a POINT(lon lat) string.
// Returns false for anything that is not a well-formed point.
func ParsePoint(s string) (Point, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToUpper(s), "POINT") {
		return Point{}, false
	}

	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return Point{}, false
	}

	inner := strings.ReplaceAll(s[open+1:end], ",", " ")
	fields := strings.Fields(inner)
	if len(fields) != 2 {
		return Point{}, false
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Lon: lon, Lat: lat}, true
}

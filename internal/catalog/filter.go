package catalog

import "strings"

// Filter restricts a listing query by location text. ALL passes everything,
// Remote matches "Remote" case-insensitively, and anything else is treated
// as a region code matched as a plain substring. The region match is
// best-effort text matching, not a structured comparison; a code appearing
// inside an unrelated word is a false positive by design of the data.
type Filter string

const (
	FilterAll    Filter = "ALL"
	FilterRemote Filter = "Remote"
)

// ParseFilter normalises a raw query value; empty means ALL.
func ParseFilter(raw string) Filter {
	switch raw {
	case "", string(FilterAll):
		return FilterAll
	case string(FilterRemote):
		return FilterRemote
	}
	return Filter(raw)
}

// Matches reports whether a posting's location text passes the filter.
// Mirrors the SQL predicate used by Store.List.
func (f Filter) Matches(location string) bool {
	switch f {
	case FilterAll:
		return true
	case FilterRemote:
		return strings.Contains(strings.ToLower(location), "remote")
	default:
		return strings.Contains(location, string(f))
	}
}

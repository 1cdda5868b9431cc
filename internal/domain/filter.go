package domain

import "strings"

// Filter narrows a record list the way the dashboard search box and
// "hazardous only" switch do.
type Filter struct {
	Query         string
	HazardousOnly bool
}

// Match reports whether a record passes the filter. The query matches the
// name case-insensitively, or the ID as a substring of the lower-cased query.
func (f Filter) Match(rec NeoRecord) bool {
	if f.HazardousOnly && !rec.IsPotentiallyHazardous {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(rec.Name), q) || strings.Contains(rec.ID, q)
}

// Apply returns the records that match, preserving order.
func (f Filter) Apply(records []NeoRecord) []NeoRecord {
	out := make([]NeoRecord, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

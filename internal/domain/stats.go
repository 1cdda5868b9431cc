package domain

// Stats summarizes a feed for the dashboard header.
type Stats struct {
	Total          int      `json:"total"`
	HazardousCount int      `json:"hazardous_count"`
	ClosestKm      *float64 `json:"closest_km,omitempty"`
	FastestKmh     float64  `json:"fastest_kmh"`
	Closest        string   `json:"closest,omitempty"`
	Fastest        string   `json:"fastest"`
}

// ComputeStats aggregates over every record of the feed, not a filtered view.
// Total is the upstream element count. Closest is absent when no record has a
// close approach.
func ComputeStats(feed Feed) Stats {
	s := Stats{Total: feed.ElementCount}
	for _, rec := range feed.Neos {
		if rec.IsPotentiallyHazardous {
			s.HazardousCount++
		}
		approach, ok := rec.FirstApproach()
		if !ok {
			continue
		}
		km := approach.MissDistance.Kilometers
		if s.ClosestKm == nil || km < *s.ClosestKm {
			s.ClosestKm = &km
		}
		if approach.VelocityKmPerHour > s.FastestKmh {
			s.FastestKmh = approach.VelocityKmPerHour
		}
	}

	if s.ClosestKm != nil {
		s.Closest = toFixed(*s.ClosestKm/1_000_000, 1) + "M km"
	}
	s.Fastest = toFixed(s.FastestKmh/1_000, 0) + "K km/h"
	return s
}

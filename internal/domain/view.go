package domain

// NeoSummary is the card shown for each record in a list.
type NeoSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	IsHazardous bool            `json:"is_hazardous"`
	Diameter    string          `json:"diameter"`
	Velocity    string          `json:"velocity,omitempty"`
	Distance    string          `json:"distance,omitempty"`
	Risk        *RiskAssessment `json:"risk,omitempty"`
}

// RiskBar is one row of the risk breakdown.
type RiskBar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// NeoDetail is the full view of a single record.
type NeoDetail struct {
	NeoSummary
	NasaJplURL        string    `json:"nasa_jpl_url,omitempty"`
	AbsoluteMagnitude float64   `json:"absolute_magnitude"`
	MissDistance      string    `json:"miss_distance,omitempty"`
	ApproachDate      string    `json:"approach_date,omitempty"`
	Breakdown         []RiskBar `json:"breakdown,omitempty"`
}

// Summarize builds the list card for a record.
func Summarize(rec NeoRecord) NeoSummary {
	s := NeoSummary{
		ID:          rec.ID,
		Name:        rec.Name,
		IsHazardous: rec.IsPotentiallyHazardous,
		Diameter:    FormatDiameter(rec.EstimatedDiameter.MinKm, rec.EstimatedDiameter.MaxKm),
		Risk:        rec.Assess(),
	}
	if approach, ok := rec.FirstApproach(); ok {
		s.Velocity = FormatVelocity(approach.VelocityKmPerHour)
		s.Distance = FormatDistance(approach.MissDistance.Kilometers)
	}
	return s
}

// SummarizeAll builds cards for records, preserving order.
func SummarizeAll(records []NeoRecord) []NeoSummary {
	out := make([]NeoSummary, len(records))
	for i, rec := range records {
		out[i] = Summarize(rec)
	}
	return out
}

// Detail builds the detail view for a record.
func Detail(rec NeoRecord) NeoDetail {
	d := NeoDetail{
		NeoSummary:        Summarize(rec),
		NasaJplURL:        rec.NasaJplURL,
		AbsoluteMagnitude: rec.AbsoluteMagnitude,
	}

	approach, ok := rec.FirstApproach()
	if !ok {
		return d
	}
	d.MissDistance = FormatDistance(approach.MissDistance.Kilometers) + " (" + FormatLunar(approach.MissDistance.Lunar) + ")"
	d.ApproachDate = approach.DateFull
	if d.ApproachDate == "" {
		d.ApproachDate = approach.Date
	}
	if d.Risk != nil {
		d.Breakdown = Breakdown(*d.Risk)
	}
	return d
}

// Breakdown lists the factors of an assessment against their caps.
func Breakdown(a RiskAssessment) []RiskBar {
	return []RiskBar{
		{Label: "Hazardous Status", Value: a.Factors.Hazardous, Max: HazardousFactorMax},
		{Label: "Diameter Factor", Value: a.Factors.Diameter, Max: DiameterFactorMax},
		{Label: "Proximity Factor", Value: a.Factors.Distance, Max: DistanceFactorMax},
		{Label: "Velocity Factor", Value: a.Factors.Velocity, Max: VelocityFactorMax},
	}
}

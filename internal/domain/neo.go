package domain

import "time"

// MaxFeedDays is the widest date window the NeoWs feed endpoint accepts.
const MaxFeedDays = 7

// DateLayout is the calendar date format used by NeoWs and the HTTP API.
const DateLayout = "2006-01-02"

// EstimatedDiameter holds the diameter bounds in km.
type EstimatedDiameter struct {
	MinKm float64 `json:"min_km" validate:"gte=0"`
	MaxKm float64 `json:"max_km" validate:"gte=0,gtefield=MinKm"`
}

// MissDistance is the distance between the object and Earth at closest approach.
type MissDistance struct {
	Astronomical float64 `json:"astronomical" validate:"gte=0"`
	Lunar        float64 `json:"lunar" validate:"gte=0"`
	Kilometers   float64 `json:"kilometers" validate:"gte=0"`
}

// CloseApproach is one close-approach event.
type CloseApproach struct {
	Date              string       `json:"date" validate:"required"`
	DateFull          string       `json:"date_full,omitempty"`
	VelocityKmPerHour float64      `json:"velocity_km_per_hour" validate:"gte=0"`
	MissDistance      MissDistance `json:"miss_distance"`
}

// NeoRecord is the normalized form of a NeoWs object.
type NeoRecord struct {
	ID                     string            `json:"id" validate:"required"`
	Name                   string            `json:"name" validate:"required"`
	NasaJplURL             string            `json:"nasa_jpl_url,omitempty"`
	AbsoluteMagnitude      float64           `json:"absolute_magnitude"`
	EstimatedDiameter      EstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardous bool              `json:"is_potentially_hazardous"`
	CloseApproaches        []CloseApproach   `json:"close_approaches" validate:"dive"`
}

// FirstApproach returns the first close-approach event, if any.
func (r NeoRecord) FirstApproach() (CloseApproach, bool) {
	if len(r.CloseApproaches) == 0 {
		return CloseApproach{}, false
	}
	return r.CloseApproaches[0], true
}

// RiskInput builds the scoring input from the diameter bounds and the first
// close approach. It reports false when the record has no approach.
func (r NeoRecord) RiskInput() (RiskInput, bool) {
	approach, ok := r.FirstApproach()
	if !ok {
		return RiskInput{}, false
	}
	return RiskInput{
		IsHazardous:       r.IsPotentiallyHazardous,
		DiameterMaxKm:     r.EstimatedDiameter.MaxKm,
		MissDistanceKm:    approach.MissDistance.Kilometers,
		VelocityKmPerHour: approach.VelocityKmPerHour,
	}, true
}

// Assess scores the record. The assessment is nil when there is no approach.
func (r NeoRecord) Assess() *RiskAssessment {
	in, ok := r.RiskInput()
	if !ok {
		return nil
	}
	a := CalculateRisk(in)
	return &a
}

// Feed is a date window of records as returned by the feed endpoint.
type Feed struct {
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	ElementCount int         `json:"element_count"`
	Neos         []NeoRecord `json:"neos"`
}

// AssessedNeo pairs a record with its assessment at a point in time.
type AssessedNeo struct {
	Neo        NeoRecord       `json:"neo"`
	Risk       *RiskAssessment `json:"risk,omitempty"`
	AssessedAt time.Time       `json:"assessed_at"`
}

// AssessFeed scores every record of a feed, stamping the package clock.
func AssessFeed(feed Feed) []AssessedNeo {
	now := clock.Now().UTC()
	out := make([]AssessedNeo, len(feed.Neos))
	for i, rec := range feed.Neos {
		out[i] = AssessedNeo{Neo: rec, Risk: rec.Assess(), AssessedAt: now}
	}
	return out
}

package neows

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NeoWs API response types. Numeric close-approach fields arrive as strings.

type feedResponse struct {
	ElementCount     int                          `json:"element_count"`
	NearEarthObjects map[string][]json.RawMessage `json:"near_earth_objects"`
}

type neoResponse struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name"`
	NasaJplURL             string             `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH     float64            `json:"absolute_magnitude_h"`
	EstimatedDiameter      diameterResponse   `json:"estimated_diameter"`
	IsPotentiallyHazardous bool               `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData      []approachResponse `json:"close_approach_data"`
}

type diameterResponse struct {
	Kilometers struct {
		Min float64 `json:"estimated_diameter_min"`
		Max float64 `json:"estimated_diameter_max"`
	} `json:"kilometers"`
}

type approachResponse struct {
	Date             string `json:"close_approach_date"`
	DateFull         string `json:"close_approach_date_full"`
	RelativeVelocity struct {
		KilometersPerHour string `json:"kilometers_per_hour"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Astronomical string `json:"astronomical"`
		Lunar        string `json:"lunar"`
		Kilometers   string `json:"kilometers"`
	} `json:"miss_distance"`
}

// RejectedRecord describes a feed record that failed decoding or validation.
type RejectedRecord struct {
	Date  string
	Index int
	Err   error
}

// DecodeFeed parses a feed response. Records that fail to decode or validate
// are skipped and reported in the returned slice; the error is non-nil only
// when the envelope itself is malformed. Dates are visited in ascending order
// and records within a date keep their upstream order. StartDate and EndDate
// are set to the first and last date present.
func DecodeFeed(r io.Reader) (domain.Feed, []RejectedRecord, error) {
	var resp feedResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return domain.Feed{}, nil, fmt.Errorf("decode feed: %w", err)
	}
	if resp.NearEarthObjects == nil {
		return domain.Feed{}, nil, errors.New("decode feed: missing near_earth_objects")
	}
	if resp.ElementCount < 0 {
		return domain.Feed{}, nil, fmt.Errorf("decode feed: negative element_count %d", resp.ElementCount)
	}

	dates := make([]string, 0, len(resp.NearEarthObjects))
	total := 0
	for date, raws := range resp.NearEarthObjects {
		dates = append(dates, date)
		total += len(raws)
	}
	slices.Sort(dates)

	// element_count is reported, not trusted for allocation.
	feed := domain.Feed{ElementCount: resp.ElementCount, Neos: make([]domain.NeoRecord, 0, total)}
	if len(dates) > 0 {
		feed.StartDate = dates[0]
		feed.EndDate = dates[len(dates)-1]
	}

	var rejected []RejectedRecord
	for _, date := range dates {
		for i, raw := range resp.NearEarthObjects[date] {
			rec, err := decodeNeo(raw)
			if err != nil {
				rejected = append(rejected, RejectedRecord{Date: date, Index: i, Err: err})
				continue
			}
			feed.Neos = append(feed.Neos, rec)
		}
	}
	return feed, rejected, nil
}

// DecodeNeo parses and validates a single lookup response.
func DecodeNeo(r io.Reader) (domain.NeoRecord, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.NeoRecord{}, fmt.Errorf("decode neo: %w", err)
	}
	return decodeNeo(raw)
}

func decodeNeo(raw json.RawMessage) (domain.NeoRecord, error) {
	var resp neoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.NeoRecord{}, fmt.Errorf("decode neo: %w", err)
	}

	rec, err := normalize(resp)
	if err != nil {
		return domain.NeoRecord{}, fmt.Errorf("neo %q: %w", resp.ID, err)
	}
	if err := validate.Struct(rec); err != nil {
		return domain.NeoRecord{}, fmt.Errorf("neo %q: validate: %w", resp.ID, err)
	}
	return rec, nil
}

// normalize converts the wire shape to a NeoRecord, parsing numeric strings strictly.
func normalize(resp neoResponse) (domain.NeoRecord, error) {
	rec := domain.NeoRecord{
		ID:                     strings.TrimSpace(resp.ID),
		Name:                   strings.TrimSpace(resp.Name),
		NasaJplURL:             resp.NasaJplURL,
		AbsoluteMagnitude:      resp.AbsoluteMagnitudeH,
		IsPotentiallyHazardous: resp.IsPotentiallyHazardous,
		EstimatedDiameter: domain.EstimatedDiameter{
			MinKm: resp.EstimatedDiameter.Kilometers.Min,
			MaxKm: resp.EstimatedDiameter.Kilometers.Max,
		},
		CloseApproaches: make([]domain.CloseApproach, 0, len(resp.CloseApproachData)),
	}

	for i, ca := range resp.CloseApproachData {
		velocity, err := parseNumber(ca.RelativeVelocity.KilometersPerHour)
		if err != nil {
			return domain.NeoRecord{}, fmt.Errorf("close approach %d: kilometers_per_hour: %w", i, err)
		}
		au, err := parseNumber(ca.MissDistance.Astronomical)
		if err != nil {
			return domain.NeoRecord{}, fmt.Errorf("close approach %d: astronomical: %w", i, err)
		}
		lunar, err := parseNumber(ca.MissDistance.Lunar)
		if err != nil {
			return domain.NeoRecord{}, fmt.Errorf("close approach %d: lunar: %w", i, err)
		}
		km, err := parseNumber(ca.MissDistance.Kilometers)
		if err != nil {
			return domain.NeoRecord{}, fmt.Errorf("close approach %d: kilometers: %w", i, err)
		}

		rec.CloseApproaches = append(rec.CloseApproaches, domain.CloseApproach{
			Date:              ca.Date,
			DateFull:          ca.DateFull,
			VelocityKmPerHour: velocity,
			MissDistance: domain.MissDistance{
				Astronomical: au,
				Lunar:        lunar,
				Kilometers:   km,
			},
		})
	}
	return rec, nil
}

// parseNumber parses a finite decimal string. NaN and infinities are rejected.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

package domain

import "math"

// LunarDistanceKm is the mean Earth-Moon distance used as the proximity unit.
const LunarDistanceKm = 384400

// Factor caps. The hazardous factor is a flat contribution.
const (
	HazardousFactorMax = 30
	DiameterFactorMax  = 25
	DistanceFactorMax  = 25
	VelocityFactorMax  = 20
)

const (
	// distanceHorizonLD is the proximity beyond which the distance factor is 0.
	distanceHorizonLD = 100
	// velocitySaturationKmh is the speed at which the velocity factor saturates.
	velocitySaturationKmh = 150000
)

// RiskLevel is the categorical band of a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevels lists every level in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Rank orders levels from 0 (low) to 3 (critical). Unknown levels rank -1.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// RiskInput holds the measurements the risk score is computed from.
type RiskInput struct {
	IsHazardous       bool    `json:"is_hazardous"`
	DiameterMaxKm     float64 `json:"diameter_max_km"`
	MissDistanceKm    float64 `json:"miss_distance_km"`
	VelocityKmPerHour float64 `json:"velocity_km_per_hour"`
}

// RiskFactors is the per-factor breakdown, each rounded for display.
// The sum may differ from RiskAssessment.Score by one because the score is
// rounded once from the unrounded sum.
type RiskFactors struct {
	Hazardous int `json:"hazardous"`
	Diameter  int `json:"diameter"`
	Distance  int `json:"distance"`
	Velocity  int `json:"velocity"`
}

// RiskAssessment is the result of CalculateRisk.
type RiskAssessment struct {
	Score   int         `json:"score"`
	Level   RiskLevel   `json:"level"`
	Factors RiskFactors `json:"factors"`
}

// CalculateRisk scores a set of measurements. It never fails: negative and NaN
// measurements are treated as zero, so every factor is non-negative and the
// score always lies in [0, 100].
func CalculateRisk(in RiskInput) RiskAssessment {
	diameterKm := nonNegative(in.DiameterMaxKm)
	missKm := nonNegative(in.MissDistanceKm)
	velocityKmh := nonNegative(in.VelocityKmPerHour)

	hazardous := 0.0
	if in.IsHazardous {
		hazardous = HazardousFactorMax
	}

	// Diameter is converted to meters inside the log so large objects saturate.
	diameter := math.Min(DiameterFactorMax, math.Log10(diameterKm*1000+1)*8)

	lunar := missKm / LunarDistanceKm
	distance := clamp(0, DistanceFactorMax, DistanceFactorMax*(1-lunar/distanceHorizonLD))

	velocity := math.Min(VelocityFactorMax, (velocityKmh/velocitySaturationKmh)*VelocityFactorMax)

	score := int(math.Round(clamp(0, 100, hazardous+diameter+distance+velocity)))

	return RiskAssessment{
		Score: score,
		Level: LevelForScore(score),
		Factors: RiskFactors{
			Hazardous: int(math.Round(hazardous)),
			Diameter:  int(math.Round(diameter)),
			Distance:  int(math.Round(distance)),
			Velocity:  int(math.Round(velocity)),
		},
	}
}

// LevelForScore maps a score to its band. Lower bounds are inclusive.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

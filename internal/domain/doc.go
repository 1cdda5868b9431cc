// Package domain models near-Earth object (NEO) data from NASA's NeoWs API
// and the heuristic risk score computed for each object.
//
// # Data Source
//
// Records originate from the NeoWs feed (objects grouped by close-approach
// date, at most seven days per request) and lookup (one object by ID)
// endpoints at https://api.nasa.gov/neo/rest/v1. The neows adapter decodes and
// validates the raw payload into [NeoRecord]; nothing in this package performs
// I/O.
//
// # Risk Score
//
// [CalculateRisk] sums four bounded factors:
//
//	Hazardous: 30 when NASA flags the object as potentially hazardous
//	Diameter:  min(25, log10(diameter_m + 1) * 8)
//	Distance:  clamp(0, 25, 25 * (1 - LD/100)), LD = km / 384400
//	Velocity:  min(20, kmh / 150000 * 20)
//
// The score is the rounded sum clamped to [0, 100] and maps to a level:
//
//	score <  25  low
//	score <  50  medium
//	score <  75  high
//	score >= 75  critical
//
// Only the first close-approach event of a record feeds the score. Records
// without an approach have no assessment.
//
// # Display Strings
//
// The Format* helpers reproduce JavaScript Number.prototype.toFixed rounding
// so that rendered values match the web dashboard digit for digit.
package domain

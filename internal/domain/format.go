package domain

import (
	"math"
	"math/big"
	"strings"
)

// FormatDistance renders a distance in km as "1.5M km", "5K km" or "500 km".
func FormatDistance(km float64) string {
	switch {
	case km >= 1_000_000:
		return toFixed(km/1_000_000, 1) + "M km"
	case km >= 1_000:
		return toFixed(km/1_000, 0) + "K km"
	default:
		return toFixed(km, 0) + " km"
	}
}

// FormatVelocity renders a speed in km/h as "1.0K km/h" or "999 km/h".
func FormatVelocity(kmh float64) string {
	if kmh >= 1_000 {
		return toFixed(kmh/1_000, 1) + "K km/h"
	}
	return toFixed(kmh, 0) + " km/h"
}

// FormatDiameter renders a diameter range. Objects under 10 m across are shown
// in meters, everything else in km with three decimals.
func FormatDiameter(minKm, maxKm float64) string {
	if maxKm < 0.01 {
		return toFixed(minKm*1000, 0) + "-" + toFixed(maxKm*1000, 0) + " m"
	}
	return toFixed(minKm, 3) + "-" + toFixed(maxKm, 3) + " km"
}

// FormatLunar renders a distance in lunar distances, e.g. "12.3 LD".
func FormatLunar(ld float64) string {
	return toFixed(ld, 1) + " LD"
}

// toFixed formats v with the given number of decimals the way JavaScript's
// Number.prototype.toFixed does: the exact binary value is rounded, and a tie
// goes to the larger magnitude. strconv rounds ties to even, which differs for
// values like 2.5.
func toFixed(v float64, digits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r := new(big.Rat).SetFloat64(v)
	r.Mul(r, new(big.Rat).SetInt(scale))

	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	s := q.String()
	if digits == 0 {
		return sign + s
	}
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	return sign + s[:len(s)-digits] + "." + s[len(s)-digits:]
}

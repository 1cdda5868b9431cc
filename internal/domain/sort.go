package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// SortKey selects the ordering of a record list.
type SortKey string

const (
	SortByDistance SortKey = "distance" // closest first
	SortBySize     SortKey = "size"     // largest first
	SortByVelocity SortKey = "velocity" // fastest first
	SortByRisk     SortKey = "risk"     // highest score first
)

// ParseSortKey validates a sort key. Empty selects SortByRisk.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortByRisk, nil
	case SortByDistance, SortBySize, SortByVelocity, SortByRisk:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// SortNeos returns a stably sorted copy of records. The input is not modified.
func SortNeos(records []NeoRecord, key SortKey) []NeoRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, Comparator(key))
	return out
}

// Comparator returns the comparison function for key. For distance, velocity
// and risk, a pair where either record lacks a close approach compares equal.
// Unknown keys compare everything equal, which keeps input order.
func Comparator(key SortKey) func(a, b NeoRecord) int {
	switch key {
	case SortByDistance:
		return func(a, b NeoRecord) int {
			aa, bb, ok := approaches(a, b)
			if !ok {
				return 0
			}
			return cmp.Compare(aa.MissDistance.Kilometers, bb.MissDistance.Kilometers)
		}
	case SortBySize:
		return func(a, b NeoRecord) int {
			return cmp.Compare(b.EstimatedDiameter.MaxKm, a.EstimatedDiameter.MaxKm)
		}
	case SortByVelocity:
		return func(a, b NeoRecord) int {
			aa, bb, ok := approaches(a, b)
			if !ok {
				return 0
			}
			return cmp.Compare(bb.VelocityKmPerHour, aa.VelocityKmPerHour)
		}
	case SortByRisk:
		return func(a, b NeoRecord) int {
			ai, aok := a.RiskInput()
			bi, bok := b.RiskInput()
			if !aok || !bok {
				return 0
			}
			return cmp.Compare(CalculateRisk(bi).Score, CalculateRisk(ai).Score)
		}
	default:
		return func(NeoRecord, NeoRecord) int { return 0 }
	}
}

func approaches(a, b NeoRecord) (CloseApproach, CloseApproach, bool) {
	aa, aok := a.FirstApproach()
	bb, bok := b.FirstApproach()
	return aa, bb, aok && bok
}

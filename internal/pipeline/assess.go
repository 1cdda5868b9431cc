package pipeline

import "github.com/couchcryptid/neo-risk-service/internal/domain"

// tallyLevels counts scored objects per risk level. Unscored objects are skipped.
func tallyLevels(assessed []domain.AssessedNeo) map[domain.RiskLevel]int {
	counts := make(map[domain.RiskLevel]int, len(domain.RiskLevels))
	for _, a := range assessed {
		if a.Risk != nil {
			counts[a.Risk.Level]++
		}
	}
	return counts
}

// record updates the per-level counters and replaces the tracked gauges with
// the current window.
func (r *Refresher) record(assessed []domain.AssessedNeo) map[domain.RiskLevel]int {
	counts := tallyLevels(assessed)
	for _, level := range domain.RiskLevels {
		n := float64(counts[level])
		r.metrics.Assessments.WithLabelValues(string(level)).Add(n)
		r.metrics.NeosTracked.WithLabelValues(string(level)).Set(n)
	}
	return counts
}

package aggregate

import (
	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// SeverityCount is one row of the severity composition.
type SeverityCount struct {
	Severity domain.Severity `json:"accident_severity"`
	Count    int             `json:"count"`
}

// SeverityComposition counts records per canonical severity, reindexed to
// the fixed Fatal/Serious/Slight order with zero-filled gaps. Unknown
// records contribute to no row; the composition describes recovered
// outcomes only.
func SeverityComposition(tbl domain.Table) []SeverityCount {
	counts := make(map[domain.Severity]int, len(domain.Severities))
	for i := range tbl {
		counts[tbl[i].Severity]++
	}

	out := make([]SeverityCount, 0, len(domain.Severities))
	for _, sev := range domain.Severities {
		out = append(out, SeverityCount{Severity: sev, Count: counts[sev]})
	}
	return out
}

// Package core implements the multi-source detection merge engine: name and
// version normalization, evidence consolidation, per-domain deduplication,
// and cross-domain confidence propagation. It performs no I/O and is safe to
// call concurrently on independent inputs.
package core

// EvidenceItem is a single observed fact supporting a detection. The
// (Field, Detail, Match) triple identifies semantic equivalence when
// evidence is consolidated.
type EvidenceItem struct {
	Field      string `json:"field"`
	Detail     string `json:"detail"`
	Match      string `json:"match"`
	Confidence int    `json:"confidence"`
	Count      int    `json:"count,omitempty"`
}

// RawDetection is one detector's unmerged observation of a technology on a
// domain. It is produced by a detector adapter and consumed exactly once by
// the Deduplicator.
type RawDetection struct {
	Name        string         `json:"name"`
	Confidence  int            `json:"confidence"`
	Category    string         `json:"category"`
	Versions    []string       `json:"versions,omitempty"`
	Evidence    []EvidenceItem `json:"evidence,omitempty"`
	Source      string         `json:"source"`
	Website     string         `json:"website,omitempty"`
	Description string         `json:"description,omitempty"`
}

// MergedTechnology is the deduplicated, evidence-consolidated result for one
// canonical technology on one domain.
type MergedTechnology struct {
	Name        string         `json:"name"`
	Confidence  int            `json:"confidence"`
	Category    string         `json:"category"`
	Versions    []string       `json:"versions,omitempty"`
	Evidence    []EvidenceItem `json:"evidence,omitempty"`
	Sources     []string       `json:"sources"`
	Website     string         `json:"website,omitempty"`
	Description string         `json:"description,omitempty"`
}

// TechnologyProfile aggregates cross-domain statistics for one canonical
// technology. Profiles are built in a batch by BuildProfiles and read by
// ApplyProfiles; Apply never mutates them.
type TechnologyProfile struct {
	Name                 string   `json:"name"`
	DomainOccurrences    int      `json:"domain_occurrences"`
	DistinctSources      []string `json:"distinct_sources"`
	AverageEvidenceCount float64  `json:"average_evidence_count"`
}

// DomainResult pairs a domain identifier with its merged technology list,
// the unit of input for profile building.
type DomainResult struct {
	Domain       string             `json:"domain"`
	Technologies []MergedTechnology `json:"technologies"`
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

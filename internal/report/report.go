// Package report defines the per-domain analysis artifact, its JSON and CSV
// serializations, and aggregate statistics across artifacts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/stackscan/internal/core"
)

// analysisSuffix tags per-domain artifacts so propagation and reporting can
// find them in a results directory.
const analysisSuffix = "_analysis.json"

// AdjustedSuffix tags artifacts rewritten by confidence propagation.
const AdjustedSuffix = "_adjusted.json"

// DomainReport is the scan artifact for one domain.
type DomainReport struct {
	Domain       string                  `json:"domain"`
	URL          string                  `json:"url"`
	FinalURL     string                  `json:"final_url,omitempty"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Technologies []core.MergedTechnology `json:"technologies"`
	Summary      Summary                 `json:"summary"`
	Warnings     []string                `json:"warnings,omitempty"`
}

// Summary captures headline statistics for one domain's technologies.
type Summary struct {
	TotalTechnologies      int            `json:"total_technologies"`
	Categories             int            `json:"categories"`
	Sources                []string       `json:"sources,omitempty"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
}

// BuildSummary derives the summary block from a merged technology list.
func BuildSummary(technologies []core.MergedTechnology) Summary {
	categories := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, tech := range technologies {
		if tech.Category != "" {
			categories[tech.Category] = struct{}{}
		}
		for _, s := range tech.Sources {
			sources[s] = struct{}{}
		}
	}

	sourceList := make([]string, 0, len(sources))
	for s := range sources {
		sourceList = append(sourceList, s)
	}
	sort.Strings(sourceList)

	return Summary{
		TotalTechnologies:      len(technologies),
		Categories:             len(categories),
		Sources:                sourceList,
		ConfidenceDistribution: ConfidenceDistribution(technologies),
	}
}

// ConfidenceDistribution buckets technologies by confidence band.
func ConfidenceDistribution(technologies []core.MergedTechnology) map[string]int {
	dist := map[string]int{
		"high (80-100)":  0,
		"medium (50-79)": 0,
		"low (10-49)":    0,
		"very_low (0-9)": 0,
	}
	for _, tech := range technologies {
		switch {
		case tech.Confidence >= 80:
			dist["high (80-100)"]++
		case tech.Confidence >= 50:
			dist["medium (50-79)"]++
		case tech.Confidence >= 10:
			dist["low (10-49)"]++
		default:
			dist["very_low (0-9)"]++
		}
	}
	return dist
}

// ArtifactPath returns the JSON artifact location for a domain.
func ArtifactPath(outputDir, domain string) string {
	return filepath.Join(outputDir, sanitizeDomain(domain)+analysisSuffix)
}

// AdjustedPath returns the post-propagation artifact location for a domain.
func AdjustedPath(outputDir, domain string) string {
	return filepath.Join(outputDir, sanitizeDomain(domain)+AdjustedSuffix)
}

func sanitizeDomain(domain string) string {
	return strings.ReplaceAll(domain, string(os.PathSeparator), "_")
}

// WriteJSON persists a report with stable indentation.
func WriteJSON(path string, rep DomainReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteCSV persists the technology table of a report.
func WriteCSV(path string, rep DomainReport) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"name", "confidence", "category", "versions", "sources", "evidence_count"}); err != nil {
		return err
	}
	for _, tech := range rep.Technologies {
		record := []string{
			tech.Name,
			strconv.Itoa(tech.Confidence),
			tech.Category,
			strings.Join(tech.Versions, "|"),
			strings.Join(tech.Sources, "|"),
			strconv.Itoa(len(tech.Evidence)),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads one report artifact.
func Load(path string) (DomainReport, error) {
	var rep DomainReport
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return rep, err
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("parse report %s: %w", path, err)
	}
	return rep, nil
}

// LoadDirectory reads every analysis artifact in a directory, sorted by
// domain for deterministic propagation batches. Adjusted artifacts are
// skipped so repeated propagation runs stay idempotent.
func LoadDirectory(dir string) ([]DomainReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var reports []DomainReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), analysisSuffix) {
			continue
		}
		rep, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Domain < reports[j].Domain })
	return reports, nil
}

// ToDomainResults converts loaded reports into the core propagation input.
func ToDomainResults(reports []DomainReport) []core.DomainResult {
	results := make([]core.DomainResult, 0, len(reports))
	for _, rep := range reports {
		results = append(results, core.DomainResult{
			Domain:       rep.Domain,
			Technologies: rep.Technologies,
		})
	}
	return results
}

// Package analyzer orchestrates one domain's analysis: fetch the page, run
// every detector, and hand the combined raw detections to the merge engine.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/detector"
	"github.com/example/stackscan/internal/fetch"
	"github.com/example/stackscan/internal/report"
)

// Analyzer runs the full per-domain pipeline. It is safe for sequential
// reuse across targets; the underlying detectors own any shared state.
type Analyzer struct {
	fetcher       *fetch.Fetcher
	detectors     []detector.Detector
	dedup         *core.Deduplicator
	minConfidence int
}

// New assembles an analyzer. A nil fetcher gets defaults; minConfidence
// filters merged technologies below the threshold out of the final report.
func New(fetcher *fetch.Fetcher, detectors []detector.Detector, dedup *core.Deduplicator, minConfidence int) *Analyzer {
	if fetcher == nil {
		fetcher = fetch.NewFetcher(nil)
	}
	if dedup == nil {
		dedup = core.NewDeduplicator(nil)
	}
	return &Analyzer{
		fetcher:       fetcher,
		detectors:     detectors,
		dedup:         dedup,
		minConfidence: minConfidence,
	}
}

// AnalyzeDomain produces the merged technology report for one target. A
// failed fetch does not abort the run: detectors that operate on the URL
// alone (external scanner, cloud API) still contribute, and the fetch
// failure is recorded as a warning.
func (a *Analyzer) AnalyzeDomain(ctx context.Context, target string) (report.DomainReport, error) {
	url := fetch.NormalizeTargetURL(target)
	rep := report.DomainReport{
		Domain:      fetch.DomainFromTarget(target),
		URL:         url,
		GeneratedAt: time.Now().UTC(),
	}

	page, err := a.fetcher.Fetch(ctx, target)
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("fetch: %v", err))
	} else {
		rep.FinalURL = page.FinalURL
	}

	detections, warnings, err := detector.Run(ctx, a.detectors, detector.Target{URL: url, Page: page})
	if err != nil {
		return rep, err
	}
	for _, w := range warnings {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", w.Detector, w.Err))
	}

	merged := a.dedup.Deduplicate(detections)
	if a.minConfidence > 0 {
		merged = filterByConfidence(merged, a.minConfidence)
	}

	rep.Technologies = merged
	rep.Summary = report.BuildSummary(merged)
	return rep, nil
}

func filterByConfidence(technologies []core.MergedTechnology, min int) []core.MergedTechnology {
	var kept []core.MergedTechnology
	for _, tech := range technologies {
		if tech.Confidence >= min {
			kept = append(kept, tech)
		}
	}
	return kept
}

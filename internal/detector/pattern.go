package detector

import (
	"context"
	"errors"
	"strings"

	wappalyze "github.com/projectdiscovery/wappalyzergo"

	"github.com/example/stackscan/internal/core"
)

// patternConfidence is the base confidence for fingerprint-database hits.
// The dataset does not expose per-pattern confidence, so all hits start
// equal and corroboration is left to the merge engine.
const patternConfidence = 85

// PatternDetector matches the fetched page against the bundled wappalyzer
// fingerprint database.
type PatternDetector struct {
	client *wappalyze.Wappalyze
}

// NewPatternDetector compiles the fingerprint database once; the resulting
// detector is safe for reuse across targets.
func NewPatternDetector() (*PatternDetector, error) {
	client, err := wappalyze.New()
	if err != nil {
		return nil, err
	}
	return &PatternDetector{client: client}, nil
}

// Name implements Detector.
func (d *PatternDetector) Name() string { return "pattern" }

// Detect fingerprints the target's headers and body.
func (d *PatternDetector) Detect(ctx context.Context, target Target) ([]core.RawDetection, error) {
	if target.Page == nil {
		return nil, errors.New("pattern detection requires fetched page content")
	}

	matches := d.client.FingerprintWithInfo(target.Page.Headers, []byte(target.Page.HTML))

	detections := make([]core.RawDetection, 0, len(matches))
	for key, info := range matches {
		name, version, _ := strings.Cut(key, ":")

		category := "Unknown"
		if len(info.Categories) > 0 {
			category = info.Categories[0]
		}

		det := core.RawDetection{
			Name:        name,
			Confidence:  patternConfidence,
			Category:    category,
			Source:      d.Name(),
			Website:     info.Website,
			Description: info.Description,
			Evidence: []core.EvidenceItem{{
				Field:      "pattern",
				Detail:     "fingerprint database match",
				Match:      key,
				Confidence: patternConfidence,
			}},
		}
		if version != "" {
			det.Versions = []string{version}
		}
		detections = append(detections, det)
	}
	return detections, nil
}

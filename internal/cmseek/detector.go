package cmseek

import (
	"context"

	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/detector"
)

// ScanDetector adapts the cmseek runner to the detector boundary.
type ScanDetector struct {
	runner Runner
}

// NewScanDetector wraps a runner; nil selects the real command runner.
func NewScanDetector(runner Runner) *ScanDetector {
	if runner == nil {
		runner = NewRunner()
	}
	return &ScanDetector{runner: runner}
}

// Name implements detector.Detector.
func (d *ScanDetector) Name() string { return "cmseek" }

// Detect invokes the scanner binary and parses its output. The page content
// is not needed; cmseek fetches the target itself.
func (d *ScanDetector) Detect(ctx context.Context, target detector.Target) ([]core.RawDetection, error) {
	output, err := d.runner.Analyze(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	return ParseOutput(output), nil
}

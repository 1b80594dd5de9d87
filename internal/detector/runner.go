package detector

import (
	"context"

	"github.com/example/stackscan/internal/core"
)

// Warning records a detector that produced no detections because it failed.
// Failures never reach the merge engine; they are surfaced to the caller for
// logging only.
type Warning struct {
	Detector string
	Err      error
}

// Run executes detectors sequentially against one target and collects their
// raw detections. A detector error contributes zero detections and a
// warning. Run stops early only on context cancellation.
func Run(ctx context.Context, detectors []Detector, target Target) ([]core.RawDetection, []Warning, error) {
	var detections []core.RawDetection
	var warnings []Warning

	for _, det := range detectors {
		select {
		case <-ctx.Done():
			return detections, warnings, ctx.Err()
		default:
		}

		found, err := det.Detect(ctx, target)
		if err != nil {
			warnings = append(warnings, Warning{Detector: det.Name(), Err: err})
			continue
		}
		detections = append(detections, found...)
	}
	return detections, warnings, nil
}

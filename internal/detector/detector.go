// Package detector defines the boundary between detection sources and the
// merge engine. Every source, whatever its transport, reduces to a stream of
// core.RawDetection records.
package detector

import (
	"context"
	"fmt"

	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/fetch"
)

// Target is the unit of work handed to each detector. Page is nil when the
// fetch failed; detectors that need page content must report an error in
// that case instead of fabricating detections.
type Target struct {
	URL  string
	Page *fetch.Page
}

// Detector is implemented by every detection source.
type Detector interface {
	Name() string
	Detect(ctx context.Context, target Target) ([]core.RawDetection, error)
}

// Factory builds a detector instance, failing when the source cannot be
// initialized (missing dataset, unconfigured API key).
type Factory func() (Detector, error)

// Registry maps detector names to constructors.
type Registry map[string]Factory

// Build instantiates detectors from the provided names, skipping duplicates.
func (r Registry) Build(names []string) ([]Detector, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var detectors []Detector
	seen := map[string]struct{}{}
	for _, name := range names {
		factory, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("unknown detector: %s", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		det, err := factory()
		if err != nil {
			return nil, fmt.Errorf("initialize detector %s: %w", name, err)
		}
		detectors = append(detectors, det)
	}
	return detectors, nil
}

package cmseek

import (
	"context"
	"errors"
	"testing"

	"github.com/example/stackscan/internal/detector"
)

const sampleOutput = `
 CMSeeK Version 1.1.3

[+]  CMS Detected, CMS ID: wp
[+]  Version: 5.8.2
[i]  Scan finished
`

func TestParseOutputKnownCMSID(t *testing.T) {
	detections := ParseOutput([]byte(sampleOutput))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}

	got := detections[0]
	if got.Name != "WordPress" {
		t.Errorf("name = %q, want WordPress", got.Name)
	}
	if got.Confidence != detectionConfidence {
		t.Errorf("confidence = %d, want %d", got.Confidence, detectionConfidence)
	}
	if got.Category != "CMS" {
		t.Errorf("category = %q, want CMS", got.Category)
	}
	if got.Source != "cmseek" {
		t.Errorf("source = %q, want cmseek", got.Source)
	}
	if got.Website != "https://wordpress.org" {
		t.Errorf("website = %q", got.Website)
	}
	if len(got.Versions) != 1 || got.Versions[0] != "5.8.2" {
		t.Errorf("versions = %v, want [5.8.2]", got.Versions)
	}
	if len(got.Evidence) != 2 {
		t.Fatalf("evidence = %d items, want 2", len(got.Evidence))
	}
	if got.Evidence[0].Field != "cmseek" || got.Evidence[1].Field != "cmseek_version" {
		t.Errorf("evidence fields = %q, %q", got.Evidence[0].Field, got.Evidence[1].Field)
	}
}

func TestParseOutputNamedProduct(t *testing.T) {
	output := "[+]  Probable CMS: Joomla\n"

	detections := ParseOutput([]byte(output))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].Name != "Joomla" {
		t.Errorf("name = %q, want Joomla", detections[0].Name)
	}
	if detections[0].Website == "" {
		t.Error("known product should carry a website")
	}
}

func TestParseOutputGenericName(t *testing.T) {
	output := "[+]  Detected: ExoticPress\n"

	detections := ParseOutput([]byte(output))
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].Name != "ExoticPress" {
		t.Errorf("name = %q, want ExoticPress", detections[0].Name)
	}
	if detections[0].Confidence != unknownConfidence {
		t.Errorf("confidence = %d, want %d", detections[0].Confidence, unknownConfidence)
	}
}

func TestParseOutputVersionBeforeDetectionIgnored(t *testing.T) {
	output := "Version: 2.0.1\nno detections here\n"

	if detections := ParseOutput([]byte(output)); len(detections) != 0 {
		t.Fatalf("expected no detections, got %v", detections)
	}
}

func TestParseOutputNoiseSkipped(t *testing.T) {
	output := "initializing\nrandom line 12.34 status\ndone\n"

	if detections := ParseOutput([]byte(output)); len(detections) != 0 {
		t.Fatalf("expected no detections from noise, got %v", detections)
	}
}

type fakeRunner struct {
	output []byte
	err    error
}

func (f *fakeRunner) EnsureBinary() error { return nil }

func (f *fakeRunner) Analyze(ctx context.Context, url string) ([]byte, error) {
	return f.output, f.err
}

func TestScanDetectorParsesRunnerOutput(t *testing.T) {
	d := NewScanDetector(&fakeRunner{output: []byte(sampleOutput)})

	detections, err := d.Detect(context.Background(), detector.Target{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(detections) != 1 || detections[0].Name != "WordPress" {
		t.Fatalf("unexpected detections: %+v", detections)
	}
}

func TestScanDetectorPropagatesRunnerError(t *testing.T) {
	d := NewScanDetector(&fakeRunner{err: errors.New("binary missing")})

	if _, err := d.Detect(context.Background(), detector.Target{URL: "https://example.com"}); err == nil {
		t.Fatal("expected runner error to surface")
	}
}

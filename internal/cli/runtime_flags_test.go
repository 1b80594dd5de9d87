package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func newFlagTestCmd() (*cobra.Command, *runtimeFlagSet) {
	flags := &runtimeFlagSet{}
	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	bindRuntimeFlags(cmd, flags)
	return cmd, flags
}

func TestToOverridesOnlyChangedFlags(t *testing.T) {
	cmd, flags := newFlagTestCmd()
	cmd.SetArgs([]string{"--targets", "one.test,two.test", "--min-confidence", "40"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	ov := flags.toOverrides(cmd)

	if len(ov.Targets) != 2 {
		t.Errorf("targets = %v, want 2 entries", ov.Targets)
	}
	if !ov.MinConfidenceSet || ov.MinConfidence != 40 {
		t.Errorf("min confidence = %d (set=%t), want 40 set", ov.MinConfidence, ov.MinConfidenceSet)
	}

	// Untouched flags must not leak zero values into the overrides.
	if ov.TimeoutSet {
		t.Error("timeout should not be marked set")
	}
	if ov.Quiet != nil {
		t.Error("quiet should be nil when not passed")
	}
	if ov.OutputDir != "" {
		t.Errorf("output dir = %q, want empty", ov.OutputDir)
	}
}

func TestToOverridesQuietFlag(t *testing.T) {
	cmd, flags := newFlagTestCmd()
	cmd.SetArgs([]string{"--quiet"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	ov := flags.toOverrides(cmd)
	if ov.Quiet == nil || !*ov.Quiet {
		t.Error("quiet override should be true")
	}
}

func TestToOverridesDetectorsAndFormats(t *testing.T) {
	cmd, flags := newFlagTestCmd()
	cmd.SetArgs([]string{"--detectors", "pattern, whatweb", "--formats", "json csv"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	ov := flags.toOverrides(cmd)
	if len(ov.Detectors) != 2 || ov.Detectors[0] != "pattern" || ov.Detectors[1] != "whatweb" {
		t.Errorf("detectors = %v", ov.Detectors)
	}
	if len(ov.Formats) != 2 || ov.Formats[0] != "json" || ov.Formats[1] != "csv" {
		t.Errorf("formats = %v", ov.Formats)
	}
}

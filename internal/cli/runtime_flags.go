package cli

import (
	"fmt"

	"github.com/example/stackscan/internal/config"
	"github.com/spf13/cobra"
)

// runtimeFlagSet tracks shared flags before they are converted into config overrides.
type runtimeFlagSet struct {
	targets       string
	targetsFile   string
	detectors     string
	minConfidence int
	outputDir     string
	formats       string
	timeout       int
	summaryFile   string
	quiet         bool
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.targets, "targets", "", "Comma-separated list of targets (overrides config)")
	cmd.Flags().StringVar(&flags.targetsFile, "targets-file", "", "Path to a file with one target per line")
	cmd.Flags().StringVar(&flags.detectors, "detectors", "", "Comma-separated detectors to run (pattern,whatweb,whatcms,cmseek)")
	cmd.Flags().IntVar(&flags.minConfidence, "min-confidence", 0, "Drop merged technologies below this confidence (0-100)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for scan artifacts")
	cmd.Flags().StringVar(&flags.formats, "formats", "", "Comma-separated output formats (json,csv)")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, fmt.Sprintf("Per-target timeout in seconds (1-%d)", config.MaxTimeoutSeconds))
	cmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "Optional summary JSON output path")
	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Suppress the banner and result tables")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("targets") {
		ov.Targets = config.ParseTargetsList(f.targets)
	}

	if cmd.Flags().Changed("targets-file") {
		ov.TargetsFile = f.targetsFile
	}

	if cmd.Flags().Changed("detectors") {
		ov.Detectors = config.ParseDetectors(f.detectors)
	}

	if cmd.Flags().Changed("min-confidence") {
		ov.MinConfidence = f.minConfidence
		ov.MinConfidenceSet = true
	}

	if cmd.Flags().Changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if cmd.Flags().Changed("formats") {
		ov.Formats = config.ParseFormats(f.formats)
	}

	if cmd.Flags().Changed("timeout") {
		ov.Timeout = f.timeout
		ov.TimeoutSet = true
	}

	if cmd.Flags().Changed("summary-file") {
		ov.SummaryFile = f.summaryFile
	}

	if cmd.Flags().Changed("quiet") {
		ov.Quiet = &f.quiet
	}

	return ov
}

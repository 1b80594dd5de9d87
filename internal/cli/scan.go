package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/stackscan/internal/analyzer"
	"github.com/example/stackscan/internal/banner"
	"github.com/example/stackscan/internal/cmseek"
	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/detector"
	"github.com/example/stackscan/internal/events"
	"github.com/example/stackscan/internal/fetch"
	"github.com/example/stackscan/internal/report"
	"github.com/example/stackscan/internal/whatweb"
)

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fingerprint targets and write merged per-domain reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			if !cfg.Quiet {
				banner.Print(version)
			}

			detectors, err := buildDetectors(cfg)
			if err != nil {
				return err
			}

			a := analyzer.New(fetch.NewFetcher(nil), detectors, nil, cfg.MinConfidence)
			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Info("scan-start", "Starting scan", map[string]interface{}{
				"targets":   len(cfg.Targets),
				"detectors": cfg.Detectors,
			}); err != nil {
				return err
			}

			var artifacts []string
			for _, target := range cfg.Targets {
				rep, err := analyzeTarget(cmd.Context(), a, target, cfg.TimeoutSeconds)
				if err != nil {
					if emitErr := emitter.Warn("target-failed", err.Error(), map[string]interface{}{"target": target}); emitErr != nil {
						return emitErr
					}
					continue
				}

				for _, warning := range rep.Warnings {
					if err := emitter.Warn("detector-degraded", warning, map[string]interface{}{"domain": rep.Domain}); err != nil {
						return err
					}
				}

				written, err := writeArtifacts(cfg, rep)
				if err != nil {
					return err
				}
				artifacts = append(artifacts, written...)

				for _, path := range written {
					if err := emitter.Info("artifact-written", "", map[string]interface{}{"path": path, "domain": rep.Domain}); err != nil {
						return err
					}
				}

				if !cfg.Quiet {
					report.PrintTable(cmd.OutOrStdout(), rep)
				}
			}

			if cfg.SummaryFile != "" {
				if err := writeSummary(cfg.SummaryFile, cfg, artifacts); err != nil {
					return err
				}
			}

			return emitter.Info("scan-finished", "Scan complete", map[string]interface{}{"artifacts": len(artifacts)})
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

// buildDetectors resolves configured detector names into instances. The
// whatcms detector needs an API key, so requesting it without one is a
// configuration error rather than a silent skip.
func buildDetectors(cfg config.RuntimeConfig) ([]detector.Detector, error) {
	registry := detector.Registry{
		"pattern": func() (detector.Detector, error) { return detector.NewPatternDetector() },
		"whatweb": func() (detector.Detector, error) { return whatweb.NewScanDetector(whatweb.NewRunner()), nil },
		"cmseek":  func() (detector.Detector, error) { return cmseek.NewScanDetector(cmseek.NewRunner()), nil },
		"whatcms": func() (detector.Detector, error) {
			return detector.NewWhatCMSDetector(cfg.WhatCMSAPIKey, cfg.WhatCMSAPIURL, nil)
		},
	}
	return registry.Build(cfg.Detectors)
}

func analyzeTarget(parent context.Context, a *analyzer.Analyzer, target string, timeoutSeconds int) (report.DomainReport, error) {
	ctx, cancel := context.WithTimeout(parent, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()
	return a.AnalyzeDomain(ctx, target)
}

func writeArtifacts(cfg config.RuntimeConfig, rep report.DomainReport) ([]string, error) {
	var written []string
	for _, format := range cfg.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		switch format {
		case "":
			continue
		case "json":
			path := report.ArtifactPath(cfg.OutputDir, rep.Domain)
			if err := report.WriteJSON(path, rep); err != nil {
				return nil, err
			}
			written = append(written, path)
		case "csv":
			path := strings.TrimSuffix(report.ArtifactPath(cfg.OutputDir, rep.Domain), ".json") + ".csv"
			if err := report.WriteCSV(path, rep); err != nil {
				return nil, err
			}
			written = append(written, path)
		default:
			return nil, fmt.Errorf("unsupported format %s", format)
		}
	}
	return written, nil
}

func writeSummary(path string, cfg config.RuntimeConfig, artifacts []string) error {
	summary := map[string]interface{}{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"targets":     cfg.Targets,
		"detectors":   cfg.Detectors,
		"artifacts":   artifacts,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

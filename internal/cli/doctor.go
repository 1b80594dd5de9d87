package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/example/stackscan/internal/cmseek"
	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/whatweb"
	"github.com/spf13/cobra"
)

type doctorCheck struct {
	Name   string
	Status string // "✓", "✗", or "⊘"
	Detail string
	Error  error
}

func newDoctorCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var timeout int

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate dependencies, credentials, and network reachability",
		Long: `The doctor subcommand performs comprehensive validation of the stackscan environment:
- Go runtime version
- whatweb binary presence and functionality
- cmseek binary presence
- WhatCMS API credentials
- Network connectivity to configured targets
- Configuration validity and output directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
			defer cancel()

			checks := runDoctorChecks(ctx, &cfg)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. System is ready.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().IntVar(&timeout, "check-timeout", 30, "Timeout in seconds for network checks")

	return cmd
}

func runDoctorChecks(ctx context.Context, cfg *config.RuntimeConfig) []doctorCheck {
	checks := []doctorCheck{checkGoVersion()}

	whatwebWanted := detectorEnabled(cfg.Detectors, "whatweb")
	whatwebCheck := checkWhatWebBinary(whatwebWanted)
	checks = append(checks, whatwebCheck)

	if whatwebWanted && whatwebCheck.Error == nil {
		checks = append(checks, checkWhatWebFunctionality(ctx))
	}

	checks = append(checks, checkCMSeeKBinary(detectorEnabled(cfg.Detectors, "cmseek")))

	if detectorEnabled(cfg.Detectors, "whatcms") {
		checks = append(checks, checkWhatCMSKey(cfg.WhatCMSAPIKey))
	}

	if len(cfg.Targets) > 0 {
		checks = append(checks, checkNetworkReachability(ctx, cfg.Targets)...)
	}

	checks = append(checks, checkConfiguration(cfg))
	checks = append(checks, checkOutputDirectory(cfg.OutputDir))

	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: "✓",
		Detail: fmt.Sprintf("Version %s", runtime.Version()),
	}
}

func checkWhatWebBinary(wanted bool) doctorCheck {
	if !wanted {
		return doctorCheck{
			Name:   "whatweb Binary",
			Status: "⊘",
			Detail: "Skipped (detector not enabled)",
		}
	}

	runner := whatweb.NewRunner()
	if err := runner.EnsureBinary(); err != nil {
		return doctorCheck{
			Name:   "whatweb Binary",
			Status: "✗",
			Detail: "Not found in PATH",
			Error:  err,
		}
	}

	detail := "Available"
	if version, err := getWhatWebVersion(); err == nil {
		detail = fmt.Sprintf("Version %s", version)
	}

	return doctorCheck{
		Name:   "whatweb Binary",
		Status: "✓",
		Detail: detail,
	}
}

func checkCMSeeKBinary(wanted bool) doctorCheck {
	if !wanted {
		return doctorCheck{
			Name:   "cmseek Binary",
			Status: "⊘",
			Detail: "Skipped (detector not enabled)",
		}
	}

	runner := cmseek.NewRunner()
	if err := runner.EnsureBinary(); err != nil {
		return doctorCheck{
			Name:   "cmseek Binary",
			Status: "✗",
			Detail: "Not found in PATH",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "cmseek Binary",
		Status: "✓",
		Detail: "Available",
	}
}

func getWhatWebVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "whatweb", "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}

	version := strings.TrimSpace(string(output))
	if version == "" {
		return "unknown", nil
	}

	return version, nil
}

func checkWhatWebFunctionality(ctx context.Context) doctorCheck {
	testCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cmd := exec.CommandContext(testCtx, "whatweb", "--help")
	if err := cmd.Run(); err != nil {
		return doctorCheck{
			Name:   "whatweb Functionality",
			Status: "✗",
			Detail: "Binary found but not executable",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "whatweb Functionality",
		Status: "✓",
		Detail: "Binary is executable",
	}
}

func checkWhatCMSKey(apiKey string) doctorCheck {
	if apiKey == "" {
		return doctorCheck{
			Name:   "WhatCMS Credentials",
			Status: "✗",
			Detail: "WHATCMS_API_KEY is not set",
			Error:  fmt.Errorf("whatcms detector enabled without an API key"),
		}
	}

	return doctorCheck{
		Name:   "WhatCMS Credentials",
		Status: "✓",
		Detail: "API key configured",
	}
}

func checkNetworkReachability(ctx context.Context, targets []string) []doctorCheck {
	checks := []doctorCheck{}

	// Limit to the first 3 targets for performance
	maxChecks := 3
	originalTargetCount := len(targets)
	if len(targets) > maxChecks {
		targets = targets[:maxChecks]
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for _, target := range targets {
		check := doctorCheck{
			Name: fmt.Sprintf("Network: %s", target),
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, normalizeCheckURL(target), nil)
		if err != nil {
			check.Status = "✗"
			check.Detail = "Invalid URL"
			check.Error = err
			checks = append(checks, check)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			check.Status = "✗"
			check.Detail = "Unreachable"
			check.Error = err
		} else {
			resp.Body.Close()
			check.Status = "✓"
			check.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}

		checks = append(checks, check)
	}

	if originalTargetCount > maxChecks {
		checks = append(checks, doctorCheck{
			Name:   fmt.Sprintf("Network: ... (%d more targets)", originalTargetCount-maxChecks),
			Status: "⊘",
			Detail: "Skipped for brevity",
		})
	}

	return checks
}

func normalizeCheckURL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "https://" + target
}

func checkConfiguration(cfg *config.RuntimeConfig) doctorCheck {
	if err := cfg.Validate(); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: "Invalid configuration",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: fmt.Sprintf("%d targets, detectors=%s", len(cfg.Targets), strings.Join(cfg.Detectors, ",")),
	}
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "✗",
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: "✓",
		Detail: outputDir,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-30s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}

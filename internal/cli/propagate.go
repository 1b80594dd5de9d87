package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/events"
	"github.com/example/stackscan/internal/report"
)

func newPropagateCmd(loader *config.Loader) *cobra.Command {
	var inputDir string
	var profilesPath string

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Apply cross-domain confidence adjustments to scan artifacts",
		Long: `Propagate reads every analysis artifact in the results directory, builds
per-technology profiles across the whole batch, and rewrites each domain's
confidences with frequency, source-diversity, and evidence-richness bonuses.
Adjusted reports are written alongside the originals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(config.Overrides{})
			if err != nil {
				return err
			}

			dir := cfg.OutputDir
			if inputDir != "" {
				dir = inputDir
			}

			reports, err := report.LoadDirectory(dir)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return fmt.Errorf("no analysis artifacts found in %s", dir)
			}

			profiles := core.BuildProfiles(report.ToDomainResults(reports))

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Info("propagate-start", "Building cross-domain profiles", map[string]interface{}{
				"domains":      len(reports),
				"technologies": len(profiles),
			}); err != nil {
				return err
			}

			for _, rep := range reports {
				rep.Technologies = core.ApplyProfiles(rep.Technologies, profiles)
				rep.Summary = report.BuildSummary(rep.Technologies)

				path := report.AdjustedPath(dir, rep.Domain)
				if err := report.WriteJSON(path, rep); err != nil {
					return err
				}
				if err := emitter.Info("artifact-written", "", map[string]interface{}{"path": path, "domain": rep.Domain}); err != nil {
					return err
				}
			}

			if profilesPath != "" {
				if err := writeProfiles(profilesPath, profiles); err != nil {
					return err
				}
			}

			return emitter.Info("propagate-finished", "Propagation complete", map[string]interface{}{"domains": len(reports)})
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory of analysis artifacts (defaults to the configured output dir)")
	cmd.Flags().StringVar(&profilesPath, "profiles-file", "", "Optional path to dump the computed technology profiles")

	return cmd
}

func writeProfiles(path string, profiles map[string]core.TechnologyProfile) error {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]core.TechnologyProfile, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, profiles[name])
	}

	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

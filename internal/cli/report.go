package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/events"
	"github.com/example/stackscan/internal/report"
)

func newReportCmd(loader *config.Loader) *cobra.Command {
	var inputDir string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate aggregate stats from scan artifacts",
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

			stats := aggregateStats(dir, reports)

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Info("report", "Report generated", stats); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeReportSummary(summaryPath, stats); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory of analysis artifacts (defaults to the configured output dir)")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")

	return cmd
}

// aggregateStats rolls every loaded artifact into one batch view: counts by
// category and the technologies seen on the most domains.
func aggregateStats(dir string, reports []report.DomainReport) map[string]interface{} {
	categories := make(map[string]int)
	domainsByTech := make(map[string]int)
	totalTechnologies := 0

	for _, rep := range reports {
		totalTechnologies += len(rep.Technologies)
		for _, tech := range rep.Technologies {
			if tech.Category != "" {
				categories[tech.Category]++
			}
			domainsByTech[tech.Name]++
		}
	}

	type techCount struct {
		Name    string `json:"name"`
		Domains int    `json:"domains"`
	}
	top := make([]techCount, 0, len(domainsByTech))
	for name, count := range domainsByTech {
		top = append(top, techCount{Name: name, Domains: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Domains != top[j].Domains {
			return top[i].Domains > top[j].Domains
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > 10 {
		top = top[:10]
	}

	return map[string]interface{}{
		"inputDir":          dir,
		"generatedAt":       time.Now().UTC().Format(time.RFC3339),
		"domains":           len(reports),
		"totalTechnologies": totalTechnologies,
		"categories":        categories,
		"topTechnologies":   top,
	}
}

func writeReportSummary(path string, stats map[string]interface{}) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

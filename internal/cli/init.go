package cli

import (
	"fmt"

	"github.com/example/stackscan/internal/cmseek"
	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/whatweb"
	"github.com/spf13/cobra"
)

func newInitCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var skipBinaryCheck bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Validate the execution environment and configuration",
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

			if !skipBinaryCheck {
				if detectorEnabled(cfg.Detectors, "whatweb") {
					if err := whatweb.NewRunner().EnsureBinary(); err != nil {
						return err
					}
				}
				if detectorEnabled(cfg.Detectors, "cmseek") {
					if err := cmseek.NewRunner().EnsureBinary(); err != nil {
						return err
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Environment looks good. Output will be stored in %s\n", cfg.OutputDir)
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&skipBinaryCheck, "skip-binary-check", false, "Allow init to pass even if scanner binaries are missing")

	return cmd
}

func detectorEnabled(detectors []string, name string) bool {
	for _, d := range detectors {
		if d == name {
			return true
		}
	}
	return false
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/stackscan/internal/analyzer"
	"github.com/example/stackscan/internal/api"
	"github.com/example/stackscan/internal/banner"
	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/fetch"
)

func newServeCmd(loader *config.Loader) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the analyzer and stored reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(config.Overrides{ListenAddr: listenAddr})
			if err != nil {
				return err
			}

			detectors, err := buildDetectors(cfg)
			if err != nil {
				return err
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			if !cfg.Quiet {
				banner.Print(version)
			}

			a := analyzer.New(fetch.NewFetcher(nil), detectors, nil, cfg.MinConfidence)
			server := api.NewServer(a, cfg.OutputDir)

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.ListenAddr)
			return server.Run(cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Address to bind the HTTP server (defaults to the configured listenAddr)")

	return cmd
}

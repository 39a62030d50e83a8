package cmd

import (
	"context"
	"fmt"

	"github.com/ltlx4/technews/internal/config"
	"github.com/ltlx4/technews/internal/view"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranked news view over HTTP",
	Long: `Start a web server that shows the ranked digest, highlights, and tag groups.

The pipeline runs once at startup and then on the configured refresh interval
in the background; requests only read the latest snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		proc, err := newProcessor(cfg)
		if err != nil {
			return err
		}

		srv := view.NewServer(proc, cfg.RefreshDuration())
		return srv.Start(context.Background(), flagAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
}

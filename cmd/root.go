package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ltlx4/technews/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagTop        int
	flagHighlights bool
	flagOpen       bool
)

var rootCmd = &cobra.Command{
	Use:   "technews",
	Short: "AI-scored tech news digest",
	Long:  "technews pulls tech-news RSS feeds, scores each new article with an AI model, and keeps a ranked, tagged digest in a local cache.",
	RunE:  runDigest,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().IntVar(&flagTop, "top", 0, "only show the N highest-scored articles")
	rootCmd.Flags().BoolVar(&flagHighlights, "highlights", false, "only show highlighted articles")
	rootCmd.Flags().BoolVar(&flagOpen, "open", false, "open the top article in the browser")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("technews %s (commit: %s, built: %s)\n", version, commit, date)
		if r := update.Check(context.Background(), version); r != nil {
			fmt.Printf("A newer version is available: %s\n", r.LatestVersion)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

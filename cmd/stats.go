package cmd

import (
	"fmt"

	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
	"github.com/ltlx4/technews/internal/view"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store := cache.NewStore(cfg.CachePath())
		count, highlights, size := store.Stats()

		fmt.Printf("Cache: %s\n", store.Path())
		fmt.Printf("Articles: %d\n", count)
		fmt.Printf("Highlights: %d\n", highlights)
		fmt.Printf("Size: %s\n", formatBytes(size))

		if lu := store.Load().LastUpdated; lu != nil {
			fmt.Printf("Last updated: %s\n", view.FormatTimestamp(*lu))
		} else {
			fmt.Println("Last updated: never")
		}
		return nil
	},
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

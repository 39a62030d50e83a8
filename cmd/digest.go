package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ltlx4/technews/internal/analyze"
	"github.com/ltlx4/technews/internal/browser"
	"github.com/ltlx4/technews/internal/cache"
	"github.com/ltlx4/technews/internal/config"
	"github.com/ltlx4/technews/internal/feed"
	"github.com/ltlx4/technews/internal/pipeline"
	"github.com/ltlx4/technews/internal/view"
	"github.com/spf13/cobra"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)
)

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	c, stats, err := proc.Run(context.Background())
	if err != nil {
		// The run itself succeeded; only persistence failed. Show what we
		// have, but warn that it will be re-fetched next time.
		fmt.Printf("[warn] %v\n", err)
	}
	fmt.Printf("%d fetched, %d new", stats.Fetched, stats.New)
	if stats.FeedErrors > 0 {
		fmt.Printf(", %d feed error(s)", stats.FeedErrors)
	}
	fmt.Println()

	articles := view.Ranked(c)
	if flagHighlights {
		articles = view.Highlights(articles)
	}
	if flagTop > 0 && len(articles) > flagTop {
		articles = articles[:flagTop]
	}

	printDigest(articles, c.LastUpdated)

	if flagOpen && len(articles) > 0 {
		return browser.Open(articles[0].Link)
	}
	return nil
}

func printDigest(articles []*cache.CachedArticle, lastUpdated *string) {
	if len(articles) == 0 {
		fmt.Println("No articles.")
		return
	}

	fmt.Println()
	for _, a := range articles {
		style := titleStyle
		marker := " "
		if a.IsHighlight {
			style = highlightStyle
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", scoreStyle.Render(fmt.Sprintf("[%2d]", a.Score)), marker, style.Render(a.Title))
		meta := a.Source
		if a.Published != "" {
			meta += " · " + a.Published
		}
		fmt.Printf("       %s\n", metaStyle.Render(meta))
		if len(a.Tags) > 0 {
			fmt.Printf("       %s\n", tagStyle.Render(strings.Join(a.Tags, ", ")))
		}
	}
	fmt.Println()
	if lastUpdated != nil {
		fmt.Println(metaStyle.Render("Last updated: " + view.FormatTimestamp(*lastUpdated)))
	}
}

func newProcessor(cfg *config.Config) (*pipeline.Processor, error) {
	if !cfg.AIEnabled() {
		return nil, fmt.Errorf("AI is not configured: set ai.api_key in the config or the TECHNEWS_AI_KEY env var")
	}

	analyzer, err := analyze.New(cfg.AI, cfg.AIKey())
	if err != nil {
		return nil, fmt.Errorf("configuring analyzer: %w", err)
	}

	return &pipeline.Processor{
		Store:    cache.NewStore(cfg.CachePath()),
		Fetcher:  feed.NewRSSFetcher(),
		Analyzer: analyzer,
		Sources:  cfg.EnabledSources(),
	}, nil
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/enrich"
	"github.com/sells-group/mass/internal/export"
	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/internal/registry"
	"github.com/sells-group/mass/internal/scrape"
)

// extractScript is the registrant name this entry point uses in the link
// registry.
const extractScript = "mass-extract"

var (
	extractPages  int
	extractEnrich bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <keywords> [domain]",
	Short: "Run a coordinated scrape and write JSON artifacts",
	Long:  "Scrapes all enabled sources for the given keywords (optionally against one domain), filters out links other scripts already surfaced, and writes per-category plus combined JSON artifacts to the output directory.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords := args[0]
		domain := ""
		if len(args) == 2 {
			domain = args[1]
		}

		reg, err := registry.Open(cfg.Registry)
		if err != nil {
			return err
		}

		stats := reg.Stats()
		zap.L().Info("extract: registry loaded", zap.Int("tracked_links", stats.TotalLinks))

		coordinator := scrape.FromConfig(cfg)
		results, meta := coordinator.Run(cmd.Context(), scrape.Request{
			Keywords:     keywords,
			TargetDomain: domain,
			MaxPages:     extractPages,
		})

		// Cross-run dedup: drop links another script already surfaced,
		// then claim the survivors.
		urls := make([]string, 0, len(results))
		for _, item := range results {
			urls = append(urls, item.Link)
		}
		fresh := make(map[string]struct{})
		for _, u := range reg.FilterNew(urls, extractScript) {
			fresh[u] = struct{}{}
		}
		kept := make([]model.ResultItem, 0, len(results))
		keptURLs := make([]string, 0, len(results))
		for _, item := range results {
			if _, ok := fresh[item.Link]; !ok {
				continue
			}
			kept = append(kept, item)
			keptURLs = append(keptURLs, item.Link)
		}
		added := reg.Register(keptURLs, extractScript)

		zap.L().Info("extract: registry filter applied",
			zap.Int("scraped", len(results)),
			zap.Int("kept", len(kept)),
			zap.Int("newly_registered", added),
		)

		if extractEnrich {
			kept = enrich.New(cfg.Anthropic).Enhance(cmd.Context(), kept, keywords)
		}

		writer := export.NewWriter(cfg.Export.Dir)
		paths, err := writer.WriteRun(kept, meta)
		if err != nil {
			return err
		}

		cmd.Printf("Scraped %d results (%d new) from %v in %.2fs\n",
			len(results), len(kept), meta.SourcesUsed, meta.ExecutionTimeSeconds)
		for _, p := range paths {
			cmd.Printf("  wrote %s\n", p)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractPages, "pages", 0, "max pages per source (default from config)")
	extractCmd.Flags().BoolVar(&extractEnrich, "enrich", false, "run enrichment on the results")
	rootCmd.AddCommand(extractCmd)
}

package scrape

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/config"
	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/pkg/firecrawl"
	"github.com/sells-group/mass/pkg/jina"
)

// Coordinator fans one scrape request out to every registered adapter,
// waits for all of them to settle, and merges the survivors. A failing or
// slow adapter never prevents the others' results from being returned.
type Coordinator struct {
	scrapers        []Scraper
	defaultMaxPages int
}

// NewCoordinator creates a Coordinator over the given adapters. Adapter
// registration order is the result precedence order.
func NewCoordinator(scrapers ...Scraper) *Coordinator {
	return &Coordinator{
		scrapers:        scrapers,
		defaultMaxPages: 3,
	}
}

// WithDefaultMaxPages sets the page budget used when a request carries none.
func (c *Coordinator) WithDefaultMaxPages(n int) *Coordinator {
	if n > 0 {
		c.defaultMaxPages = n
	}
	return c
}

// Sources returns the registered adapter names in registration order.
func (c *Coordinator) Sources() []string {
	names := make([]string, len(c.scrapers))
	for i, s := range c.scrapers {
		names[i] = s.Name()
	}
	return names
}

// FromConfig constructs the adapter set described by the enabled-source
// list. Sources that cannot be constructed (missing credentials, unknown
// name) are logged and omitted; they are never run-fatal.
func FromConfig(cfg *config.Config) *Coordinator {
	var scrapers []Scraper

	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}
		switch src.Name {
		case "google", "duckduckgo":
			scrapers = append(scrapers, NewBrowserScraper(src.Name,
				WithMaxPerPage(cfg.Scrape.MaxResultsPerSource),
			))
		case "firecrawl":
			if cfg.Firecrawl.Key == "" {
				zap.L().Warn("coordinator: firecrawl source disabled, no API key configured")
				continue
			}
			var opts []firecrawl.Option
			if cfg.Firecrawl.BaseURL != "" {
				opts = append(opts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
			}
			scrapers = append(scrapers, NewFirecrawlScraper(firecrawl.NewClient(cfg.Firecrawl.Key, opts...)))
		case "jina":
			if cfg.Jina.Key == "" {
				zap.L().Warn("coordinator: jina source disabled, no API key configured")
				continue
			}
			var opts []jina.Option
			if cfg.Jina.SearchBaseURL != "" {
				opts = append(opts, jina.WithBaseURL(cfg.Jina.SearchBaseURL))
			}
			scrapers = append(scrapers, NewJinaScraper(jina.NewClient(cfg.Jina.Key, opts...)))
		default:
			zap.L().Warn("coordinator: unknown source", zap.String("source", src.Name))
			continue
		}
		zap.L().Info("coordinator: initialized source", zap.String("source", src.Name))
	}

	zap.L().Info("coordinator: sources ready", zap.Int("count", len(scrapers)))

	return NewCoordinator(scrapers...).WithDefaultMaxPages(cfg.Scrape.DefaultMaxPages)
}

// outcome tags one adapter's settled result.
type outcome struct {
	items []model.ResultItem
	err   error
}

// Run fans the request out to every adapter concurrently, waits for all
// of them regardless of individual failures, and returns the merged
// result set with run metadata. Final ordering follows adapter
// registration order, never completion order.
func (c *Coordinator) Run(ctx context.Context, req Request) ([]model.ResultItem, model.RunMetadata) {
	start := time.Now()
	runID := uuid.NewString()

	if req.MaxPages <= 0 {
		req.MaxPages = c.defaultMaxPages
	}

	zap.L().Info("coordinator: starting run",
		zap.String("run_id", runID),
		zap.String("keywords", req.Keywords),
		zap.String("target_domain", req.TargetDomain),
		zap.Int("max_pages", req.MaxPages),
		zap.Int("sources", len(c.scrapers)),
	)

	// Fixed index slots keep result order tied to registration order.
	outcomes := make([]outcome, len(c.scrapers))
	var wg sync.WaitGroup
	for i, s := range c.scrapers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{err: eris.Errorf("scraper panicked: %v", r)}
				}
			}()
			items, err := s.Scrape(ctx, req)
			outcomes[i] = outcome{items: items, err: err}
		}()
	}
	wg.Wait()

	var combined []model.ResultItem
	var sourcesUsed []string
	for i, o := range outcomes {
		if o.err != nil {
			zap.L().Error("coordinator: scraper failed",
				zap.String("run_id", runID),
				zap.String("scraper", c.scrapers[i].Name()),
				zap.Error(o.err),
			)
			continue
		}
		if len(o.items) > 0 {
			sourcesUsed = append(sourcesUsed, c.scrapers[i].Name())
		}
		combined = append(combined, o.items...)
	}

	merged := Merge(combined, req.TargetDomain)
	elapsed := time.Since(start).Seconds()

	meta := model.RunMetadata{
		RunID:                runID,
		Keywords:             req.Keywords,
		TargetDomain:         req.TargetDomain,
		ScrapedAt:            time.Now().UTC().Format(time.RFC3339),
		TotalResults:         len(merged),
		SourcesUsed:          sourcesUsed,
		ExecutionTimeSeconds: math.Round(elapsed*100) / 100,
	}

	zap.L().Info("coordinator: run complete",
		zap.String("run_id", runID),
		zap.Int("results", len(merged)),
		zap.Strings("sources_used", sourcesUsed),
		zap.Float64("execution_secs", meta.ExecutionTimeSeconds),
	)

	return merged, meta
}

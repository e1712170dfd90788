package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mass/internal/config"
	"github.com/sells-group/mass/internal/model"
)

// mockScraper is a scripted Scraper for coordinator tests.
type mockScraper struct {
	name     string
	scrapeFn func(ctx context.Context, req Request) ([]model.ResultItem, error)
}

func (m *mockScraper) Name() string { return m.name }

func (m *mockScraper) Scrape(ctx context.Context, req Request) ([]model.ResultItem, error) {
	return m.scrapeFn(ctx, req)
}

func staticScraper(name string, items ...model.ResultItem) *mockScraper {
	return &mockScraper{
		name: name,
		scrapeFn: func(context.Context, Request) ([]model.ResultItem, error) {
			return items, nil
		},
	}
}

func TestRunMergesAcrossSources(t *testing.T) {
	a := staticScraper("alpha",
		model.ResultItem{Title: "x", Link: "https://x.com/", Source: "alpha"},
		model.ResultItem{Title: "shared", Link: "https://shared.com/", Source: "alpha"},
	)
	b := staticScraper("beta",
		model.ResultItem{Title: "y", Link: "https://y.com/", Source: "beta"},
		model.ResultItem{Title: "shared again", Link: "https://shared.com/", Source: "beta"},
	)

	results, meta := NewCoordinator(a, b).Run(context.Background(), Request{Keywords: "anything"})

	require.Len(t, results, 3)
	assert.Equal(t, "https://x.com/", results[0].Link)
	assert.Equal(t, "https://shared.com/", results[1].Link)
	assert.Equal(t, "alpha", results[1].Source, "first registrant wins duplicate links")
	assert.Equal(t, "https://y.com/", results[2].Link)

	assert.Equal(t, []string{"alpha", "beta"}, meta.SourcesUsed)
	assert.Equal(t, 3, meta.TotalResults)
	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, "anything", meta.Keywords)
}

func TestRunFailingScraperIsolated(t *testing.T) {
	good := staticScraper("good", model.ResultItem{Title: "a", Link: "https://a.com/"})
	bad := &mockScraper{
		name: "bad",
		scrapeFn: func(context.Context, Request) ([]model.ResultItem, error) {
			return nil, eris.New("upstream exploded")
		},
	}

	results, meta := NewCoordinator(bad, good).Run(context.Background(), Request{Keywords: "q"})

	require.Len(t, results, 1)
	assert.Equal(t, "https://a.com/", results[0].Link)
	assert.Equal(t, []string{"good"}, meta.SourcesUsed)
}

func TestRunPanickingScraperIsolated(t *testing.T) {
	good := staticScraper("good", model.ResultItem{Title: "a", Link: "https://a.com/"})
	panicky := &mockScraper{
		name: "panicky",
		scrapeFn: func(context.Context, Request) ([]model.ResultItem, error) {
			panic("boom")
		},
	}

	results, meta := NewCoordinator(panicky, good).Run(context.Background(), Request{Keywords: "q"})

	require.Len(t, results, 1)
	assert.Equal(t, []string{"good"}, meta.SourcesUsed)
}

func TestRunAllScrapersFail(t *testing.T) {
	bad := &mockScraper{
		name: "bad",
		scrapeFn: func(context.Context, Request) ([]model.ResultItem, error) {
			return nil, eris.New("nope")
		},
	}

	results, meta := NewCoordinator(bad).Run(context.Background(), Request{Keywords: "q"})

	assert.Empty(t, results)
	assert.Empty(t, meta.SourcesUsed)
	assert.Zero(t, meta.TotalResults)
}

func TestRunEmptySourceExcludedFromSourcesUsed(t *testing.T) {
	empty := staticScraper("empty")
	full := staticScraper("full", model.ResultItem{Title: "a", Link: "https://a.com/"})

	_, meta := NewCoordinator(empty, full).Run(context.Background(), Request{Keywords: "q"})

	assert.Equal(t, []string{"full"}, meta.SourcesUsed)
}

func TestRunOrderFollowsRegistrationNotCompletion(t *testing.T) {
	slow := &mockScraper{
		name: "slow",
		scrapeFn: func(context.Context, Request) ([]model.ResultItem, error) {
			time.Sleep(50 * time.Millisecond)
			return []model.ResultItem{{Title: "slow", Link: "https://slow.com/"}}, nil
		},
	}
	fast := staticScraper("fast", model.ResultItem{Title: "fast", Link: "https://fast.com/"})

	results, _ := NewCoordinator(slow, fast).Run(context.Background(), Request{Keywords: "q"})

	require.Len(t, results, 2)
	assert.Equal(t, "https://slow.com/", results[0].Link)
	assert.Equal(t, "https://fast.com/", results[1].Link)
}

func TestRunAppliesDefaultMaxPages(t *testing.T) {
	var seen Request
	probe := &mockScraper{
		name: "probe",
		scrapeFn: func(_ context.Context, req Request) ([]model.ResultItem, error) {
			seen = req
			return nil, nil
		},
	}

	NewCoordinator(probe).WithDefaultMaxPages(7).Run(context.Background(), Request{Keywords: "q"})
	assert.Equal(t, 7, seen.MaxPages)

	NewCoordinator(probe).WithDefaultMaxPages(7).Run(context.Background(), Request{Keywords: "q", MaxPages: 2})
	assert.Equal(t, 2, seen.MaxPages, "explicit budget is never overridden")
}

func TestRunAppliesDomainFilter(t *testing.T) {
	s := staticScraper("s",
		model.ResultItem{Title: "in", Link: "https://target.com/page"},
		model.ResultItem{Title: "out", Link: "https://other.com/page"},
	)

	results, meta := NewCoordinator(s).Run(context.Background(), Request{Keywords: "q", TargetDomain: "target.com"})

	require.Len(t, results, 1)
	assert.Equal(t, "https://target.com/page", results[0].Link)
	assert.Equal(t, "target.com", meta.TargetDomain)
}

func TestSources(t *testing.T) {
	c := NewCoordinator(staticScraper("one"), staticScraper("two"))
	assert.Equal(t, []string{"one", "two"}, c.Sources())
}

func TestFromConfigSkipsKeylessSources(t *testing.T) {
	cfg := &config.Config{
		Sources: []config.SourceConfig{
			{Name: "google", Enabled: true},
			{Name: "duckduckgo", Enabled: false},
			{Name: "firecrawl", Enabled: true}, // no key configured
			{Name: "jina", Enabled: true},      // no key configured
			{Name: "mystery", Enabled: true},
		},
		Scrape: config.ScrapeConfig{DefaultMaxPages: 3, MaxResultsPerSource: 10},
	}

	c := FromConfig(cfg)

	assert.Equal(t, []string{"google"}, c.Sources())
}

func TestFromConfigBuildsKeyedSources(t *testing.T) {
	cfg := &config.Config{
		Sources: []config.SourceConfig{
			{Name: "firecrawl", Enabled: true},
			{Name: "jina", Enabled: true},
		},
		Scrape:    config.ScrapeConfig{DefaultMaxPages: 3, MaxResultsPerSource: 10},
		Firecrawl: config.FirecrawlConfig{Key: "fc-key"},
		Jina:      config.JinaConfig{Key: "jina-key"},
	}

	c := FromConfig(cfg)

	assert.Equal(t, []string{"firecrawl", "jina"}, c.Sources())
}

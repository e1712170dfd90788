package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/pkg/firecrawl"
)

// extractSchema describes the structured shape the extraction agent is
// asked to return for each discovered item.
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":          map[string]any{"type": "string", "description": "The title of the content"},
		"link":           map[string]any{"type": "string", "description": "URL of the content"},
		"thumbnail":      map[string]any{"type": "string", "description": "URL of thumbnail image if available"},
		"description":    map[string]any{"type": "string", "description": "Brief description of the content"},
		"author":         map[string]any{"type": "string", "description": "Author or creator name"},
		"published_date": map[string]any{"type": "string", "description": "Publication date if available"},
	},
	"required": []any{"title", "link"},
}

// FirecrawlScraper discovers content through the Firecrawl extraction API.
// With a target domain it crawls the domain directly; without one it runs
// one differently-worded extraction per simulated page, since the extract
// endpoint has no native pagination.
type FirecrawlScraper struct {
	client   firecrawl.Client
	limiter  *rate.Limiter // paces extract-mode strategy calls
	pollOpts []firecrawl.PollOption
}

// NewFirecrawlScraper creates a Firecrawl-backed scraper.
func NewFirecrawlScraper(client firecrawl.Client) *FirecrawlScraper {
	return &FirecrawlScraper{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// WithPollOptions overrides crawl polling behavior (for testing).
func (f *FirecrawlScraper) WithPollOptions(opts ...firecrawl.PollOption) *FirecrawlScraper {
	f.pollOpts = opts
	return f
}

// Name implements Scraper.
func (f *FirecrawlScraper) Name() string { return "firecrawl" }

// Scrape implements Scraper. Remote failures surface as an empty slice.
func (f *FirecrawlScraper) Scrape(ctx context.Context, req Request) ([]model.ResultItem, error) {
	if req.TargetDomain != "" {
		return f.crawlDomain(ctx, req), nil
	}
	return f.extractQuery(ctx, req), nil
}

// crawlDomain crawls the target domain and keeps pages relevant to the
// keywords.
func (f *FirecrawlScraper) crawlDomain(ctx context.Context, req Request) []model.ResultItem {
	domain := req.TargetDomain
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}

	resp, err := f.client.Crawl(ctx, firecrawl.CrawlRequest{
		URL:   domain,
		Limit: req.MaxPages * 10, // crawl more than needed for coverage
	})
	if err != nil {
		zap.L().Error("firecrawl: start crawl", zap.String("domain", domain), zap.Error(err))
		return nil
	}

	status, err := firecrawl.PollCrawl(ctx, f.client, resp.ID, f.pollOpts...)
	if err != nil {
		zap.L().Error("firecrawl: crawl poll", zap.String("domain", domain), zap.Error(err))
		return nil
	}

	tokens := keywordTokens(req.Keywords)
	maxItems := req.MaxPages * 3

	var items []model.ResultItem
	for i, page := range status.Data {
		if len(tokens) > 0 && !pageMatches(page, tokens) {
			continue
		}
		items = append(items, FormatResult(map[string]any{
			"title":       page.Title,
			"link":        page.URL,
			"description": page.Description,
			"page_number": i + 1,
		}, f.Name()))
		if len(items) >= maxItems {
			break
		}
	}

	zap.L().Info("firecrawl: crawl complete",
		zap.String("domain", domain),
		zap.Int("pages", len(status.Data)),
		zap.Int("items", len(items)),
	)
	return items
}

// extractStrategies are the prompt variants used to simulate pagination,
// one per page.
func extractStrategies(keywords string, maxPages int) []string {
	strategies := []string{
		keywords,
		fmt.Sprintf("recent %s news and trends", keywords),
		fmt.Sprintf("detailed analysis of %s", keywords),
	}
	if maxPages > 3 {
		strategies = append(strategies,
			fmt.Sprintf("tutorials and guides about %s", keywords),
			fmt.Sprintf("reviews and opinions about %s", keywords),
		)
	}
	if maxPages < len(strategies) {
		strategies = strategies[:maxPages]
	}
	return strategies
}

// extractQuery runs one extraction per strategy and deduplicates results
// by URL across the calls.
func (f *FirecrawlScraper) extractQuery(ctx context.Context, req Request) []model.ResultItem {
	var items []model.ResultItem
	seen := make(map[string]struct{})

	for pageNum, prompt := range extractStrategies(req.Keywords, req.MaxPages) {
		if err := f.limiter.Wait(ctx); err != nil {
			break
		}

		resp, err := f.client.Extract(ctx, firecrawl.ExtractRequest{
			URLs:   []string{}, // let the extraction agent pick URLs from the prompt
			Prompt: prompt,
			Schema: extractSchema,
		})
		if err != nil {
			zap.L().Error("firecrawl: extract page",
				zap.Int("page", pageNum+1),
				zap.Error(err),
			)
			continue
		}

		for _, raw := range decodeExtractItems(resp.Data) {
			link, _ := raw["link"].(string)
			if link == "" {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			raw["page_number"] = pageNum + 1
			items = append(items, FormatResult(raw, f.Name()))
		}
	}

	zap.L().Info("firecrawl: extraction complete",
		zap.String("keywords", req.Keywords),
		zap.Int("items", len(items)),
	)
	return items
}

// decodeExtractItems normalizes the extract endpoint's payload. The agent
// sometimes returns an object or garbage instead of a list; anything that
// is not a list of objects coerces to empty rather than propagating a
// type error.
func decodeExtractItems(raw json.RawMessage) []map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		zap.L().Debug("firecrawl: extract payload not a list, coercing to empty",
			zap.Error(err),
		)
		return nil
	}
	return items
}

// keywordTokens lowercases and splits keywords for relevance matching.
func keywordTokens(keywords string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(keywords)) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// pageMatches reports whether any keyword token appears in the page's
// title, description, or body.
func pageMatches(page firecrawl.PageData, tokens []string) bool {
	haystack := strings.ToLower(page.Title + " " + page.Description + " " + page.Markdown)
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

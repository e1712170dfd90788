package scrape

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/pkg/jina"
)

// JinaScraper discovers content through the Jina AI search API. The API
// is not paginated, so one call covers the whole run regardless of the
// page budget.
type JinaScraper struct {
	client jina.Client
}

// NewJinaScraper creates a Jina-backed scraper.
func NewJinaScraper(client jina.Client) *JinaScraper {
	return &JinaScraper{client: client}
}

// Name implements Scraper.
func (j *JinaScraper) Name() string { return "jina" }

// Scrape implements Scraper. Remote failures surface as an empty slice.
func (j *JinaScraper) Scrape(ctx context.Context, req Request) ([]model.ResultItem, error) {
	var opts []jina.SearchOption
	if req.TargetDomain != "" {
		opts = append(opts, jina.WithSiteFilter(req.TargetDomain))
	}

	resp, err := j.client.Search(ctx, req.Keywords, opts...)
	if err != nil {
		zap.L().Error("jina: search", zap.String("keywords", req.Keywords), zap.Error(err))
		return nil, nil
	}

	items := make([]model.ResultItem, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		items = append(items, FormatResult(map[string]any{
			"title":       r.Title,
			"link":        r.URL,
			"description": r.Description,
			"page_number": 1,
		}, j.Name()))
	}

	zap.L().Debug("jina: search complete",
		zap.String("keywords", req.Keywords),
		zap.Int("items", len(items)),
	)
	return items, nil
}

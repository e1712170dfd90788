// Package scrape coordinates content discovery across heterogeneous
// source adapters and merges their results into one deduplicated set.
package scrape

import (
	"context"
	"strings"

	"github.com/sells-group/mass/internal/model"
)

// Request carries the parameters of one scrape call.
type Request struct {
	Keywords     string
	TargetDomain string
	MaxPages     int
}

// Scraper is the uniform capability every source adapter implements.
//
// Implementations recover from their own failures and return a partial or
// empty slice instead of an error; the error return exists so the
// coordinator can defend against adapters that break that contract.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, req Request) ([]model.ResultItem, error)
}

// untitledSentinel is the title given to items whose source provided none.
const untitledSentinel = "Untitled Content"

// FormatResult normalizes a raw item of arbitrary key presence into the
// canonical ResultItem shape. Missing title falls back to a sentinel,
// missing link/thumbnail to empty strings. Optional fields are copied only
// when truthy.
func FormatResult(raw map[string]any, source string) model.ResultItem {
	item := model.ResultItem{
		Title:     stringField(raw, "title", untitledSentinel),
		Link:      stringField(raw, "link", ""),
		Thumbnail: stringField(raw, "thumbnail", ""),
		Source:    source,
	}

	if v := stringField(raw, "description", ""); v != "" {
		item.Description = v
	}
	if v := stringField(raw, "author", ""); v != "" {
		item.Author = v
	}
	if v := stringField(raw, "published_date", ""); v != "" {
		item.PublishedDate = v
	}
	if v := stringField(raw, "duration", ""); v != "" {
		item.Duration = v
	}
	if v := stringField(raw, "views", ""); v != "" {
		item.Views = v
	}
	if n := intField(raw, "page_number"); n > 0 {
		item.PageNumber = n
	}
	if m, ok := raw["metadata"].(map[string]any); ok && len(m) > 0 {
		item.Metadata = m
	}

	return item
}

// stringField reads a string-ish value from a raw map. Empty or missing
// values yield the fallback.
func stringField(raw map[string]any, key, fallback string) string {
	v, ok := raw[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// intField reads an integer-ish value from a raw map. JSON decoding yields
// float64, so both are accepted.
func intField(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

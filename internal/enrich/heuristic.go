package enrich

import (
	"context"
	"strings"

	"github.com/sells-group/mass/internal/model"
)

// HeuristicEnricher is the deterministic fallback strategy: keyword
// occurrence counts stand in for relevance and URL heuristics stand in
// for content classification.
type HeuristicEnricher struct{}

// NewHeuristicEnricher creates the fallback enricher.
func NewHeuristicEnricher() *HeuristicEnricher {
	return &HeuristicEnricher{}
}

// Enhance implements Enricher. It never fails and never reorders.
func (h *HeuristicEnricher) Enhance(_ context.Context, items []model.ResultItem, keywords string) []model.ResultItem {
	tokens := queryTokens(keywords)

	out := make([]model.ResultItem, len(items))
	copy(out, items)

	for i := range out {
		meta := out[i].EnsureMetadata()
		meta["processed"] = true

		title := strings.ToLower(out[i].Title)
		description := strings.ToLower(out[i].Description)

		score := 0
		for _, tok := range tokens {
			score += strings.Count(title, tok)
			score += strings.Count(description, tok)
		}
		score *= 10
		if score > 100 {
			score = 100
		}

		tags := tokens
		if len(tags) > maxTags {
			tags = tags[:maxTags]
		}

		meta[model.MetadataKeyAIAnalysis] = model.AIAnalysis{
			RelevanceScore: score,
			ContentType:    classifyURL(out[i].Link),
			Tags:           tags,
		}
	}

	return out
}

// maxTags caps the tag list written into ai_analysis.
const maxTags = 5

// queryTokens lowercases the query and keeps words longer than two
// characters.
func queryTokens(keywords string) []string {
	var tokens []string
	for _, w := range strings.Fields(keywords) {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) > 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// classifyURL guesses a content type from URL substrings, checked in
// priority order: video, article, image, document, then webpage.
func classifyURL(link string) string {
	url := strings.ToLower(link)
	switch {
	case strings.Contains(url, "youtube"):
		return "video"
	case strings.Contains(url, "wikipedia"):
		return "article"
	case containsAny(url, ".jpg", ".png", ".gif"):
		return "image"
	case containsAny(url, ".pdf", ".doc"):
		return "document"
	default:
		return "webpage"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

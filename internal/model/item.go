// Package model holds the shared data types passed between scrapers,
// the coordinator, the enrichment stage, and the transport shell.
package model

import "strings"

// MetadataKeyAIAnalysis is the metadata key both enrichment strategies
// write their analysis under.
const MetadataKeyAIAnalysis = "ai_analysis"

// ResultItem is one discovered content unit. Link is the identity key:
// after merging, no two items in a run share the same Link.
type ResultItem struct {
	Title         string         `json:"title"`
	Link          string         `json:"link"`
	Thumbnail     string         `json:"thumbnail"`
	Source        string         `json:"source,omitempty"`
	Description   string         `json:"description,omitempty"`
	Author        string         `json:"author,omitempty"`
	PublishedDate string         `json:"published_date,omitempty"`
	Duration      string         `json:"duration,omitempty"`
	Views         string         `json:"views,omitempty"`
	PageNumber    int            `json:"page_number,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// HasTitle reports whether the item carries a non-empty title after trimming.
func (r ResultItem) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// EnsureMetadata returns the item's metadata map, allocating it if needed.
func (r *ResultItem) EnsureMetadata() map[string]any {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	return r.Metadata
}

// AIAnalysis is the enrichment annotation stored under
// Metadata[MetadataKeyAIAnalysis]. Both the remote and the heuristic
// strategies produce this exact shape so consumers are strategy-agnostic.
type AIAnalysis struct {
	RelevanceScore int      `json:"relevance_score"`
	ContentType    string   `json:"content_type"`
	Tags           []string `json:"tags"`
}

// RunMetadata summarizes one coordinator run. Immutable once the run
// settles.
type RunMetadata struct {
	RunID                string   `json:"run_id"`
	Keywords             string   `json:"keywords"`
	TargetDomain         string   `json:"target_domain"`
	ScrapedAt            string   `json:"scraped_at"`
	TotalResults         int      `json:"total_results"`
	SourcesUsed          []string `json:"sources_used"`
	ExecutionTimeSeconds float64  `json:"execution_time"`
}

// ScrapeRequest is the transport-level request for a coordinated scrape.
type ScrapeRequest struct {
	Keywords     string `json:"keywords"`
	TargetDomain string `json:"target_domain,omitempty"`
	MaxPages     int    `json:"max_pages,omitempty"`
}

// ScrapeResponse is the transport-level response for a coordinated scrape.
type ScrapeResponse struct {
	Results  []ResultItem `json:"results"`
	Metadata RunMetadata  `json:"metadata"`
}

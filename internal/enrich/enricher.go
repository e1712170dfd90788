// Package enrich post-processes merged result sets with content analysis,
// either through a remote model call or a deterministic heuristic.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/config"
	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/pkg/anthropic"
)

// Enricher annotates a result batch. Implementations return a slice of
// the same length and order as the input and never drop items; per-item
// failures pass the original item through unmodified.
type Enricher interface {
	Enhance(ctx context.Context, items []model.ResultItem, keywords string) []model.ResultItem
}

// New selects the enrichment strategy: remote when an Anthropic key is
// configured, the deterministic heuristic otherwise. Both write the same
// ai_analysis metadata shape.
func New(cfg config.AnthropicConfig) Enricher {
	if cfg.Key == "" {
		zap.L().Warn("enrich: no anthropic key configured, using heuristic enrichment")
		return NewHeuristicEnricher()
	}
	return NewAnthropicEnricher(anthropic.NewClient(cfg.Key), cfg.Model, cfg.BatchSize)
}

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/mass/internal/model"
	"github.com/sells-group/mass/pkg/anthropic"
)

const (
	defaultBatchSize = 5
	enrichMaxTokens  = 500
	systemPrompt     = "You are an AI assistant that analyzes web content and provides structured data."
)

// AnthropicEnricher is the remote strategy: it batches items and asks the
// model for a relevance score, content type, tags, and an improved
// description per item. Any per-item failure passes the original item
// through.
type AnthropicEnricher struct {
	client    anthropic.Client
	model     string
	batchSize int
}

// NewAnthropicEnricher creates the remote enricher.
func NewAnthropicEnricher(client anthropic.Client, modelName string, batchSize int) *AnthropicEnricher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &AnthropicEnricher{
		client:    client,
		model:     modelName,
		batchSize: batchSize,
	}
}

// Enhance implements Enricher. Items are processed in batches, each batch
// concurrently; output length and order always match the input.
func (e *AnthropicEnricher) Enhance(ctx context.Context, items []model.ResultItem, keywords string) []model.ResultItem {
	if len(items) == 0 {
		return items
	}

	out := make([]model.ResultItem, len(items))
	copy(out, items)

	for start := 0; start < len(out); start += e.batchSize {
		end := start + e.batchSize
		if end > len(out) {
			end = len(out)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for idx := start; idx < end; idx++ {
			g.Go(func() error {
				enhanced, err := e.enhanceItem(gCtx, out[idx], keywords)
				if err != nil {
					zap.L().Warn("enrich: item failed, passing through original",
						zap.String("link", out[idx].Link),
						zap.Error(err),
					)
					return nil
				}
				out[idx] = enhanced
				return nil
			})
		}
		_ = g.Wait()
	}

	zap.L().Info("enrich: batch enrichment complete", zap.Int("items", len(out)))
	return out
}

// analysisReply is the structured shape requested from the model.
type analysisReply struct {
	RelevanceScore      float64  `json:"relevance_score"`
	ContentType         string   `json:"content_type"`
	EnhancedDescription string   `json:"enhanced_description"`
	Tags                []string `json:"tags"`
}

func (e *AnthropicEnricher) enhanceItem(ctx context.Context, item model.ResultItem, keywords string) (model.ResultItem, error) {
	// Not enough content to analyze.
	if len(item.Title) < 3 {
		return item, nil
	}

	content := "Title: " + item.Title + "\n"
	if item.Description != "" {
		content += "Description: " + item.Description + "\n"
	}

	prompt := fmt.Sprintf(`Analyze this content related to the search query %q:

%s
Provide a JSON response with these fields:
1. relevance_score (0-100): How relevant this content is to the query
2. content_type: The likely type (article, video, product, etc.)
3. enhanced_description: A better description if the original is missing or poor
4. tags: Up to 5 relevant tags or keywords

JSON format only.`, keywords, content)

	temp := 0.2
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   enrichMaxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return item, err
	}

	var reply analysisReply
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &reply); err != nil {
		return item, eris.Wrap(err, "enrich: parse analysis reply")
	}

	score := int(reply.RelevanceScore)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	contentType := reply.ContentType
	if contentType == "" {
		contentType = "unknown"
	}
	tags := reply.Tags
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	item.EnsureMetadata()[model.MetadataKeyAIAnalysis] = model.AIAnalysis{
		RelevanceScore: score,
		ContentType:    contentType,
		Tags:           tags,
	}

	// Backfill the description only when the source provided none.
	if item.Description == "" && reply.EnhancedDescription != "" {
		item.Description = reply.EnhancedDescription
	}

	return item, nil
}

// stripFences extracts the JSON body from a reply that may be wrapped in
// markdown code fences.
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return text
}

package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mass/internal/model"
)

func TestHeuristicEnhanceScoresByKeywordCount(t *testing.T) {
	items := []model.ResultItem{
		{
			Title:       "Cat video compilation",
			Link:        "https://youtube.com/watch?v=abc",
			Description: "the best cat clips",
		},
	}

	out := NewHeuristicEnricher().Enhance(context.Background(), items, "cat video")

	require.Len(t, out, 1)
	meta := out[0].Metadata
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["processed"])

	analysis, ok := meta[model.MetadataKeyAIAnalysis].(model.AIAnalysis)
	require.True(t, ok)
	// "cat" twice plus "video" once, ten points each.
	assert.Equal(t, 30, analysis.RelevanceScore)
	assert.Equal(t, "video", analysis.ContentType)
	assert.Equal(t, []string{"cat", "video"}, analysis.Tags)
}

func TestHeuristicEnhanceSingleKeywordMatch(t *testing.T) {
	out := NewHeuristicEnricher().Enhance(context.Background(),
		[]model.ResultItem{{Title: "cat video", Link: "https://youtube.com/x"}},
		"cat",
	)

	analysis := out[0].Metadata[model.MetadataKeyAIAnalysis].(model.AIAnalysis)
	assert.Equal(t, 10, analysis.RelevanceScore)
	assert.Equal(t, "video", analysis.ContentType)
}

func TestHeuristicEnhanceClampsScore(t *testing.T) {
	items := []model.ResultItem{{
		Title: "go go go go go go go go go go go go golang golang golang",
		Link:  "https://example.com/",
	}}

	out := NewHeuristicEnricher().Enhance(context.Background(), items, "golang")

	analysis := out[0].Metadata[model.MetadataKeyAIAnalysis].(model.AIAnalysis)
	assert.Equal(t, 30, analysis.RelevanceScore, "short tokens are ignored, golang appears three times")

	many := []model.ResultItem{{
		Title: "golang golang golang golang golang golang golang golang golang golang golang golang",
		Link:  "https://example.com/",
	}}
	out = NewHeuristicEnricher().Enhance(context.Background(), many, "golang")
	analysis = out[0].Metadata[model.MetadataKeyAIAnalysis].(model.AIAnalysis)
	assert.Equal(t, 100, analysis.RelevanceScore)
}

func TestHeuristicEnhanceCapsTags(t *testing.T) {
	out := NewHeuristicEnricher().Enhance(context.Background(),
		[]model.ResultItem{{Title: "x", Link: "https://example.com/"}},
		"alpha beta gamma delta epsilon zeta eta",
	)

	analysis := out[0].Metadata[model.MetadataKeyAIAnalysis].(model.AIAnalysis)
	assert.Len(t, analysis.Tags, maxTags)
}

func TestHeuristicEnhanceDoesNotMutateInput(t *testing.T) {
	items := []model.ResultItem{{Title: "x", Link: "https://example.com/"}}

	out := NewHeuristicEnricher().Enhance(context.Background(), items, "query")

	assert.Nil(t, items[0].Metadata, "input slice header is copied before annotation")
	assert.NotNil(t, out[0].Metadata)
}

func TestClassifyURL(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://youtube.com/watch?v=1", "video"},
		{"https://en.wikipedia.org/wiki/Go", "article"},
		{"https://example.com/photo.jpg", "image"},
		{"https://example.com/photo.png", "image"},
		{"https://example.com/paper.pdf", "document"},
		{"https://example.com/report.docx", "document"},
		{"https://example.com/page", "webpage"},
		{"", "webpage"},
		// Priority order: video beats the image extension.
		{"https://youtube.com/thumb.jpg", "video"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyURL(tc.link), tc.link)
	}
}

func TestQueryTokens(t *testing.T) {
	assert.Equal(t, []string{"golang", "testing"}, queryTokens("Golang in Testing"))
	assert.Empty(t, queryTokens("a an it"))
	assert.Empty(t, queryTokens(""))
}

// Package export writes batch scrape results as timestamped JSON
// artifacts, one file per extraction category plus a combined file.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/model"
)

// Artifact categories. Items are routed by their enrichment content type:
// videos for video content, references for articles and documents, links
// for everything else.
const (
	CategoryReferences = "references"
	CategoryVideos     = "videos"
	CategoryLinks      = "links"
	categoryCombined   = "combined"
)

// artifact is the persisted file shape.
type artifact struct {
	Category string             `json:"category"`
	Count    int                `json:"count"`
	Metadata model.RunMetadata  `json:"metadata"`
	Results  []model.ResultItem `json:"results"`
}

// Writer persists run artifacts under a fixed output directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a Writer targeting the given directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (w *Writer) WithNow(now func() time.Time) *Writer {
	w.now = now
	return w
}

// WriteRun writes one artifact per non-empty category plus the combined
// artifact, and returns the written paths.
func (w *Writer) WriteRun(items []model.ResultItem, meta model.RunMetadata) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}

	stamp := w.now().Format("20060102_150405")

	categorized := map[string][]model.ResultItem{}
	for _, item := range items {
		cat := categoryFor(item)
		categorized[cat] = append(categorized[cat], item)
	}

	var paths []string
	for _, cat := range []string{CategoryReferences, CategoryVideos, CategoryLinks} {
		catItems := categorized[cat]
		if len(catItems) == 0 {
			continue
		}
		path, err := w.writeArtifact(cat, stamp, catItems, meta)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	path, err := w.writeArtifact(categoryCombined, stamp, items, meta)
	if err != nil {
		return paths, err
	}
	paths = append(paths, path)

	zap.L().Info("export: artifacts written",
		zap.String("run_id", meta.RunID),
		zap.Int("files", len(paths)),
	)
	return paths, nil
}

func (w *Writer) writeArtifact(category, stamp string, items []model.ResultItem, meta model.RunMetadata) (string, error) {
	name := category + "_" + Slugify(meta.Keywords)
	if meta.TargetDomain != "" {
		name += "_" + Slugify(meta.TargetDomain)
	}
	name += "_" + stamp + ".json"
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(artifact{
		Category: category,
		Count:    len(items),
		Metadata: meta,
		Results:  items,
	}, "", "  ")
	if err != nil {
		return "", eris.Wrapf(err, "export: marshal %s artifact", category)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "export: write %s artifact", category)
	}
	return path, nil
}

// categoryFor routes an item by its enrichment content type. Items never
// enriched land in the links category.
func categoryFor(item model.ResultItem) string {
	switch contentType(item) {
	case "video":
		return CategoryVideos
	case "article", "document":
		return CategoryReferences
	default:
		return CategoryLinks
	}
}

// contentType reads the ai_analysis content type, tolerating both the
// in-process struct and the decoded-JSON map representation.
func contentType(item model.ResultItem) string {
	switch v := item.Metadata[model.MetadataKeyAIAnalysis].(type) {
	case model.AIAnalysis:
		return v.ContentType
	case map[string]any:
		s, _ := v["content_type"].(string)
		return s
	default:
		return ""
	}
}

// Slugify lowercases s and collapses every non-alphanumeric run into a
// single underscore, for use in artifact filenames.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

package scrape

import (
	"strings"

	"github.com/sells-group/mass/internal/model"
)

// maxMergedResults caps the size of a merged result set.
const maxMergedResults = 50

// Merge deduplicates a concatenated batch of adapter results by link,
// first occurrence winning. Items with an empty link are dropped, as are
// items whose link does not contain targetDomain when one is given. The
// surviving set is truncated to maxMergedResults.
//
// Merge is total and idempotent: merging its own output again yields the
// identical sequence.
func Merge(items []model.ResultItem, targetDomain string) []model.ResultItem {
	seen := make(map[string]struct{}, len(items))
	merged := make([]model.ResultItem, 0, len(items))

	for _, item := range items {
		if item.Link == "" {
			continue
		}
		if targetDomain != "" && !strings.Contains(item.Link, targetDomain) {
			continue
		}
		if _, dup := seen[item.Link]; dup {
			continue
		}
		seen[item.Link] = struct{}{}
		merged = append(merged, item)
	}

	if len(merged) > maxMergedResults {
		merged = merged[:maxMergedResults]
	}
	return merged
}

// Package registry tracks which URLs have already been surfaced across
// runs, so different scripts do not re-return each other's discoveries.
package registry

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/config"
)

// Entry records who first registered a URL and when. First registrant
// wins permanently; entries are never mutated in place.
type Entry struct {
	Script    string `json:"script"`
	Timestamp string `json:"timestamp"`
}

// Metadata is the registry document's bookkeeping block.
type Metadata struct {
	Created     string `json:"created"`
	LastUpdated string `json:"last_updated"`
	LoadError   string `json:"error,omitempty"` // captured when a corrupt store was replaced
}

// Document is the persisted registry shape: one entry per URL plus a
// metadata block. Unknown extra fields in stored documents are ignored.
type Document struct {
	Links    map[string]Entry `json:"links"`
	Metadata Metadata         `json:"metadata"`
}

func newDocument() *Document {
	now := time.Now().Format(time.RFC3339)
	return &Document{
		Links: make(map[string]Entry),
		Metadata: Metadata{
			Created:     now,
			LastUpdated: now,
		},
	}
}

// Store persists the registry document. Implementations perform a full
// document write on Save; concurrent processes race last-writer-wins,
// which is tolerated because entries are idempotent records.
type Store interface {
	Load() (*Document, error)
	Save(doc *Document) error
}

// Stats summarizes the registry contents.
type Stats struct {
	TotalLinks  int            `json:"total_links"`
	ByScript    map[string]int `json:"by_script"`
	Created     string         `json:"created"`
	LastUpdated string         `json:"last_updated"`
}

// Registry is the in-memory view over a Store. Safe for concurrent use
// by goroutines sharing one instance.
type Registry struct {
	mu    sync.Mutex
	store Store
	doc   *Document
}

// New loads the registry from the store. An unreadable or corrupt store
// is replaced with a fresh empty registry; the load error is captured in
// the document metadata for diagnosis.
func New(store Store) *Registry {
	doc, err := store.Load()
	if err != nil {
		zap.L().Warn("registry: load failed, starting with empty registry", zap.Error(err))
		doc = newDocument()
		doc.Metadata.LoadError = err.Error()
	}
	if doc.Links == nil {
		doc.Links = make(map[string]Entry)
	}
	return &Registry{store: store, doc: doc}
}

// Open constructs a registry over the configured backing store driver.
func Open(cfg config.RegistryConfig) (*Registry, error) {
	if cfg.Driver == "sqlite" {
		store, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return New(store), nil
	}
	return New(NewJSONStore(cfg.Path)), nil
}

// FilterNew keeps URLs absent from the registry, plus URLs originally
// registered by the same script — a registrant may re-see its own prior
// discoveries; only cross-registrant duplicates are suppressed.
func (r *Registry) FilterNew(urls []string, script string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		entry, exists := r.doc.Links[u]
		if !exists || (script != "" && entry.Script == script) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// Register adds every URL not already present, stamped with the script
// name and current time, and flushes the document. Existing keys are
// no-ops. Returns the count of newly added entries.
func (r *Registry) Register(urls []string, script string) int {
	if len(urls) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := time.Now().Format(time.RFC3339)
	added := 0
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, exists := r.doc.Links[u]; exists {
			continue
		}
		r.doc.Links[u] = Entry{Script: script, Timestamp: timestamp}
		added++
	}

	if added > 0 {
		r.flushLocked()
	}
	return added
}

// Stats returns registry totals grouped by registrant.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	byScript := make(map[string]int)
	for _, entry := range r.doc.Links {
		byScript[entry.Script]++
	}
	return Stats{
		TotalLinks:  len(r.doc.Links),
		ByScript:    byScript,
		Created:     r.doc.Metadata.Created,
		LastUpdated: r.doc.Metadata.LastUpdated,
	}
}

// Clear resets the registry to empty and flushes.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = newDocument()
	return r.store.Save(r.doc)
}

// flushLocked saves the document. A failed flush keeps the in-memory
// state intact for the remainder of the process; it is logged, not fatal.
func (r *Registry) flushLocked() {
	r.doc.Metadata.LastUpdated = time.Now().Format(time.RFC3339)
	if err := r.store.Save(r.doc); err != nil {
		zap.L().Error("registry: save failed, keeping in-memory state", zap.Error(err))
	}
}

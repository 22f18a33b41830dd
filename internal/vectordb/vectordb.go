package vectordb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/philippgille/chromem-go"
)

// ErrCollectionNotFound is returned by GetCollection when a conversation has
// never been ingested. Retrieval treats it as "no context available".
var ErrCollectionNotFound = errors.New("collection not found")

const collectionPrefix = "rag_"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// CollectionName derives the collection name for a conversation id. The
// mapping is lossy: distinct ids can sanitize to the same name. Accepted
// collision risk, not guarded against.
func CollectionName(convoID string) string {
	return collectionPrefix + unsafeNameChars.ReplaceAllString(convoID, "_")
}

// SearchResult is one nearest-neighbor match. Results come back best first.
type SearchResult struct {
	ID    string
	Text  string
	Score float32
}

// Manager owns the lifecycle of per-conversation collections. It holds no
// collection handle between calls; every operation addresses a collection by
// name so the backend stays the single source of truth.
type Manager struct {
	db *chromem.DB
}

func NewManager(dbPath string, inMemory bool) (*Manager, error) {
	if inMemory {
		return &Manager{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("open vector database: %w", err)
	}
	return &Manager{db: db}, nil
}

// DeleteCollection removes a conversation's collection. Deleting a collection
// that does not exist is a success.
func (m *Manager) DeleteCollection(name string) error {
	if err := m.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// CreateCollection creates an empty collection for one conversation.
func (m *Manager) CreateCollection(name string) (*Collection, error) {
	c, err := m.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return &Collection{c: c}, nil
}

// GetCollection resolves an existing collection by name.
func (m *Manager) GetCollection(name string) (*Collection, error) {
	c := m.db.GetCollection(name, nil)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &Collection{c: c}, nil
}

// Collection is a request-scoped handle to one conversation's collection.
type Collection struct {
	c *chromem.Collection
}

// Add inserts one embedded chunk. A failed insert fails that chunk only;
// callers record it and continue with the rest of the batch.
func (c *Collection) Add(ctx context.Context, id string, vector []float32, text string, metadata map[string]string) error {
	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Metadata:  metadata,
		Embedding: vector,
	}
	if err := c.c.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document %s: %w", id, err)
	}
	return nil
}

// Count reports the number of chunks currently in the collection.
func (c *Collection) Count() int {
	return c.c.Count()
}

// Query returns up to k nearest neighbors by vector similarity, best first.
// k is clamped to the collection size; an empty collection yields no results
// and no error.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	count := c.c.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := c.c.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{ID: r.ID, Text: r.Content, Score: r.Similarity}
	}
	return out, nil
}

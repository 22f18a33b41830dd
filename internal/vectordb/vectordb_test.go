package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("", true)
	require.NoError(t, err)
	return m
}

// Unit vectors so cosine similarity reduces to the dot product.
var (
	vecA = []float32{1, 0, 0}
	vecB = []float32{0, 1, 0}
	vecC = []float32{0.7071, 0.7071, 0}
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "rag_abc-123_X", CollectionName("abc-123_X"))
	assert.Equal(t, "rag_a_b_c", CollectionName("a b/c"))
	assert.Equal(t, "rag____", CollectionName("é@!"))
	assert.Equal(t, "rag_", CollectionName(""))

	// Sanitization is lossy: distinct ids may collide.
	assert.Equal(t, CollectionName("a.b"), CollectionName("a_b"))
}

func TestDeleteCollectionIdempotent(t *testing.T) {
	m := newTestManager(t)
	assert.NoError(t, m.DeleteCollection("rag_never-created"))

	_, err := m.CreateCollection("rag_x")
	require.NoError(t, err)
	assert.NoError(t, m.DeleteCollection("rag_x"))
	assert.NoError(t, m.DeleteCollection("rag_x"))
}

func TestGetCollectionNotFound(t *testing.T) {
	m := newTestManager(t)
	_, err := m.GetCollection("rag_missing")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestAddAndQueryOrdering(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	coll, err := m.CreateCollection("rag_order")
	require.NoError(t, err)

	require.NoError(t, coll.Add(ctx, "a", vecA, "alpha text", map[string]string{"file": "a.txt"}))
	require.NoError(t, coll.Add(ctx, "b", vecB, "beta text", nil))
	require.NoError(t, coll.Add(ctx, "c", vecC, "gamma text", nil))
	assert.Equal(t, 3, coll.Count())

	results, err := coll.Query(ctx, vecA, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "alpha text", results[0].Text)
	assert.Equal(t, "gamma text", results[1].Text)
	assert.Equal(t, "beta text", results[2].Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

// Identical index and query must yield the identical ordered result.
func TestQueryDeterministic(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	coll, err := m.CreateCollection("rag_stable")
	require.NoError(t, err)

	require.NoError(t, coll.Add(ctx, "a", vecA, "alpha", nil))
	require.NoError(t, coll.Add(ctx, "b", vecB, "beta", nil))
	require.NoError(t, coll.Add(ctx, "c", vecC, "gamma", nil))

	first, err := coll.Query(ctx, vecC, 3)
	require.NoError(t, err)
	second, err := coll.Query(ctx, vecC, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQueryClampsK(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	coll, err := m.CreateCollection("rag_clamp")
	require.NoError(t, err)

	require.NoError(t, coll.Add(ctx, "a", vecA, "alpha", nil))

	results, err := coll.Query(ctx, vecA, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	coll, err := m.CreateCollection("rag_empty")
	require.NoError(t, err)

	results, err := coll.Query(ctx, vecA, 3)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

// Delete-then-create replaces a collection wholesale; no chunk of the old
// generation survives.
func TestReplaceCollection(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	coll, err := m.CreateCollection("rag_gen")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, "old-1", vecA, "old generation", nil))

	require.NoError(t, m.DeleteCollection("rag_gen"))
	coll, err = m.CreateCollection("rag_gen")
	require.NoError(t, err)
	require.NoError(t, coll.Add(ctx, "new-1", vecB, "new generation", nil))

	results, err := coll.Query(ctx, vecA, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new generation", results[0].Text)
}

package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
	"chat-rag/internal/vectordb"
)

const DefaultTopK = 3

// Retriever assembles the document context for one query against one
// conversation's collection.
type Retriever struct {
	vdb          *vectordb.Manager
	embedder     embedding.Embedder
	topK         int
	embedTimeout time.Duration
	indexTimeout time.Duration
}

func NewRetriever(vdb *vectordb.Manager, embedder embedding.Embedder, cfg *config.RAGConfig) *Retriever {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		vdb:          vdb,
		embedder:     embedder,
		topK:         topK,
		embedTimeout: time.Duration(cfg.EmbedTimeoutSec) * time.Second,
		indexTimeout: time.Duration(cfg.IndexTimeoutSec) * time.Second,
	}
}

// Retrieve returns the top-k chunk texts for the query, joined with blank
// lines, in relevance order. A conversation with no ingested documents, an
// empty result, or any transport failure all degrade to an empty context:
// the chat turn proceeds ungrounded rather than failing.
func (r *Retriever) Retrieve(ctx context.Context, convoID, query string) models.RetrievalResult {
	vector, err := embedding.EmbedText(ctx, r.embedder, query, r.embedTimeout)
	if err != nil {
		log.Error().Err(err).Str("convo_id", convoID).Msg("query embedding failed")
		return models.RetrievalResult{}
	}

	coll, err := r.vdb.GetCollection(vectordb.CollectionName(convoID))
	if err != nil {
		if !errors.Is(err, vectordb.ErrCollectionNotFound) {
			log.Error().Err(err).Str("convo_id", convoID).Msg("get collection failed")
		}
		return models.RetrievalResult{}
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.indexTimeout)
	defer cancel()
	matches, err := coll.Query(queryCtx, vector, r.topK)
	if err != nil {
		log.Error().Err(err).Str("convo_id", convoID).Msg("vector query failed")
		return models.RetrievalResult{}
	}
	if len(matches) == 0 {
		return models.RetrievalResult{}
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return models.RetrievalResult{
		Context:     strings.Join(texts, "\n\n"),
		ContextUsed: true,
		ChunkCount:  len(matches),
	}
}

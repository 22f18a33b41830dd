package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/broadcast"
	"chat-rag/internal/chunker"
	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
	"chat-rag/internal/parser"
	"chat-rag/internal/vectordb"
)

// ConversationStore is the persistence collaborator. Conversation and message
// records live outside this pipeline; these are the operations it needs.
type ConversationStore interface {
	UpsertConversation(ctx context.Context, convoID, userID string) error
	ClearMessages(ctx context.Context, convoID string) error
	SetLastUpload(ctx context.Context, convoID string, at time.Time) error
	AppendDocumentMetadata(ctx context.Context, convoID string, meta models.DocumentMetadata) error
	AppendMessage(ctx context.Context, convoID string, msg models.ChatMessage) error
}

// Ingestor replaces a conversation's index with a fresh generation built from
// the uploaded documents.
type Ingestor struct {
	vdb          *vectordb.Manager
	embedder     embedding.Embedder
	store        ConversationStore
	broadcaster  broadcast.Broadcaster
	chunkSize    int
	embedTimeout time.Duration
	indexTimeout time.Duration
	locks        *keyLocks
}

func NewIngestor(vdb *vectordb.Manager, embedder embedding.Embedder, store ConversationStore, broadcaster broadcast.Broadcaster, cfg *config.RAGConfig) *Ingestor {
	return &Ingestor{
		vdb:          vdb,
		embedder:     embedder,
		store:        store,
		broadcaster:  broadcaster,
		chunkSize:    cfg.ChunkSize,
		embedTimeout: time.Duration(cfg.EmbedTimeoutSec) * time.Second,
		indexTimeout: time.Duration(cfg.IndexTimeoutSec) * time.Second,
		locks:        newKeyLocks(),
	}
}

// Ingest indexes a batch of parsed documents for one conversation. The whole
// batch is a full replacement: the previous collection is deleted before the
// new one is populated, and the conversation's message history is reset. A
// batch that fails partway leaves the new (partial) generation live, never the
// old one. Per-file failures are recorded in the returned results and do not
// stop the rest of the batch; only collection-lifecycle and persistence
// failures abort the ingestion as a whole.
func (in *Ingestor) Ingest(ctx context.Context, convoID, userID string, docs []models.ParsedDocument) ([]models.FileResult, error) {
	name := vectordb.CollectionName(convoID)

	// Two uploads racing on one conversation would interleave the
	// delete-create-add sequence; serialize them per collection name.
	unlock := in.locks.lock(name)
	defer unlock()

	if err := in.vdb.DeleteCollection(name); err != nil {
		return nil, err
	}

	if err := in.store.UpsertConversation(ctx, convoID, userID); err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	uploadedAt := time.Now()
	if err := in.store.ClearMessages(ctx, convoID); err != nil {
		return nil, fmt.Errorf("clear messages: %w", err)
	}
	if err := in.store.SetLastUpload(ctx, convoID, uploadedAt); err != nil {
		return nil, fmt.Errorf("set last upload: %w", err)
	}
	in.broadcaster.EmitToConversation(convoID, broadcast.EventClearHistory, nil)

	coll, err := in.vdb.CreateCollection(name)
	if err != nil {
		return nil, err
	}

	results := make([]models.FileResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, in.ingestDocument(ctx, coll, convoID, userID, uploadedAt, doc))
	}
	return results, nil
}

func (in *Ingestor) ingestDocument(ctx context.Context, coll *vectordb.Collection, convoID, userID string, uploadedAt time.Time, doc models.ParsedDocument) models.FileResult {
	if doc.Err != nil {
		if errors.Is(doc.Err, parser.ErrUnsupportedFormat) {
			return models.FileResult{File: doc.Filename, Status: models.StatusUnsupported}
		}
		return models.FileResult{File: doc.Filename, Status: models.StatusError, Error: doc.Err.Error()}
	}

	words := chunker.CountWords(doc.Text)
	chunks := chunker.Chunk(doc.Text, in.chunkSize)

	for i, chunk := range chunks {
		vector, err := embedding.EmbedText(ctx, in.embedder, chunk, in.embedTimeout)
		if err != nil {
			log.Error().Err(err).Str("file", doc.Filename).Int("chunk", i).Msg("embedding failed")
			return models.FileResult{File: doc.Filename, Status: models.StatusError, Error: err.Error()}
		}

		id := fmt.Sprintf("%s-%s-%d-%d", convoID, doc.Filename, i, uploadedAt.UnixMilli())
		metadata := map[string]string{
			"user":     userID,
			"file":     doc.Filename,
			"chunkIdx": strconv.Itoa(i),
		}
		addCtx, cancel := context.WithTimeout(ctx, in.indexTimeout)
		err = coll.Add(addCtx, id, vector, chunk, metadata)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("file", doc.Filename).Int("chunk", i).Msg("index add failed")
			return models.FileResult{File: doc.Filename, Status: models.StatusError, Error: err.Error()}
		}
	}

	meta := models.DocumentMetadata{
		Filename:   doc.Filename,
		UploadedAt: uploadedAt,
		Chunks:     len(chunks),
		Words:      words,
		StorageURL: doc.StorageURL,
	}
	if err := in.store.AppendDocumentMetadata(ctx, convoID, meta); err != nil {
		log.Error().Err(err).Str("file", doc.Filename).Msg("append document metadata failed")
		return models.FileResult{File: doc.Filename, Status: models.StatusError, Error: err.Error()}
	}

	return models.FileResult{
		File:       doc.Filename,
		Status:     models.StatusProcessed,
		Words:      words,
		Chunks:     len(chunks),
		StorageURL: doc.StorageURL,
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"chat-rag/internal/config"
	"chat-rag/internal/models"
)

type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID         int64     `bun:"id,pk,autoincrement"`
	ConvoID    string    `bun:"convo_id,notnull,unique"`
	UserID     string    `bun:"user_id,notnull"`
	LastUpload time.Time `bun:"last_upload,nullzero"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID          string    `bun:"id,pk"`
	ConvoID     string    `bun:"convo_id,notnull"`
	Sender      string    `bun:"sender,notnull"`
	Body        string    `bun:"body,notnull"`
	ContextUsed bool      `bun:"context_used"`
	ChunkCount  int       `bun:"chunk_count"`
	SentAt      time.Time `bun:"sent_at,nullzero,notnull,default:current_timestamp"`
}

type DocumentFile struct {
	bun.BaseModel `bun:"table:document_files,alias:df"`

	ID         int64     `bun:"id,pk,autoincrement"`
	ConvoID    string    `bun:"convo_id,notnull"`
	Filename   string    `bun:"filename,notnull"`
	UploadedAt time.Time `bun:"uploaded_at,nullzero"`
	Chunks     int       `bun:"chunks"`
	Words      int       `bun:"words"`
	StorageURL string    `bun:"storage_url,nullzero"`
}

// Connect opens the Postgres connection the way the Supabase setup expects.
func Connect(cfg *config.DatabaseConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Store is the conversation-persistence collaborator: conversation records,
// message history and per-file document metadata.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Init(ctx context.Context) error {
	for _, model := range []any{(*Conversation)(nil), (*Message)(nil), (*DocumentFile)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *Store) UpsertConversation(ctx context.Context, convoID, userID string) error {
	conv := &Conversation{
		ConvoID:   convoID,
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
	_, err := s.db.NewInsert().
		Model(conv).
		On("CONFLICT (convo_id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ClearMessages(ctx context.Context, convoID string) error {
	_, err := s.db.NewDelete().
		Model((*Message)(nil)).
		Where("convo_id = ?", convoID).
		Exec(ctx)
	return err
}

func (s *Store) SetLastUpload(ctx context.Context, convoID string, at time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("last_upload = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("convo_id = ?", convoID).
		Exec(ctx)
	return err
}

func (s *Store) AppendDocumentMetadata(ctx context.Context, convoID string, meta models.DocumentMetadata) error {
	rec := &DocumentFile{
		ConvoID:    convoID,
		Filename:   meta.Filename,
		UploadedAt: meta.UploadedAt,
		Chunks:     meta.Chunks,
		Words:      meta.Words,
		StorageURL: meta.StorageURL,
	}
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	return err
}

func (s *Store) AppendMessage(ctx context.Context, convoID string, msg models.ChatMessage) error {
	rec := &Message{
		ID:          msg.ID,
		ConvoID:     convoID,
		Sender:      msg.Sender,
		Body:        msg.Body,
		ContextUsed: msg.ContextUsed,
		ChunkCount:  msg.ChunkCount,
		SentAt:      msg.SentAt,
	}
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	return err
}

func (s *Store) RecentMessages(ctx context.Context, convoID string, limit int) ([]Message, error) {
	var msgs []Message
	err := s.db.NewSelect().
		Model(&msgs).
		Where("convo_id = ?", convoID).
		Order("sent_at ASC").
		Limit(limit).
		Scan(ctx)
	return msgs, err
}

func (s *Store) ListDocuments(ctx context.Context, convoID string) ([]DocumentFile, error) {
	var files []DocumentFile
	err := s.db.NewSelect().
		Model(&files).
		Where("convo_id = ?", convoID).
		Order("uploaded_at ASC").
		Scan(ctx)
	return files, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

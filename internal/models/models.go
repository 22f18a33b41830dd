package models

import "time"

// ParsedDocument is one uploaded file after text extraction. Extraction is an
// external concern; when it fails, Err carries the failure (for example
// parser.ErrUnsupportedFormat) and Text is empty.
type ParsedDocument struct {
	Filename   string
	Text       string
	StorageURL string
	Err        error
}

// FileResult reports the ingestion outcome for one uploaded file. Results come
// back in the same order as the input documents.
type FileResult struct {
	File       string `json:"file"`
	Status     string `json:"status"`
	Words      int    `json:"words,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	StorageURL string `json:"storageUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RetrievalResult is the context assembled for one query. Transient; it only
// lives as metadata on the message it grounds.
type RetrievalResult struct {
	Context     string
	ContextUsed bool
	ChunkCount  int
}

// DocumentMetadata is the per-file record appended to a conversation's
// document context after its chunks are indexed.
type DocumentMetadata struct {
	Filename   string
	UploadedAt time.Time
	Chunks     int
	Words      int
	StorageURL string
}

// ChatMessage is one message in a conversation, user or bot, with the
// retrieval metadata of the turn that produced it.
type ChatMessage struct {
	ID          string
	Sender      string
	Body        string
	ContextUsed bool
	ChunkCount  int
	SentAt      time.Time
}

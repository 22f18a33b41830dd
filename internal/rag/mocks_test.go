package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"chat-rag/internal/models"
)

// mockEmbedder returns a deterministic normalized vector derived from the
// text, so similar strings land near each other without a provider.
type mockEmbedder struct {
	failOn string
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding provider unreachable")
	}

	v := make([]float32, 8)
	for i, r := range text {
		v[i%8] += float32(r%31) / 31.0
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0] = 1
		norm = 1
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v, nil
}

type memStore struct {
	mu         sync.Mutex
	upserts    []string
	clears     int
	lastUpload time.Time
	docs       []models.DocumentMetadata
	messages   []models.ChatMessage
	failAppend bool
}

func (s *memStore) UpsertConversation(_ context.Context, convoID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, convoID+"/"+userID)
	return nil
}

func (s *memStore) ClearMessages(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.messages = nil
	return nil
}

func (s *memStore) SetLastUpload(_ context.Context, _ string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpload = at
	return nil
}

func (s *memStore) AppendDocumentMetadata(_ context.Context, _ string, meta models.DocumentMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return errors.New("persistence unavailable")
	}
	s.docs = append(s.docs, meta)
	return nil
}

func (s *memStore) AppendMessage(_ context.Context, _ string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

type recordedEvent struct {
	ConvoID string
	Event   string
}

type recordBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordBroadcaster) EmitToConversation(convoID, event string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{ConvoID: convoID, Event: event})
}

func (b *recordBroadcaster) byName(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type stubCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

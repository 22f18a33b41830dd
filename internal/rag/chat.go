package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/broadcast"
	"chat-rag/internal/helper"
	"chat-rag/internal/llmservice"
	"chat-rag/internal/models"
)

// Completer is the black-box completion collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const fallbackReply = "Sorry, I'm having trouble responding right now."

// Chat runs one conversation turn: persist the user message, ground the query
// in the conversation's documents, complete, persist and broadcast the reply.
type Chat struct {
	retriever   *Retriever
	completer   Completer
	store       ConversationStore
	broadcaster broadcast.Broadcaster
}

func NewChat(retriever *Retriever, completer Completer, store ConversationStore, broadcaster broadcast.Broadcaster) *Chat {
	return &Chat{
		retriever:   retriever,
		completer:   completer,
		store:       store,
		broadcaster: broadcaster,
	}
}

func (c *Chat) HandleMessage(ctx context.Context, convoID, userID, text string) (models.ChatMessage, error) {
	if err := c.store.UpsertConversation(ctx, convoID, userID); err != nil {
		return models.ChatMessage{}, fmt.Errorf("upsert conversation: %w", err)
	}

	userMsg := newMessage(models.SenderUser, text, models.RetrievalResult{})
	if err := c.store.AppendMessage(ctx, convoID, userMsg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("append user message: %w", err)
	}
	c.broadcaster.EmitToConversation(convoID, broadcast.EventNewMessage, userMsg)

	retrieval := c.retriever.Retrieve(ctx, convoID, text)
	prompt := llmservice.BuildPrompt(retrieval.Context, text)

	reply, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("convo_id", convoID).Msg("completion failed")
		reply = fallbackReply
		retrieval = models.RetrievalResult{}
	}

	botMsg := newMessage(models.SenderBot, reply, retrieval)
	if err := c.store.AppendMessage(ctx, convoID, botMsg); err != nil {
		return models.ChatMessage{}, fmt.Errorf("append bot message: %w", err)
	}
	c.broadcaster.EmitToConversation(convoID, broadcast.EventNewMessage, botMsg)

	return botMsg, nil
}

func newMessage(sender, body string, retrieval models.RetrievalResult) models.ChatMessage {
	id, err := helper.GenerateUUID()
	if err != nil {
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return models.ChatMessage{
		ID:          id,
		Sender:      sender,
		Body:        body,
		ContextUsed: retrieval.ContextUsed,
		ChunkCount:  retrieval.ChunkCount,
		SentAt:      time.Now(),
	}
}

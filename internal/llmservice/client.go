package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat-rag/internal/config"
	"chat-rag/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client calls the completion model. The pipeline treats it as a black box:
// prompt text in, reply text out.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := GenerateContent(ctx, c.cfg, nil, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return res.Choices[0].Content, nil
}

// BuildPrompt grounds the question in the retrieved context. With no context
// the question goes through untouched.
func BuildPrompt(contextText, question string) string {
	if contextText == "" {
		return question
	}
	return fmt.Sprintf(models.RAGPromptTemplate, contextText, question)
}

// GenerateContent runs one chat completion against an openai-compatible model.
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, tools []llms.Tool, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	log.Debug().Str("model", llmConfig.Model).Msg("generating content")
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}

	if len(tools) > 0 {
		return llm.GenerateContent(ctx, messages, llms.WithTools(tools))
	}
	return llm.GenerateContent(ctx, messages)
}

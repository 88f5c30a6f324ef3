package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the LLM interface for interacting with OpenAI's language
// models. The instance is stateless aside from the underlying HTTP client and is safe to reuse
// across turns and sessions.
type OpenAI struct {
	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance with the specified API key.
func NewOpenAI(apiKey string, logger *slog.Logger) OpenAI {
	return OpenAI{
		client: goopenai.NewClient(apiKey),
		logger: logger.With(slog.String("module", "openai")),
	}
}

func openAIMessages(messages []models.Message) []goopenai.ChatCompletionMessage {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return msgs
}

// GenerateReply performs one chat completion call and returns the generated text. Any failure,
// including a response without usable content, is reported as a ProviderError.
func (o OpenAI) GenerateReply(
	ctx context.Context,
	messages []models.Message,
	model string,
	temperature float32,
	maxTokens int,
) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:            model,
		Messages:         openAIMessages(messages),
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	}

	o.logger.Debug("Request",
		slog.String("model", model),
		slog.Int("messageCount", len(req.Messages)))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: "openai", Err: errors.New("no choices in response")}
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", &ProviderError{Provider: "openai", Err: errors.New("empty response content")}
	}

	return reply, nil
}

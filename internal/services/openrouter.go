package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
)

// OpenRouter provides an implementation of the LLM interface for interacting with OpenRouter's
// language models. OpenRouter speaks the OpenAI wire shape, so the request and response types
// mirror the chat completion format.
type OpenRouter struct {
	apiKey string

	client *http.Client

	logger *slog.Logger
}

type openRouterChatRequest struct {
	Model            string              `json:"model"`
	Messages         []openRouterMessage `json:"messages"`
	Temperature      float32             `json:"temperature"`
	MaxTokens        int                 `json:"max_tokens,omitempty"`
	PresencePenalty  float32             `json:"presence_penalty,omitempty"`
	FrequencyPenalty float32             `json:"frequency_penalty,omitempty"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterChatResponse struct {
	Choices []struct {
		Message openRouterMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const openRouterAPIEndpoint = "https://openrouter.ai/api/v1"

// NewOpenRouter creates a new OpenRouter instance with the specified API key.
func NewOpenRouter(apiKey string, logger *slog.Logger) OpenRouter {
	return OpenRouter{
		apiKey: apiKey,
		client: &http.Client{},
		logger: logger.With(slog.String("module", "openrouter")),
	}
}

// GenerateReply performs one non-streaming chat completion call against OpenRouter and returns the
// generated text. Failures are reported as a ProviderError.
func (o OpenRouter) GenerateReply(
	ctx context.Context,
	messages []models.Message,
	model string,
	temperature float32,
	maxTokens int,
) (string, error) {
	msgs := make([]openRouterMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = openRouterMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	reqBody := openRouterChatRequest{
		Model:            model,
		Messages:         msgs,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: "openrouter", Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	o.logger.Debug("Request", slog.String("req", string(jsonBody)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		openRouterAPIEndpoint+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", &ProviderError{Provider: "openrouter", Err: fmt.Errorf("error creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "openrouter", Err: fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	var chatResp openRouterChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &ProviderError{Provider: "openrouter", Err: fmt.Errorf("error decoding response: %w", err)}
	}

	if chatResp.Error != nil {
		return "", &ProviderError{
			Provider: "openrouter",
			Err:      fmt.Errorf("code %d: %s", chatResp.Error.Code, chatResp.Error.Message),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: "openrouter",
			Err:      fmt.Errorf("unexpected status code %d", resp.StatusCode),
		}
	}

	if len(chatResp.Choices) == 0 {
		return "", &ProviderError{Provider: "openrouter", Err: errors.New("no choices in response")}
	}

	reply := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if reply == "" {
		return "", &ProviderError{Provider: "openrouter", Err: errors.New("empty response content")}
	}

	return reply, nil
}

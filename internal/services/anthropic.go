package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
)

// Anthropic provides an implementation of the LLM interface against the Anthropic Messages API.
// The Messages API carries the system instruction as a dedicated request field, so the leading
// system message is extracted from the message list before the call.
type Anthropic struct {
	apiKey string

	client *http.Client
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const anthropicAPIEndpoint = "https://api.anthropic.com/v1"

// NewAnthropic creates a new Anthropic instance with the specified API key.
func NewAnthropic(apiKey string) Anthropic {
	return Anthropic{
		apiKey: apiKey,
		client: &http.Client{},
	}
}

func extractSystemMessage(messages []models.Message) (string, []models.Message) {
	if len(messages) == 0 {
		return "", messages
	}

	if messages[0].Role == models.RoleSystem {
		return messages[0].Content, messages[1:]
	}

	return "", messages
}

// GenerateReply performs one non-streaming call against the Anthropic Messages API and returns the
// generated text. Failures, including API error payloads, are reported as a ProviderError.
func (a Anthropic) GenerateReply(
	ctx context.Context,
	messages []models.Message,
	model string,
	temperature float32,
	maxTokens int,
) (string, error) {
	systemMessage, ms := extractSystemMessage(messages)

	msgs := make([]anthropicMessage, len(ms))
	for i, msg := range ms {
		msgs[i] = anthropicMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	reqBody := anthropicChatRequest{
		Model:       model,
		Messages:    msgs,
		System:      systemMessage,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		anthropicAPIEndpoint+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: fmt.Errorf("error creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", &ProviderError{
				Provider: "anthropic",
				Err:      fmt.Errorf("%s: %s", apiErr.Error.Type, apiErr.Error.Message),
			}
		}
		return "", &ProviderError{
			Provider: "anthropic",
			Err:      fmt.Errorf("unexpected status code %d", resp.StatusCode),
		}
	}

	var chatResp anthropicChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: fmt.Errorf("error decoding response: %w", err)}
	}

	var sb strings.Builder
	for _, content := range chatResp.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}

	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", &ProviderError{Provider: "anthropic", Err: errors.New("empty response content")}
	}

	return reply, nil
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the LLM interface for interacting with a local or remote
// Ollama server instance.
type Ollama struct {
	host string

	client *api.Client
}

// NewOllama creates a new Ollama instance with the specified host URL. The host parameter should
// be a valid URL pointing to an Ollama server. If the provided host URL is invalid, the function
// will panic.
func NewOllama(host string) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		host:   host,
		client: api.NewClient(u, &http.Client{}),
	}
}

// GenerateReply performs one non-streaming chat call against the Ollama server and returns the
// generated text. Failures are reported as a ProviderError.
func (o Ollama) GenerateReply(
	ctx context.Context,
	messages []models.Message,
	model string,
	temperature float32,
	maxTokens int,
) (string, error) {
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	stream := false
	req := api.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature":       float64(temperature),
			"num_predict":       maxTokens,
			"presence_penalty":  float64(presencePenalty),
			"frequency_penalty": float64(frequencyPenalty),
		},
	}

	var reply string
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		reply = res.Message.Content
		return nil
	}); err != nil {
		return "", &ProviderError{Provider: "ollama", Err: err}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &ProviderError{Provider: "ollama", Err: errors.New("empty response content")}
	}

	return reply, nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MegaGrindStone/jester-web-ui/internal/handlers"
	"github.com/MegaGrindStone/jester-web-ui/internal/services"
	"gopkg.in/yaml.v3"
)

type llmConfig interface {
	llm(logger *slog.Logger) (handlers.LLM, error)
}

// BaseLLMConfig contains the common fields for all LLM configurations. The model itself is not
// configured here: it is picked per turn from the sidebar.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
}

type config struct {
	Port     string    `yaml:"port"`
	LogLevel string    `yaml:"logLevel"`
	Store    string    `yaml:"store"`
	LLM      llmConfig `yaml:"llm"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type anthropicConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

type openRouterConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

const defaultConfig = `port: "8080"
logLevel: info

# Where conversation histories live. "memory" keeps nothing across restarts,
# "bolt" persists sessions to a store.db next to this file.
store: memory

llm:
  provider: openai
  # apiKey falls back to OPENAI_API_KEY when omitted.
`

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port     string         `yaml:"port"`
		LogLevel string         `yaml:"logLevel"`
		Store    string         `yaml:"store"`
		LLM      map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	c.Port = rawConfig.Port
	c.LogLevel = rawConfig.LogLevel
	c.Store = rawConfig.Store

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "openai":
		llm = &openAIConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	case "anthropic":
		llm = &anthropicConfig{}
	case "openrouter":
		llm = &openRouterConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm

	return nil
}

func (c config) logLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (o openAIConfig) llm(logger *slog.Logger) (handlers.LLM, error) {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	return services.NewOpenAI(apiKey, logger), nil
}

func (o ollamaConfig) llm(*slog.Logger) (handlers.LLM, error) {
	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}
	return services.NewOllama(host), nil
}

func (a anthropicConfig) llm(*slog.Logger) (handlers.LLM, error) {
	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return services.NewAnthropic(apiKey), nil
}

func (o openRouterConfig) llm(logger *slog.Logger) (handlers.LLM, error) {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	return services.NewOpenRouter(apiKey, logger), nil
}

package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 30 * time.Second

// LLM is the text-generation boundary. Tests substitute a canned implementation.
type LLM interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMConfig holds configuration for LLM interactions
type LLMConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	StopTokens  []string
}

// DefaultLLMConfig returns standard LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       openai.GPT4oMini,
		MaxTokens:   64,
		Temperature: 0.9,
	}
}

// Config selects the endpoint and model for the decision service.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the OpenAI default
	Timeout time.Duration
	LLM     LLMConfig
}

// OpenAILLM talks to any OpenAI-compatible chat completion endpoint.
type OpenAILLM struct {
	client  *openai.Client
	config  LLMConfig
	timeout time.Duration
}

// NewOpenAILLM builds a client for cfg. An empty API key is an error; callers
// pass a nil LLM to NewClient instead, which then picks random catalog actions.
func NewOpenAILLM(cfg Config) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: API key not set")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	llmCfg := cfg.LLM
	if llmCfg.Model == "" {
		llmCfg = DefaultLLMConfig()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAILLM{
		client:  openai.NewClientWithConfig(oc),
		config:  llmCfg,
		timeout: timeout,
	}, nil
}

// Complete sends one system+user exchange and returns the first choice.
func (o *OpenAILLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Messages:    messages,
		MaxTokens:   o.config.MaxTokens,
		Temperature: o.config.Temperature,
		Stop:        o.config.StopTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: completion returned no choices")
	}
	log.Printf("[AI] completion used %d tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

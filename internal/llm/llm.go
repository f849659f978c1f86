// Package llm provides the language-model provider interface and a Replier
// that lets a model speak for the companion.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLLMOperation indicates a provider call failed.
	ErrLLMOperation = errors.New("llm operation failed")

	// ErrUnsupportedProvider indicates an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
)

// Provider generates text from a conversation.
type Provider interface {
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)
	Close() error
}

// Message is one turn of a conversation.
type Message struct {
	// Role is "system", "user" or "assistant".
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	Stop        []string
}

type GenerateOption func(*GenerateOptions)

func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) { opts.Temperature = temp }
}

func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) { opts.MaxTokens = max }
}

// ApplyGenerateOptions resolves opts over the defaults: temperature 0.85,
// 1024 tokens, top-p 1.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.85,
		MaxTokens:   1024,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// Enabled reports whether enough is configured to call a model.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// Validate checks the provider name.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "", "openai":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Provider)
	}
}

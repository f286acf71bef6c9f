// Package ai provides factory functions for creating summary client adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/danielfleischer/elfeed-ai/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/danielfleischer/elfeed-ai/internal/adapters/driven/llm/ollama"
	openaillm "github.com/danielfleischer/elfeed-ai/internal/adapters/driven/llm/openai"
	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateSummaryClient creates the appropriate summary client based on settings.
// Returns nil if the provider is not configured.
func CreateSummaryClient(settings *domain.LLMSettings) (driven.SummaryClient, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaClient(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIClient(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicClient(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateAndValidateSummaryClient creates a summary client and validates connectivity.
// Returns the client if successful, or an error with guidance.
func CreateAndValidateSummaryClient(settings *domain.LLMSettings) (driven.SummaryClient, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: run 'elfeed-ai settings' to configure a provider",
			domain.ErrLLMUnavailable)
	}

	client, err := CreateSummaryClient(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'elfeed-ai settings' to fix",
			domain.ErrLLMUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'elfeed-ai settings' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return client, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a client and pinging it.
// This is intended for use in the settings command to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	client, err := CreateSummaryClient(settings)
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return client.Ping(ctx)
}

// createOllamaClient creates an Ollama summary client.
func createOllamaClient(settings *domain.LLMSettings) driven.SummaryClient {
	return ollamallm.NewSummaryClient(ollamallm.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIClient creates an OpenAI summary client.
func createOpenAIClient(settings *domain.LLMSettings) (driven.SummaryClient, error) {
	return openaillm.NewSummaryClient(openaillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicClient creates an Anthropic summary client.
func createAnthropicClient(settings *domain.LLMSettings) (driven.SummaryClient, error) {
	return anthropicllm.NewSummaryClient(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

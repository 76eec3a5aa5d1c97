// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/babelkb/babelkb/internal/adapters/driven/llm/anthropic"
	"github.com/babelkb/babelkb/internal/adapters/driven/llm/ollama"
	"github.com/babelkb/babelkb/internal/adapters/driven/llm/openai"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is satisfied by every concrete LLM adapter.
type pinger interface {
	driven.LLMService
	Ping(ctx context.Context) error
}

// CreateLLMService creates the completion backend named in settings.
// Returns nil when no backend is configured; language detection then
// stops after the local classifier.
func CreateLLMService(settings driven.SettingsStore) (driven.LLMService, error) {
	backend := settings.GetString(driven.SettingLLMBackend)
	if backend == "" {
		return nil, nil
	}

	model := settings.GetString(driven.SettingLLMModel)
	apiKey := settings.GetString(driven.SettingLLMAPIKey)
	baseURL := settings.GetString(driven.SettingLLMBaseURL)

	switch backend {
	case "openai":
		return openai.NewLLMService(openai.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
	case "anthropic":
		return anthropic.NewLLMService(anthropic.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
	case "ollama":
		return ollama.NewLLMService(ollama.Config{
			BaseURL: baseURL,
			Model:   model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", backend)
	}
}

// CreateAndValidateLLMService creates the configured backend and
// validates connectivity. An unreachable backend is an error, not a
// silent downgrade, so misconfiguration surfaces at startup.
func CreateAndValidateLLMService(settings driven.SettingsStore) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	if p, ok := svc.(pinger); ok {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return nil, fmt.Errorf("llm backend unreachable: %w", err)
		}
	}

	return svc, nil
}

// Package ai selects and validates the configured embedding provider.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingProvider creates the provider named by settings.
func CreateEmbeddingProvider(settings domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewProvider(ollamaembed.Config{
			Endpoint: settings.Endpoint,
			Model:    settings.Model,
			Timeout:  settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		p, err := openaiembed.NewProvider(openaiembed.Config{
			APIKey:   settings.APIKey,
			Endpoint: settings.Endpoint,
			Model:    settings.Model,
			Timeout:  settings.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// ValidateEmbeddingConfig creates the provider and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings domain.EmbeddingSettings) error {
	p, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("embedding provider %s unreachable: %w", settings.Provider, err)
	}
	return nil
}

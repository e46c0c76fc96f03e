// Package provider defines the translation and embedding provider
// contracts and their implementations. Providers are registered by name
// and constructed from configuration, so the active set is chosen at
// startup without touching call sites.
package provider

import (
	"context"
	"errors"

	"lotsawa/internal/httpclient"
	"lotsawa/internal/models"
	"lotsawa/internal/types"
)

// ErrUnknownProvider is returned when a requested provider name has no
// registered constructor.
var ErrUnknownProvider = errors.New("unknown translation provider")

// Translator produces one translation for a chunk of source text.
type Translator interface {
	Name() string
	Translate(ctx context.Context, chunk models.TranslationChunk, cfg models.TranslationConfig) (*models.TranslationResult, error)
}

// Embedder returns one embedding vector per input text. Vectors from one
// call share a dimensionality.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Deps carries the shared infrastructure a provider constructor may need.
type Deps struct {
	ConfigManager types.ConfigManager
	ClientManager *httpclient.Manager
}

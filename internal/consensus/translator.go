package consensus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
	"lotsawa/internal/provider"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoProviders is returned when a translator is constructed without any
// providers.
var ErrNoProviders = errors.New("no translation providers configured")

// Translator fans a chunk out to all configured providers concurrently
// and reconciles the surviving results.
type Translator struct {
	providers   []provider.Translator
	builder     *Builder
	callTimeout time.Duration
}

// NewTranslator creates a multi-provider translator. At least one
// provider is required.
func NewTranslator(providers []provider.Translator, builder *Builder, callTimeout time.Duration) (*Translator, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return &Translator{
		providers:   providers,
		builder:     builder,
		callTimeout: callTimeout,
	}, nil
}

// Translate calls every provider concurrently, each under its own
// timeout, and builds consensus over the successes. A provider failure
// only excludes that provider; the call fails only when every provider
// failed.
func (t *Translator) Translate(ctx context.Context, chunk models.TranslationChunk, cfg models.TranslationConfig) (*Result, error) {
	candidates := make([]*Candidate, len(t.providers))
	failures := make([]error, len(t.providers))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range t.providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, t.callTimeout)
			defer cancel()

			result, err := p.Translate(callCtx, chunk, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.WithError(err).WithField("provider", p.Name()).Warn("Provider translation failed")
				failures[i] = fmt.Errorf("%s: %w", p.Name(), err)
				// A single provider failure must not cancel its siblings.
				return nil
			}
			candidates[i] = &Candidate{Provider: p.Name(), Result: *result}
			return nil
		})
	}
	_ = g.Wait()

	// Preserve provider configuration order for deterministic tie-breaks.
	surviving := make([]Candidate, 0, len(t.providers))
	for _, c := range candidates {
		if c != nil {
			surviving = append(surviving, *c)
		}
	}

	if len(surviving) == 0 {
		return nil, aggregateFailure(failures)
	}

	return t.builder.Build(ctx, surviving, chunk.Content, ConfidenceOptions{
		DictionaryTerms: cfg.DictionaryTerms,
	})
}

// aggregateFailure folds per-provider errors into one job-level error.
// The aggregate is permanent only when every underlying failure was.
func aggregateFailure(failures []error) error {
	var parts []string
	allPermanent := true
	for _, err := range failures {
		if err == nil {
			continue
		}
		parts = append(parts, err.Error())
		if !app_errors.IsPermanent(err) {
			allPermanent = false
		}
	}

	err := fmt.Errorf("all translation providers failed: %s", strings.Join(parts, "; "))
	if allPermanent {
		return app_errors.Permanent(err)
	}
	return app_errors.Transient(err)
}

// Package container builds the dig dependency injection container wiring
// every component of the application.
package container

import (
	"fmt"
	"time"

	"lotsawa/internal/app"
	"lotsawa/internal/config"
	"lotsawa/internal/consensus"
	"lotsawa/internal/db"
	"lotsawa/internal/encryption"
	"lotsawa/internal/handler"
	"lotsawa/internal/httpclient"
	"lotsawa/internal/pipeline"
	"lotsawa/internal/provider"
	"lotsawa/internal/quality"
	"lotsawa/internal/router"
	"lotsawa/internal/services"
	"lotsawa/internal/store"
	"lotsawa/internal/textscript"
	"lotsawa/internal/types"
	"lotsawa/internal/validation"

	"go.uber.org/dig"
	"gorm.io/gorm"
)

// BuildContainer creates and configures the DI container.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	constructors := []any{
		config.NewManager,
		db.NewDB,
		store.NewStore,
		newEncryptionService,
		textscript.NewTibetanAnalyzer,
		httpclient.NewManager,
		newProviderDeps,
		newTranslators,
		newEmbedder,
		consensus.NewSemanticCalculator,
		consensus.NewConfidenceCalculator,
		consensus.NewBuilder,
		validation.NewService,
		quality.NewDefaultScorer,
		quality.NewGate,
		pipeline.NewProgressTracker,
		newWorker,
		newQueue,
		services.NewRetentionService,
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, fmt.Errorf("failed to provide constructor %T: %w", constructor, err)
		}
	}

	return container, nil
}

func newEncryptionService(configManager types.ConfigManager) (encryption.Service, error) {
	return encryption.NewService(configManager.GetEncryptionKey())
}

func newProviderDeps(configManager types.ConfigManager, clientManager *httpclient.Manager) provider.Deps {
	return provider.Deps{
		ConfigManager: configManager,
		ClientManager: clientManager,
	}
}

// newTranslators instantiates every configured translation provider from
// the registry. Unknown names fail construction.
func newTranslators(configManager types.ConfigManager, deps provider.Deps) ([]provider.Translator, error) {
	names := configManager.GetProviderConfig().Providers
	translators := make([]provider.Translator, 0, len(names))
	for _, name := range names {
		translator, err := provider.New(name, deps)
		if err != nil {
			return nil, err
		}
		translators = append(translators, translator)
	}
	return translators, nil
}

func newEmbedder(deps provider.Deps) (provider.Embedder, error) {
	return provider.NewOpenAIEmbedder(deps)
}

type workerDeps struct {
	dig.In
	DB            *gorm.DB
	Encryption    encryption.Service
	Validator     *validation.Service
	Confidence    *consensus.ConfidenceCalculator
	Builder       *consensus.Builder
	Gate          *quality.Gate
	Tracker       *pipeline.ProgressTracker
	Providers     []provider.Translator
	ConfigManager types.ConfigManager
}

func newWorker(d workerDeps) (*pipeline.Worker, error) {
	providerCfg := d.ConfigManager.GetProviderConfig()
	return pipeline.NewWorker(pipeline.WorkerParams{
		DB:          d.DB,
		Encryption:  d.Encryption,
		Validator:   d.Validator,
		Confidence:  d.Confidence,
		Builder:     d.Builder,
		Gate:        d.Gate,
		Tracker:     d.Tracker,
		Providers:   d.Providers,
		PipelineCfg: d.ConfigManager.GetPipelineConfig(),
		CallTimeout: time.Duration(providerCfg.TimeoutSeconds) * time.Second,
	})
}

func newQueue(
	database *gorm.DB,
	worker *pipeline.Worker,
	tracker *pipeline.ProgressTracker,
	eventStore store.Store,
	enc encryption.Service,
	configManager types.ConfigManager,
) (*pipeline.Queue, error) {
	return pipeline.NewQueue(database, worker, tracker, eventStore, enc, configManager.GetPipelineConfig())
}

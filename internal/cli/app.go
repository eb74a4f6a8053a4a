package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/civictriage/internal/cache"
	"github.com/ppiankov/civictriage/internal/logging"
	"github.com/ppiankov/civictriage/internal/model"
	"github.com/ppiankov/civictriage/internal/storage"
	"github.com/ppiankov/civictriage/internal/textnorm"
	"github.com/ppiankov/civictriage/internal/triage"
	"github.com/ppiankov/civictriage/internal/worker"
	"github.com/ppiankov/civictriage/internal/zeroshot"
)

// app holds the wired collaborators of one command run
type app struct {
	cfg        *model.Config
	logger     logging.Logger
	provider   zeroshot.Provider
	cache      cache.Cache
	classifier *triage.CategoryClassifier
	store      storage.Store
	pipeline   *triage.Pipeline
}

// newClassifierApp wires everything up to the classifier; no store is opened
func newClassifierApp(cfg *model.Config) (*app, error) {
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level})
	if err != nil {
		return nil, err
	}

	provider, err := zeroshot.NewProvider(zeroshot.ConfigFromModel(cfg.Classifier))
	if err != nil {
		return nil, fmt.Errorf("create classifier provider: %w", err)
	}

	normalizer, err := textnorm.New()
	if err != nil {
		return nil, fmt.Errorf("create normalizer: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "  Classifier:   %s %s\n", provider.Name(), cfg.Classifier.Model)
	}

	resultCache := cache.New(cfg.Cache)
	classifier := triage.NewCategoryClassifier(provider, normalizer, triage.ClassifierOptions{
		Cache:    resultCache,
		CacheTTL: cfg.Cache.MemoryTTL,
		Limiter:  worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize),
		Model:    cfg.Classifier.Model,
		Logger:   logger,
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		provider:   provider,
		cache:      resultCache,
		classifier: classifier,
	}, nil
}

// newApp wires the full triage pipeline over the configured store
func newApp(ctx context.Context, cfg *model.Config) (*app, error) {
	a, err := newClassifierApp(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = a.logger.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "  Store:        %s %s\n", cfg.Storage.Driver, cfg.Storage.DSN)
	}

	a.store = store
	a.pipeline = triage.NewPipeline(a.classifier, store, triage.Options{Logger: a.logger})
	return a, nil
}

// cacheSummary describes the classification cache for verbose output
func (a *app) cacheSummary() string {
	switch c := a.cache.(type) {
	case *cache.LayeredCache:
		stats := c.Stats()
		return fmt.Sprintf("memory+disk, %d hits, %d misses", stats.Hits, stats.Misses)
	case *cache.MemoryCache:
		return fmt.Sprintf("memory, %d entries", c.Len())
	default:
		return "disabled"
	}
}

// Close releases the store and flushes the logger
func (a *app) Close() error {
	var err error
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}
	// Sync on stderr returns EINVAL on some platforms
	_ = a.logger.Sync()
	return err
}

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/csheth/mindsnack/internal/catalog"
	"github.com/csheth/mindsnack/internal/config"
	"github.com/csheth/mindsnack/internal/logging"
	"github.com/csheth/mindsnack/internal/progress"
)

type globalOptions struct {
	configPath  string
	datasetPath string
	debug       bool
}

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	dataset *catalog.Dataset
}

func (o *globalOptions) load() (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.datasetPath != "" {
		cfg.Dataset = o.datasetPath
	}
	if o.debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Debug)
	if err != nil {
		return nil, err
	}
	dataset, err := catalog.Load(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("path", cfg.Dataset),
		zap.Int("categories", len(dataset.Categories())),
		zap.Int("models", dataset.Total()))
	return &app{cfg: cfg, logger: logger, dataset: dataset}, nil
}

// openStore never fails: an unusable backend degrades to memory so browsing
// continues without saving progress.
func (a *app) openStore() *progress.Store {
	backend, err := openBackend(a.cfg.Storage)
	if err != nil {
		a.logger.Warn("progress storage unavailable, keeping progress in memory",
			zap.String("backend", a.cfg.Storage.Backend),
			zap.String("path", a.cfg.Storage.Path),
			zap.Error(err))
		a.cfg.Storage.Backend = config.BackendMemory
		backend = progress.NewMemoryBackend()
	}
	a.logger.Debug("progress store opened",
		zap.String("backend", a.cfg.Storage.Backend),
		zap.String("path", a.cfg.Storage.Path))
	return progress.NewStore(backend, progress.WithLogger(a.logger))
}

func openBackend(cfg config.StorageConfig) (progress.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return progress.NewMemoryBackend(), nil
	case config.BackendSQLite:
		backend, err := progress.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open progress database: %w", err)
		}
		return backend, nil
	default:
		return progress.NewFileBackend(cfg.Path), nil
	}
}

func (a *app) close() {
	_ = a.logger.Sync()
}

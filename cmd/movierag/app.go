package main

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"movierag/internal/config"
	"movierag/internal/dataset"
	"movierag/internal/domain"
	"movierag/internal/embedding/openai"
	"movierag/internal/embedding/tfidf"
	"movierag/internal/indexing"
	"movierag/internal/logging"
	"movierag/internal/service"
	"movierag/internal/synthesis"
	"movierag/internal/vectorstore"
	"movierag/internal/vectorstore/chromem"
	"movierag/internal/vectorstore/memory"
	"movierag/internal/vectorstore/qdrant"
)

// app holds the components assembled from one config file.
type app struct {
	cfg     *config.AppConfig
	logger  *zap.Logger
	service *service.ExperimentService
	store   vectorstore.Storage
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	fn, err := synthesis.Lookup(cfg.Experiment.TextToEmbed)
	if err != nil {
		return nil, err
	}
	exp := service.Experiment{
		Name:     cfg.Experiment.Name,
		Strategy: cfg.Experiment.TextToEmbed,
		Config:   indexing.Config{TextToEmbed: fn},
		Workers:  cfg.Experiment.Workers,
	}

	emb, err := newEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	st, err := newStorage(cfg.VectorStore, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		service: service.NewExperimentService(exp, emb, st, logger),
		store:   st,
	}, nil
}

func newEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newStorage(cfg config.VectorStoreConfig, logger *zap.Logger) (vectorstore.Storage, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}, logger)
	case "chromem":
		if cfg.Chromem == nil {
			return nil, fmt.Errorf("chromem config missing")
		}
		return chromem.NewStorage(chromem.Config{
			Path:       cfg.Chromem.Path,
			Compress:   cfg.Chromem.Compress,
			Collection: cfg.Chromem.Collection,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

// close releases the store connection, if it holds one, and flushes the logger.
func (a *app) close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn("closing vector store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) loadMovies() ([]domain.Movie, error) {
	movies, err := dataset.LoadMovies(a.cfg.Dataset.Path, a.cfg.Dataset.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	a.logger.Info("dataset loaded",
		zap.String("path", a.cfg.Dataset.Path),
		zap.Int("movies", len(movies)),
	)
	return movies, nil
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/inmueble/internal/cache"
	"github.com/ppiankov/inmueble/internal/fallback"
	"github.com/ppiankov/inmueble/internal/metrics"
	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/pipeline"
	"github.com/ppiankov/inmueble/internal/worker"
)

// providerCheckTimeout bounds the startup availability check of all tiers
const providerCheckTimeout = 10 * time.Second

// openCache builds the fallback cache backend. Durable backends get an
// in-process memory layer in front.
func openCache(cfg model.CacheConfig) (cache.Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "disk", "":
		return cache.NewLayeredCache(cache.NewDiskCache(cfg.Dir)), nil
	case "sqlite":
		db, err := cache.OpenSQLiteCache(cfg.Path)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(db), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: disk, sqlite, memory)", cfg.Backend)
	}
}

// newResolver builds the inference fallback client. It returns nil when
// inference is disabled or no tier has a provider.
func newResolver(cfg *model.Config, runID string, c cache.Cache, rec metrics.Recorder) (*fallback.Client, error) {
	if !cfg.Fallback.Enabled {
		return nil, nil
	}

	limiter := worker.NewLimiter(0, 0)
	tiers, err := fallback.Tiers(cfg.Fallback, limiter)
	if err != nil {
		return nil, err
	}
	if cfg.Fallback.CheckProviders && len(tiers) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), providerCheckTimeout)
		tiers = fallback.Available(ctx, tiers)
		cancel()
	}
	if len(tiers) == 0 {
		zap.L().Warn("fallback enabled but no tier has an available provider")
		return nil, nil
	}

	return fallback.New(tiers,
		fallback.WithCache(c),
		fallback.WithRecorder(rec),
		fallback.WithLimiter(limiter),
		fallback.WithFields(cfg.Fallback.Fields),
		fallback.WithRunID(runID),
	), nil
}

// session holds the resources shared by the commands that run the pipeline
type session struct {
	cache    cache.Cache
	recorder metrics.Recorder
	resolver *fallback.Client
}

// openSession opens the cache, the metric sink and the fallback client
func openSession(cfg *model.Config, runID string) (*session, error) {
	c, err := openCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	rec, err := metrics.Open(cfg.Metrics)
	if err != nil {
		_ = cache.Close(c)
		return nil, fmt.Errorf("open metrics: %w", err)
	}

	resolver, err := newResolver(cfg, runID, c, rec)
	if err != nil {
		_ = rec.Close()
		_ = cache.Close(c)
		return nil, fmt.Errorf("build fallback: %w", err)
	}

	return &session{cache: c, recorder: rec, resolver: resolver}, nil
}

// newPipeline builds the record pipeline for cfg
func (s *session) newPipeline(cfg *model.Config) *pipeline.Pipeline {
	var opts []pipeline.Option
	if s.resolver != nil {
		opts = append(opts, pipeline.WithResolver(s.resolver))
	}
	return pipeline.New(cfg, opts...)
}

// Close releases the session resources
func (s *session) Close() error {
	recErr := s.recorder.Close()
	cacheErr := cache.Close(s.cache)
	if recErr != nil {
		return fmt.Errorf("close metrics: %w", recErr)
	}
	if cacheErr != nil {
		return fmt.Errorf("close cache: %w", cacheErr)
	}
	return nil
}

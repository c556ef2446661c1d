package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/config"
	dbRedis "github.com/T21C/tuf-backend-sub003/internal/db/redis"
	logpkg "github.com/T21C/tuf-backend-sub003/internal/logger"
	"github.com/T21C/tuf-backend-sub003/internal/metrics"
	"github.com/T21C/tuf-backend-sub003/internal/repository/searchindex"
	"github.com/T21C/tuf-backend-sub003/internal/store"
	projectuc "github.com/T21C/tuf-backend-sub003/internal/usecase/project"
	reindexuc "github.com/T21C/tuf-backend-sub003/internal/usecase/reindex"
	searchuc "github.com/T21C/tuf-backend-sub003/internal/usecase/search"
	syncuc "github.com/T21C/tuf-backend-sub003/internal/usecase/sync"
)

// app is the composition root shared by the serve and reindex commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	engine *dbRedis.Store
	store  *store.Store

	search  *searchuc.Service
	sync    *syncuc.Service
	reindex *reindexuc.Service
}

func buildApp(ctx context.Context) (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	engine, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Engine.Addrs,
		Username: cfg.Engine.Username,
		Password: cfg.Engine.Password,
		DB:       cfg.Engine.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect search engine: %w", err)
	}
	if err := engine.WaitForReady(ctx, time.Duration(cfg.Engine.ReadinessTimeout)*time.Second); err != nil {
		engine.Close()
		return nil, fmt.Errorf("search engine not ready: %w", err)
	}

	st, err := store.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	metrics.RegisterIndexMetrics()
	rec := metrics.Recorder{}

	repo := searchindex.New(engine, cfg.Index.KeyPrefix, cfg.Index.BulkBatchSize)
	proj := projectuc.New(st)

	a := &app{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		store:  st,
		search: searchuc.New(repo, rec, logger, cfg.Index.CursorPageSize),
		sync: syncuc.New(proj, repo, rec, logger,
			time.Duration(cfg.Index.SyncTimeoutSec)*time.Second),
		reindex: reindexuc.New(st, proj, repo, rec, logger, cfg.Index.ChunkSize),
	}
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	a.engine.Close()
	_ = a.logger.Sync()
}

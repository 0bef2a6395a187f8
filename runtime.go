package innerlife

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Runtime assembles the package's components from a Config: repository,
// state engine, usage tracking, selection, and the background scheduler.
type Runtime struct {
	Config    *Config
	Repo      Repository
	Engine    *StateEngine
	Generator *Generator
	Tracker   *UsageTracker
	Selection *SelectionService
	Scheduler *Scheduler

	log         *zap.Logger
	redisClient *redis.Client
	sqliteRepo  *SQLiteRepository
}

// NewRuntime builds a runtime from configuration. SQLite and Redis are
// used when configured, with in-memory implementations otherwise. A nil
// logger disables logging.
func NewRuntime(cfg *Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := &Runtime{Config: cfg, log: logger}

	if cfg.SQLitePath != "" {
		repo, err := NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		rt.sqliteRepo = repo
		rt.Repo = repo
		logger.Info("using sqlite repository", zap.String("path", cfg.SQLitePath))
	} else {
		rt.Repo = NewMemoryRepository()
		logger.Info("using in-memory repository")
	}

	var usageStore UsageStore
	if cfg.RedisAddr != "" {
		rt.redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		usageStore = NewRedisUsageStore(rt.redisClient, cfg.UserUsageTTL, cfg.ConversationUsageTTL)
		logger.Info("using redis usage store", zap.String("addr", cfg.RedisAddr))
	} else {
		usageStore = NewInMemoryUsageStore()
		logger.Info("using in-memory usage store")
	}

	catalog := DefaultTraitCatalog()
	rt.Engine = NewStateEngine(rt.Repo, catalog, cfg.engineConfig(), logger)
	rt.Generator = NewGenerator(time.Now().UnixNano())
	rt.Tracker = NewUsageTracker(usageStore, logger)
	rt.Selection = NewSelectionService(rt.Engine, rt.Tracker, logger)
	rt.Scheduler = NewScheduler(rt.Generator, rt.Repo, rt.Engine, cfg.schedulerConfig(), logger)

	return rt, nil
}

// Start seeds default trait state and launches the background loops.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.Engine.InitializeDefaults(ctx); err != nil {
		return err
	}
	r.Scheduler.Start(ctx)
	return nil
}

// Close stops the scheduler and releases external connections.
func (r *Runtime) Close() error {
	r.Scheduler.Stop()
	var firstErr error
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if r.sqliteRepo != nil {
		if err := r.sqliteRepo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

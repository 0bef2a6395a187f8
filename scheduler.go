package innerlife

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default cadence for background work.
const (
	DefaultGenerateInterval = time.Hour
	DefaultSweepInterval    = 15 * time.Minute
	DefaultSweepBatch       = 10
)

// SchedulerConfig tunes the background loops. Zero values fall back to
// the package defaults.
type SchedulerConfig struct {
	GenerateInterval time.Duration
	SweepInterval    time.Duration
	SweepBatch       int
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.GenerateInterval <= 0 {
		c.GenerateInterval = DefaultGenerateInterval
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = DefaultSweepBatch
	}
	return c
}

// Scheduler drives the persona's background life: an hourly roll that
// may generate a new event, and a sweep that folds unprocessed events
// into trait state.
type Scheduler struct {
	generator *Generator
	repo      Repository
	engine    *StateEngine
	cfg       SchedulerConfig
	log       *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    sync.WaitGroup
	running bool
}

// NewScheduler wires a scheduler. A nil logger disables logging.
func NewScheduler(generator *Generator, repo Repository, engine *StateEngine, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		generator: generator,
		repo:      repo,
		engine:    engine,
		cfg:       cfg.withDefaults(),
		log:       logger,
		now:       time.Now,
	}
}

// Start launches the generation and sweep loops. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.done.Add(2)
	go s.loop(ctx, s.cfg.GenerateInterval, "generate", s.RunGenerationOnce)
	go s.loop(ctx, s.cfg.SweepInterval, "sweep", s.RunSweepOnce)
	s.log.Info("scheduler started",
		zap.Duration("generate_interval", s.cfg.GenerateInterval),
		zap.Duration("sweep_interval", s.cfg.SweepInterval))
}

// Stop halts the loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.done.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, name string, run func(context.Context) error) {
	defer s.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := run(ctx); err != nil {
				s.log.Warn("scheduled run failed",
					zap.String("loop", name), zap.Error(err))
			}
		}
	}
}

// RunGenerationOnce rolls the current hour's event chance and persists
// the event if one fires. A roll that produces nothing is not an error.
func (s *Scheduler) RunGenerationOnce(ctx context.Context) error {
	hour := s.now().Hour()
	candidate, err := s.generator.GenerateForHour(hour)
	if err != nil {
		return err
	}
	if candidate == nil {
		s.log.Debug("no event this hour", zap.Int("hour", hour))
		return nil
	}
	ev, err := s.repo.CreateEvent(ctx, *candidate)
	if err != nil {
		return err
	}
	s.log.Info("generated event",
		zap.String("event_id", ev.EventID),
		zap.String("category", string(ev.Category)),
		zap.Int("intensity", ev.Intensity),
		zap.String("summary", ev.Summary))
	return nil
}

// RunSweepOnce applies up to the configured batch of unprocessed events
// to trait state, oldest first. Events that fail to apply stay
// unprocessed and are retried on the next sweep.
func (s *Scheduler) RunSweepOnce(ctx context.Context) error {
	events, err := s.repo.UnprocessedEvents(ctx, s.cfg.SweepBatch)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := s.engine.ApplyEventImpact(ctx, ev); err != nil {
			s.log.Warn("event impact failed, will retry",
				zap.String("event_id", ev.EventID), zap.Error(err))
			continue
		}
		if err := s.repo.MarkEventProcessed(ctx, ev.EventID, s.now().UTC()); err != nil {
			s.log.Warn("failed to mark event processed",
				zap.String("event_id", ev.EventID), zap.Error(err))
		}
	}
	return nil
}

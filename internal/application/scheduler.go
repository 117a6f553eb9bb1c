package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/port/driven"
)

// Syncer is the slice of the orchestrator the scheduler drives.
type Syncer interface {
	Sync(ctx context.Context, platform model.Platform) model.SyncStatus
	SyncAll(ctx context.Context) map[model.Platform]model.SyncStatus
}

// Scheduler turns raw cookie change notifications into debounced sync
// invocations. Each platform holds at most one pending timer: a new
// notification cancels and replaces it (trailing-edge debounce), so a burst
// of N changes inside the quiet period collapses to one sync scheduled from
// the last change. An independent cron schedule fires an unconditional sync
// of every platform at a long interval, recovering from missed notifications.
type Scheduler struct {
	syncer   Syncer
	watcher  driven.CookieWatcher
	quiet    time.Duration
	fallback time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[model.Platform]*time.Timer

	fires      chan model.Platform
	fallbackCh chan struct{}
}

// NewScheduler creates a Scheduler. quiet is the debounce quiet period;
// fallback is the unconditional resync interval.
func NewScheduler(syncer Syncer, watcher driven.CookieWatcher, quiet, fallback time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:     syncer,
		watcher:    watcher,
		quiet:      quiet,
		fallback:   fallback,
		logger:     logger,
		timers:     make(map[model.Platform]*time.Timer, len(model.Platforms)),
		fires:      make(chan model.Platform, 4*len(model.Platforms)),
		fallbackCh: make(chan struct{}, 1),
	}
}

// Notify registers a change notification for the platform, restarting its
// debounce timer.
func (s *Scheduler) Notify(platform model.Platform) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[platform]; ok {
		t.Stop()
	}
	s.timers[platform] = time.AfterFunc(s.quiet, func() {
		select {
		case s.fires <- platform:
		default:
			// Buffer full means a sync for this burst is already queued;
			// the fallback schedule covers anything truly dropped.
			s.logger.Warn("debounce fire dropped", "platform", platform)
		}
	})
}

// Run consumes watcher events and executes debounce-fired and fallback syncs.
// It blocks until the context is canceled. Sync attempts run inline, so the
// loop applies natural backpressure: notifications arriving during a sync
// simply restart their platform's timer once processed.
func (s *Scheduler) Run(ctx context.Context) {
	c := cron.New()
	c.Schedule(cron.Every(s.fallback), cron.FuncJob(func() {
		select {
		case s.fallbackCh <- struct{}{}:
		default:
		}
	}))
	c.Start()
	defer c.Stop()

	s.logger.Info("scheduler started", "quiet_period", s.quiet, "fallback_interval", s.fallback)

	events := s.watcher.Events()
	for {
		select {
		case <-ctx.Done():
			s.stopTimers()
			s.logger.Info("scheduler stopped")
			return
		case p, ok := <-events:
			if !ok {
				// Watcher gone; fallback schedule keeps syncs alive.
				events = nil
				continue
			}
			s.Notify(p)
		case p := <-s.fires:
			s.syncer.Sync(ctx, p)
		case <-s.fallbackCh:
			s.logger.Info("fallback sync triggered")
			s.syncer.SyncAll(ctx)
		}
	}
}

// stopTimers cancels every pending debounce timer.
func (s *Scheduler) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, t := range s.timers {
		t.Stop()
		delete(s.timers, p)
	}
}

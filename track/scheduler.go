package track

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/vidmetrics"
	"github.com/google/uuid"
)

// DefaultInterval is the time between two ticks.
const DefaultInterval = 10 * time.Minute

// Ticker delivers tick times. It mirrors the part of time.Ticker the
// Scheduler uses, so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(d)}
}

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// TickResult summarizes one tick.
type TickResult struct {
	ID        string
	Records   []*vidmetrics.MetricRecord
	Failed    int
	Persisted bool
	Err       error // persist error, if any
}

// Scheduler extracts every target once per tick and persists the batch.
// Targets are processed one at a time, in order. A failed target is skipped
// for the tick; a failed persist loses that tick's batch. Neither stops Run.
type Scheduler struct {
	Targets   []string
	Extractor vidmetrics.Extractor
	Store     vidmetrics.MetricsStore

	// Limiter, if set, is waited on with the target host before each extraction.
	Limiter vidmetrics.DomainLimiter

	// Interval between ticks. Defaults to DefaultInterval.
	Interval time.Duration

	// NewTicker creates the tick source. Defaults to NewTimeTicker.
	NewTicker func(time.Duration) Ticker

	Logger *slog.Logger
}

// Validate returns an error if the scheduler cannot run.
func (s *Scheduler) Validate() error {
	if len(s.Targets) == 0 {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "at least one target URL required")
	}
	for _, t := range s.Targets {
		if _, err := vidmetrics.ParseTarget(t); err != nil {
			return err
		}
	}
	if s.Extractor == nil {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "extractor required")
	}
	if s.Store == nil {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "store required")
	}
	if s.Interval < 0 {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "interval must be positive")
	}
	return nil
}

// Run executes a tick immediately and then one per interval until ctx is
// canceled. A tick always runs to completion before the next one starts;
// intervals that elapse meanwhile are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}

	interval := s.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	newTicker := s.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}

	s.logger().Info("scheduler started",
		"targets", len(s.Targets),
		"interval", interval,
	)

	s.Tick(ctx)

	ticker := newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger().Info("scheduler stopped")
			return nil
		case <-ticker.C():
			if ctx.Err() != nil {
				continue
			}
			s.Tick(ctx)
		}
	}
}

// Tick runs one extract and persist cycle over all targets.
// Persist is skipped when no target produced a record.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	begin := time.Now()
	result := TickResult{ID: uuid.NewString()}
	logger := s.logger().With("tick", result.ID)
	logger.Info("tick started", "targets", len(s.Targets))

	for _, target := range s.Targets {
		rec, err := s.extract(ctx, target)
		if err != nil {
			result.Failed++
			logger.Debug("target skipped", "url", target, "err", err)
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		logger.Info("tick finished without records",
			"failed", result.Failed,
			"duration", time.Since(begin),
		)
		return result
	}

	if err := s.Store.Persist(ctx, result.Records); err != nil {
		result.Err = err
		logger.Error("persist failed, batch dropped",
			"records", len(result.Records),
			"err", err,
		)
	} else {
		result.Persisted = true
	}

	logger.Info("tick finished",
		"records", len(result.Records),
		"failed", result.Failed,
		"persisted", result.Persisted,
		"duration", time.Since(begin),
	)
	return result
}

func (s *Scheduler) extract(ctx context.Context, target string) (*vidmetrics.MetricRecord, error) {
	if s.Limiter != nil {
		u, err := vidmetrics.ParseTarget(target)
		if err != nil {
			return nil, err
		}
		if err := s.Limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, err
		}
	}
	return s.Extractor.Extract(ctx, target)
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

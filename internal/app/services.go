package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"backlightd/internal/backlight"
	"backlightd/internal/config"
	"backlightd/internal/db"
	"backlightd/internal/eventbus"
	"backlightd/internal/ledger"
	"backlightd/internal/metrics"
	"backlightd/internal/syncer"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB      *db.DB
	Ledger  *ledger.Ledger
	Bus     *eventbus.Bus
	Metrics *metrics.Recorder

	// The sync loop itself
	Syncer *syncer.Syncer

	// High-level services
	Health *HealthService

	// Tracks the sync loop and cleanup goroutines so Stop can join them
	// before tearing down the bus and database they publish into.
	wg sync.WaitGroup
}

// NewServices creates all services with proper dependency injection.
// This is where startup validation runs: endpoint files are checked once,
// ranges are read once, and any failure aborts construction.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	source := backlight.Endpoint{
		BrightnessPath: cfg.Source.Brightness,
		MaxPath:        cfg.Source.Max,
	}
	target := backlight.Endpoint{
		BrightnessPath: cfg.Target.Brightness,
		MaxPath:        cfg.Target.Max,
	}

	// Validate endpoint files once; they are never re-checked per tick.
	if err := source.ValidateReadable(); err != nil {
		return nil, err
	}
	if err := target.ValidateWritable(); err != nil {
		return nil, err
	}

	// Initialize the sync loop; this reads and validates both ranges.
	var err error
	s.Syncer, err = syncer.New(backlight.Sysfs{}, source, target, cfg.Poll.Interval.Duration())
	if err != nil {
		return nil, err
	}

	// Initialize event bus
	s.Bus = eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize())
	s.Syncer.SetBus(s.Bus)

	// Initialize metrics
	s.Metrics = metrics.NewRecorder()
	s.subscribeMetrics()

	// Initialize sync history (optional; never fatal)
	if cfg.History.Enabled {
		database, err := db.Open(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.History.Path).Msg("Sync history disabled: cannot open database")
		} else {
			s.DB = database
			s.Ledger = ledger.New(database.DB, uuid.NewString())
			s.subscribeLedger()
		}
	}

	// Initialize health service
	s.Health = NewHealthService(cfg, s.Metrics, s.Ledger)

	return s, nil
}

// subscribeMetrics routes sync events into the Prometheus recorder.
func (s *Services) subscribeMetrics() {
	s.Bus.Subscribe(eventbus.EventTypeSync, func(e eventbus.Event) {
		s.Metrics.ObserveSync(e.SourceValue, e.TargetValue)
	})
	s.Bus.Subscribe(eventbus.EventTypeWriteFailed, func(e eventbus.Event) {
		s.Metrics.ObserveWriteFailure()
	})
	s.Bus.Subscribe(eventbus.EventTypeReadFailed, func(e eventbus.Event) {
		s.Metrics.ObserveReadFailure()
	})
}

// subscribeLedger routes sync events into the history ledger.
func (s *Services) subscribeLedger() {
	record := func(e eventbus.Event) {
		if err := s.Ledger.Record(string(e.Type), e.SourceValue, e.TargetValue, e.Detail); err != nil {
			log.Warn().Err(err).Msg("Failed to record sync history entry")
		}
	}
	s.Bus.Subscribe(eventbus.EventTypeSync, record)
	s.Bus.Subscribe(eventbus.EventTypeWriteFailed, record)
	s.Bus.Subscribe(eventbus.EventTypeReadFailed, record)
}

// Start starts all services.
// The onFatalError callback is invoked when the sync loop fails in a way
// that cannot be retried (e.g. the initial source read fails).
func (s *Services) Start(ctx context.Context, onFatalError func(error)) {
	s.Health.Start(ctx)

	if s.Ledger != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runHistoryCleanup(ctx)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Syncer.Run(ctx); err != nil {
			onFatalError(err)
		}
	}()
}

// runHistoryCleanup periodically prunes history entries past retention.
func (s *Services) runHistoryCleanup(ctx context.Context) {
	interval := s.cfg.History.CleanupInterval.Duration()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Ledger.Cleanup(s.cfg.History.RetentionDays)
			if err != nil {
				log.Warn().Err(err).Msg("Sync history cleanup failed")
			} else if removed > 0 {
				log.Debug().Int64("removed", removed).Msg("Sync history cleaned up")
			}
		}
	}
}

// Stop gracefully shuts down all services in reverse order.
// The sync loop is joined first so no tick can publish into a closing bus.
func (s *Services) Stop() error {
	s.wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()

	if s.Bus != nil {
		s.Bus.Close(shutdownCtx)
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close history database")
		}
	}

	return nil
}

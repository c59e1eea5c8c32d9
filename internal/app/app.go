package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"backlightd/internal/config"
)

// App is the main application container that manages all services and their
// lifecycle.
type App struct {
	cfg      *config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	fatalErr error
}

// New creates a new App instance with all services initialized but not
// started. Startup validation of the backlight endpoints happens here:
// any error returned means the environment's hardware assumptions are wrong
// and the process must exit non-zero.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		services: services,
	}, nil
}

// Start initializes and starts all services.
// The provided context is used for cancellation.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	// Fatal error handler - records the error and cancels the app context
	// to trigger shutdown. The recorded error surfaces through Err so the
	// process can exit non-zero and be restarted by its supervisor.
	onFatalError := func(err error) {
		log.Error().Err(err).Msg("Fatal error, initiating shutdown")
		a.mu.Lock()
		if a.fatalErr == nil {
			a.fatalErr = err
		}
		a.mu.Unlock()
		a.cancel()
	}

	a.services.Start(a.ctx, onFatalError)

	log.Info().Msg("backlightd started")
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	log.Info().Msg("Shutting down...")

	if a.cancel != nil {
		a.cancel()
	}

	if a.services != nil {
		return a.services.Stop()
	}

	return nil
}

// Wait blocks until the application context is cancelled.
func (a *App) Wait() {
	if a.ctx != nil {
		<-a.ctx.Done()
	}
}

// Err returns the fatal error that triggered shutdown, or nil if the
// application stopped for another reason (e.g. a termination signal).
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fatalErr
}

// SignalContext creates a context that is cancelled when SIGINT or SIGTERM is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}

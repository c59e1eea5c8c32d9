package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"backlightd/internal/config"
	"backlightd/internal/ledger"
	"backlightd/internal/metrics"
)

// HealthService provides HTTP health check, metrics and history endpoints.
type HealthService struct {
	cfg     *config.Config
	metrics *metrics.Recorder
	ledger  *ledger.Ledger
	server  *http.Server
}

// NewHealthService creates a new HealthService.
func NewHealthService(cfg *config.Config, rec *metrics.Recorder, l *ledger.Ledger) *HealthService {
	return &HealthService{
		cfg:     cfg,
		metrics: rec,
		ledger:  l,
	}
}

// Start begins the health check server if enabled.
func (s *HealthService) Start(ctx context.Context) {
	if !s.cfg.Healthcheck.Enabled {
		return
	}

	go s.run(ctx)
}

func (s *HealthService) run(ctx context.Context) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Healthcheck.Host, s.cfg.Healthcheck.Port)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	if s.ledger != nil {
		mux.HandleFunc("/history", s.handleHistory)
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	log.Info().Str("addr", addr).Msg("Starting health check server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Health check server shutdown error")
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Health check server error")
	}
}

// handleHistory returns the most recent sync history entries.
func (s *HealthService) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.Recent(100)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sync history")
		http.Error(w, "failed to load sync history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Error().Err(err).Msg("Failed to encode sync history")
	}
}

// Package syncer implements the brightness sync loop: poll the source
// backlight, rescale changed values into the target's range, write them out.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"backlightd/internal/backlight"
	"backlightd/internal/eventbus"
)

// Syncer keeps the target backlight proportional to the source backlight.
// Both device ranges are read once at construction and held fixed for the
// process lifetime; if the hardware range changes at runtime the daemon
// computes against the stale range until restarted.
type Syncer struct {
	acc    backlight.Accessor
	source backlight.Endpoint
	target backlight.Endpoint

	interval time.Duration

	sourceRange int
	targetRange int
	last        int

	bus *eventbus.Bus

	// Throttles repeated steady-state failure logs so a stuck target
	// cannot flood the journal at poll cadence.
	failLog *rate.Limiter
}

// New builds a Syncer and reads both device ranges through acc.
// An unreadable, unparseable, or non-positive range is a startup
// validation failure and is returned as an error.
func New(acc backlight.Accessor, source, target backlight.Endpoint, interval time.Duration) (*Syncer, error) {
	sourceRange, err := source.Range(acc)
	if err != nil {
		return nil, fmt.Errorf("source endpoint: %w", err)
	}
	targetRange, err := target.Range(acc)
	if err != nil {
		return nil, fmt.Errorf("target endpoint: %w", err)
	}

	return &Syncer{
		acc:         acc,
		source:      source,
		target:      target,
		interval:    interval,
		sourceRange: sourceRange,
		targetRange: targetRange,
		failLog:     rate.NewLimiter(rate.Every(10*time.Second), 1),
	}, nil
}

// SetBus attaches an event bus for sync observers. Optional.
func (s *Syncer) SetBus(bus *eventbus.Bus) {
	s.bus = bus
}

// SourceRange returns the source device's maximum brightness.
func (s *Syncer) SourceRange() int { return s.sourceRange }

// TargetRange returns the target device's maximum brightness.
func (s *Syncer) TargetRange() int { return s.targetRange }

// Run performs the initial sync and then polls until ctx is cancelled.
// After the initial source read succeeds no error path remains: steady-state
// read and write failures are logged and tolerated, never returned.
func (s *Syncer) Run(ctx context.Context) error {
	log.Info().
		Dur("interval", s.interval).
		Int("source_range", s.sourceRange).
		Int("target_range", s.targetRange).
		Msg("Brightness sync started")

	if err := s.initial(); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Brightness sync stopping")
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

// initial reads the source once and writes the scaled target unconditionally,
// so the target matches the source even if nothing changes afterwards.
func (s *Syncer) initial() error {
	value, err := s.acc.ReadInt(s.source.BrightnessPath)
	if err != nil {
		return fmt.Errorf("initial source read: %w", err)
	}
	s.apply(value)
	s.last = value
	return nil
}

// tick reads the source and syncs the target if the value changed.
func (s *Syncer) tick() {
	value, err := s.acc.ReadInt(s.source.BrightnessPath)
	if err != nil {
		if s.failLog.Allow() {
			log.Error().Err(err).Str("path", s.source.BrightnessPath).Msg("Failed to read source brightness")
		}
		s.publish(eventbus.EventTypeReadFailed, 0, 0, err.Error())
		return
	}

	if value == s.last {
		return
	}

	s.apply(value)
	// Updated even when the write fails: the next detected change is the
	// implicit retry, bounded naturally by the poll interval.
	s.last = value
}

// apply scales value into the target range and writes it.
// Write failures are transient: hardware may be briefly busy, and the
// daemon must never die because one write was refused.
func (s *Syncer) apply(value int) {
	scaled := Scale(value, s.sourceRange, s.targetRange)

	if err := s.acc.WriteInt(s.target.BrightnessPath, scaled); err != nil {
		if s.failLog.Allow() {
			log.Error().Err(err).
				Str("path", s.target.BrightnessPath).
				Int("value", scaled).
				Msg("Failed to write target brightness")
		}
		s.publish(eventbus.EventTypeWriteFailed, value, scaled, err.Error())
		return
	}

	log.Debug().Int("source", value).Int("target", scaled).Msg("Brightness synced")
	s.publish(eventbus.EventTypeSync, value, scaled, "")
}

func (s *Syncer) publish(t eventbus.EventType, sourceValue, targetValue int, detail string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{
		Type:        t,
		SourceValue: sourceValue,
		TargetValue: targetValue,
		Detail:      detail,
		At:          time.Now(),
	})
}

package core

// scheduler.go runs background maintenance for the session service.
//
// The only job today is the session sweeper: review sessions hold whole
// tables in memory, so sessions idle past the TTL are closed on a ticker.
// The sweeper is long-running and context-aware for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for the session sweeper.
// Zero values fall back to defaults.
type SweepConfig struct {
	TTL      time.Duration // Idle time before a session is closed (default: 2h)
	Interval time.Duration // How often to check (default: 5m)
}

const (
	defaultSweepTTL      = 2 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

func (c SweepConfig) withDefaults() SweepConfig {
	if c.TTL <= 0 {
		c.TTL = defaultSweepTTL
	}
	if c.Interval <= 0 {
		c.Interval = defaultSweepInterval
	}
	return c
}

// StartSessionSweeper closes idle sessions every Interval until ctx is
// cancelled. It blocks, so run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()

	slog.Info("session sweeper started",
		"ttl", cfg.TTL,
		"interval", cfg.Interval,
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg.TTL)
		}
	}
}

// Sweep closes sessions idle longer than ttl and returns how many.
func (s *Service) Sweep(ttl time.Duration) int {
	return s.runSweep(ttl)
}

func (s *Service) runSweep(ttl time.Duration) int {
	start := time.Now()
	closed := s.sweep(ttl)

	if closed > 0 {
		slog.Info("expired sessions closed",
			"sessions_closed", closed,
			"sessions_open", s.SessionCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return closed
}

// Package worker holds the background loops started with the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voucher-engine/internal/usecase/commands"
)

// SweepScheduler runs the expired-voucher sweep on a fixed interval. It runs
// once right after Start so a restart never delays the sweep by a full period.
type SweepScheduler struct {
	sweeper  commands.SweepCommands
	interval time.Duration
	timeout  time.Duration
	enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewSweepScheduler(sweeper commands.SweepCommands, interval time.Duration, enabled bool) *SweepScheduler {
	return &SweepScheduler{
		sweeper:  sweeper,
		interval: interval,
		timeout:  time.Minute,
		enabled:  enabled,
		stop:     make(chan struct{}),
	}
}

func (s *SweepScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		slog.Info("sweep scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.wg.Add(1)
	go s.run()

	slog.Info("sweep scheduler started", "interval", s.interval.String())
}

func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		slog.Info("sweep scheduler stopped")
	}
}

func (s *SweepScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweepOnce()

	for {
		select {
		case <-s.ticker.C:
			s.sweepOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *SweepScheduler) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.sweeper.SweepExpiredVouchers(ctx); err != nil {
		slog.Error("scheduled sweep failed", "error", err.Error())
	}
}

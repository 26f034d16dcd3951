// Package worker runs background maintenance next to the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"space-booking/internal/usecase/commands"
)

// Sweeper periodically cancels expired pending reservations and prunes old
// idempotency keys. Expired pending reservations already stop blocking slots
// when their deadline passes; the sweep only brings stored status in line.
type Sweeper struct {
	expiry   commands.ExpiryCommands
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweeper(expiry commands.ExpiryCommands, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		expiry:   expiry,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer close(s.doneCh)

	slog.Info("pending sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pending sweeper stopped by context")
			return
		case <-s.stopCh:
			slog.Info("pending sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
	if wasRunning {
		<-s.doneCh
	}
}

// RunOnce performs a single sweep. Failures are logged and retried on the next tick.
func (s *Sweeper) RunOnce(ctx context.Context) *commands.SweepResult {
	res, err := s.expiry.Sweep(ctx)
	if err != nil {
		slog.Error("pending sweep failed", "error", err.Error())
		return nil
	}
	if len(res.Expired) > 0 || res.IdempotencyKeysDeleted > 0 {
		slog.Info("pending sweep finished",
			"expired", len(res.Expired),
			"idempotency_keys_deleted", res.IdempotencyKeysDeleted)
	}
	return res
}

package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/metrics"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// TokenPurger deletes refresh ledger records in bounded batches
type TokenPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// TokenSweeperConfig contains configuration for the token sweeper
type TokenSweeperConfig struct {
	// Interval is the time between sweeps
	Interval time.Duration
	// RetainRevoked keeps revoked records around for auditing before deletion
	RetainRevoked time.Duration
	// BatchSize bounds each DELETE
	BatchSize int
}

// DefaultTokenSweeperConfig returns default configuration
func DefaultTokenSweeperConfig() *TokenSweeperConfig {
	return &TokenSweeperConfig{
		Interval:      time.Hour,
		RetainRevoked: 24 * time.Hour,
		BatchSize:     1000,
	}
}

// TokenSweeperStats holds sweeper statistics
type TokenSweeperStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalExpired  int64     `json:"total_expired"`
	TotalRevoked  int64     `json:"total_revoked"`
	LastSweepTime time.Time `json:"last_sweep_time"`
}

// TokenSweeper bounds the size of the refresh ledger. Validation checks
// expiry on its own, so a late sweep never lets a dead token through.
type TokenSweeper struct {
	purger  TokenPurger
	config  *TokenSweeperConfig
	log     *logger.Logger
	now     func() time.Time
	stopCh  chan struct{} // recreated per Start
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	totalExpired  int64
	totalRevoked  int64
	lastSweepTime time.Time
}

// NewTokenSweeper creates a new token sweeper
func NewTokenSweeper(purger TokenPurger, config *TokenSweeperConfig) *TokenSweeper {
	defaults := DefaultTokenSweeperConfig()
	if config == nil {
		config = defaults
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.RetainRevoked < 0 {
		config.RetainRevoked = 0
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	return &TokenSweeper{
		purger: purger,
		config: config,
		log:    logger.Get(),
		now:    time.Now,
	}
}

// Start runs a sweep immediately and then every Interval until Stop or ctx ends
func (w *TokenSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("token sweeper already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Starting token sweeper",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("retain_revoked", w.config.RetainRevoked),
	)

	w.wg.Add(1)
	go w.loop(ctx, stopCh)
	return nil
}

// Stop stops the sweeper and waits for an in-flight sweep to finish
func (w *TokenSweeper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping token sweeper")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Token sweeper stopped")
}

func (w *TokenSweeper) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.sweepLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.sweepLogged(ctx)
		}
	}
}

func (w *TokenSweeper) sweepLogged(ctx context.Context) {
	expired, revoked, err := w.Sweep(ctx)
	if err != nil {
		w.log.Error("Token sweep failed", zap.Error(err))
		return
	}
	if expired+revoked > 0 {
		w.log.Info("Token sweep completed",
			zap.Int64("expired", expired),
			zap.Int64("revoked", revoked),
		)
	}
}

// Sweep deletes every expired record and every record revoked longer than
// RetainRevoked ago, batch by batch
func (w *TokenSweeper) Sweep(ctx context.Context) (expired, revoked int64, err error) {
	ctx, span := telemetry.StartSpan(ctx, "worker.token_sweeper.sweep")
	defer span.End()

	now := w.now()
	w.mu.Lock()
	w.lastSweepTime = now
	w.mu.Unlock()

	expired, err = w.drain(ctx, now, w.purger.DeleteExpired)
	w.record(ctx, "expired", expired)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return expired, 0, fmt.Errorf("failed to sweep expired tokens: %w", err)
	}

	revoked, err = w.drain(ctx, now.Add(-w.config.RetainRevoked), w.purger.DeleteRevokedBefore)
	w.record(ctx, "revoked", revoked)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return expired, revoked, fmt.Errorf("failed to sweep revoked tokens: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("expired", expired),
		attribute.Int64("revoked", revoked),
	)
	return expired, revoked, nil
}

func (w *TokenSweeper) drain(ctx context.Context, cutoff time.Time, del func(context.Context, time.Time, int) (int64, error)) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := del(ctx, cutoff, w.config.BatchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(w.config.BatchSize) {
			return total, nil
		}
	}
}

func (w *TokenSweeper) record(ctx context.Context, kind string, n int64) {
	if n == 0 {
		return
	}
	metrics.RecordTokensSwept(ctx, kind, n)

	w.mu.Lock()
	defer w.mu.Unlock()
	if kind == "expired" {
		w.totalExpired += n
	} else {
		w.totalRevoked += n
	}
}

// GetStats returns sweeper statistics
func (w *TokenSweeper) GetStats() *TokenSweeperStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &TokenSweeperStats{
		IsRunning:     w.running,
		TotalExpired:  w.totalExpired,
		TotalRevoked:  w.totalRevoked,
		LastSweepTime: w.lastSweepTime,
	}
}

// Package scheduler runs periodic maintenance jobs for the worker process.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/licensor/internal/shared/logger"
)

// BatchJob processes one batch per call and reports how many items it handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// DefaultProvisioningInterval is used when the configured interval is not positive.
const DefaultProvisioningInterval = 5 * time.Minute

// ProvisioningScheduler retries license generation for paid transactions
// that were recorded but never received a license.
type ProvisioningScheduler struct {
	retryJob BatchJob
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

func NewProvisioningScheduler(retryJob BatchJob, interval time.Duration, logger logger.Interface) *ProvisioningScheduler {
	if interval <= 0 {
		interval = DefaultProvisioningInterval
	}
	return &ProvisioningScheduler{
		retryJob: retryJob,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start launches the retry loop and returns immediately.
func (s *ProvisioningScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting provisioning scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler and waits for an in-flight batch to finish.
// Safe to call multiple times.
func (s *ProvisioningScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping provisioning scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("provisioning scheduler stopped")
	})
}

func (s *ProvisioningScheduler) runLoop(ctx context.Context) {
	// Run immediately so a crash-restart picks up orphaned payments at once.
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("provisioning scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single retry batch.
func (s *ProvisioningScheduler) RunOnce(ctx context.Context) {
	startTime := time.Now()

	count, err := s.retryJob.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Errorw("failed to retry license provisioning",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		s.logger.Infow("license provisioning retried",
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}

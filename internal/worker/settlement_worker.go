package worker

import (
	"context"
	"sync"
	"time"

	"github.com/bagayi/finance-api/internal/observability"
	"github.com/bagayi/finance-api/internal/service"
	"go.uber.org/zap"
)

// SettlementWorker polls for submitted M-Pesa channel transfers and settles
// them through the gateway.
type SettlementWorker struct {
	svc          *service.SettlementService
	pollInterval time.Duration
	batchSize    int32
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewSettlementWorker(svc *service.SettlementService) *SettlementWorker {
	return &SettlementWorker{
		svc:          svc,
		pollInterval: 10 * time.Second,
		batchSize:    10,
		stopCh:       make(chan struct{}),
	}
}

func (w *SettlementWorker) WithPollInterval(interval time.Duration) *SettlementWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	return w
}

func (w *SettlementWorker) WithBatchSize(size int32) *SettlementWorker {
	if size > 0 {
		w.batchSize = size
	}
	return w
}

// Start blocks and polls at the configured interval until stopped.
func (w *SettlementWorker) Start(ctx context.Context) {
	zap.L().Info("settlement worker starting",
		zap.Duration("interval", w.pollInterval),
		zap.Int32("batch", w.batchSize),
	)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("settlement worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("settlement worker stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop stops the running worker loop.
func (w *SettlementWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *SettlementWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *SettlementWorker) runOnce(ctx context.Context) {
	processed, err := w.svc.ProcessSubmitted(ctx, w.batchSize)
	if err != nil {
		observability.IncrementWorkerRun("settlement", "failed")
		zap.L().Error("settlement run failed", zap.Error(err))
		return
	}
	if processed > 0 {
		zap.L().Info("settlement run complete", zap.Int("processed", processed))
	}
	observability.IncrementWorkerRun("settlement", "success")
}

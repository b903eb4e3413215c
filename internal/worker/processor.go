package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ProcessorConfig holds configuration for the pending-sync poller
type ProcessorConfig struct {
	// PollInterval is how often to check for pending transactions (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions per poll (default: 10)
	BatchSize int
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// Processor periodically syncs pending transactions.
type Processor struct {
	worker *SyncWorker
	config ProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewProcessor(w *SyncWorker, config ProcessorConfig) *Processor {
	def := DefaultProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize < 1 {
		config.BatchSize = def.BatchSize
	}
	return &Processor{worker: w, config: config}
}

// Start begins the polling loop. Returns an error if already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (p *Processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := p.worker.ProcessPending(ctx, p.config.BatchSize); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

package disputes

import (
	"context"
	"sync"
	"time"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/pkg/logger"
)

// JobProcessor periodically sweeps dispute deadlines: rebuttal windows
// that elapsed without a response and evidence requests nobody answered.
// Transitions are status-guarded, so overlapping sweeps (or multiple
// instances) cannot double-fire.
type JobProcessor struct {
	service  Service
	interval time.Duration

	mu      sync.Mutex
	done    chan struct{}
	running bool
}

func NewJobProcessor(service Service, cfg *config.Config) *JobProcessor {
	interval := cfg.Disputes.ExpiryCheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &JobProcessor{
		service:  service,
		interval: interval,
	}
}

func (jp *JobProcessor) Start() {
	jp.mu.Lock()
	defer jp.mu.Unlock()
	if jp.running {
		return
	}
	jp.running = true
	jp.done = make(chan struct{})

	go jp.loop(jp.done)
	logger.GetDefault().InfoWithContext(context.Background(), "dispute deadline processor started", map[string]interface{}{
		"interval": jp.interval.String(),
	})
}

func (jp *JobProcessor) Stop() {
	jp.mu.Lock()
	defer jp.mu.Unlock()
	if !jp.running {
		return
	}
	close(jp.done)
	jp.running = false
}

func (jp *JobProcessor) loop(done chan struct{}) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			jp.Sweep(context.Background())
		}
	}
}

// Sweep runs one deadline pass. Exposed for tests and manual triggering.
func (jp *JobProcessor) Sweep(ctx context.Context) {
	now := time.Now()

	if n, err := jp.service.ExpireRebuttals(ctx, now); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "rebuttal expiry sweep failed", err, nil)
	} else if n > 0 {
		logger.GetDefault().InfoWithContext(ctx, "rebuttal windows expired", map[string]interface{}{
			"count": n,
		})
	}

	if n, err := jp.service.ExpireEvidenceRequests(ctx, now); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "evidence expiry sweep failed", err, nil)
	} else if n > 0 {
		logger.GetDefault().InfoWithContext(ctx, "evidence requests expired", map[string]interface{}{
			"count": n,
		})
	}
}

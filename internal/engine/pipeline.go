package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/internal/metrics"
	"github.com/hostwatch/hostwatch/internal/sampler"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// Pipeline runs the sample-and-evaluate loop on a fixed interval.
type Pipeline struct {
	engine   *Engine
	sampler  sampler.Sampler
	interval time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewPipeline(e *Engine, s sampler.Sampler, interval time.Duration) *Pipeline {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		engine:   e,
		sampler:  s,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (p *Pipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.wg.Add(1)
	go p.run()

	logger.Info("sampling pipeline started")
}

func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	logger.Info("sampling pipeline stopped")
}

func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Run immediately on start
	p.RunOnce(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(p.ctx)
		}
	}
}

// RunOnce samples the host and feeds the batch through the engine. A failed
// sample skips the cycle; the evaluator keeps its per-rule state.
func (p *Pipeline) RunOnce(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	values, err := p.sampler.Sample(cycleCtx)
	if err != nil {
		metrics.SampleErrors.Inc()
		logger.Errorf("sampling cycle failed: %v", err)
		return
	}

	p.engine.Ingest(cycleCtx, models.SampleBatch{
		Timestamp: time.Now(),
		Values:    values,
	})
}

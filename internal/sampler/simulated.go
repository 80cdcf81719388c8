package sampler

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/pkg/models"
)

// SimulatedConfig tunes the in-process host simulator.
type SimulatedConfig struct {
	BaseCPU    float64
	BaseMemory float64
	BaseDisk   float64
	Variance   float64
	Pattern    string
}

// Spike drives CPU toward a target for a bounded window, with a ramp-up.
type Spike struct {
	TargetCPU   float64
	StartTime   time.Time
	Duration    time.Duration
	RampUp      time.Duration
	OriginalCPU float64
}

// SimulatedSampler fabricates plausible host metrics without touching the
// real system. Disk usage creeps upward slowly so capacity forecasts have
// something to chew on.
type SimulatedSampler struct {
	mu       sync.Mutex
	baseCPU  float64
	baseMem  float64
	baseDisk float64
	variance float64
	pattern  Pattern
	spike    *Spike
	started  time.Time

	// memory follows a share of CPU swings
	memoryCorrelation float64
}

func NewSimulated(cfg SimulatedConfig) *SimulatedSampler {
	if cfg.BaseCPU <= 0 {
		cfg.BaseCPU = 35
	}
	if cfg.BaseMemory <= 0 {
		cfg.BaseMemory = 55
	}
	if cfg.BaseDisk <= 0 {
		cfg.BaseDisk = 60
	}
	if cfg.Variance <= 0 {
		cfg.Variance = 8
	}
	return &SimulatedSampler{
		baseCPU:           cfg.BaseCPU,
		baseMem:           cfg.BaseMemory,
		baseDisk:          cfg.BaseDisk,
		variance:          cfg.Variance,
		pattern:           ParsePattern(cfg.Pattern),
		started:           time.Now(),
		memoryCorrelation: 0.6,
	}
}

func (s *SimulatedSampler) Sample(_ context.Context) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpu := s.currentCPU()
	memory := s.currentMemory(cpu)
	disk := s.currentDisk()
	load := cpu / 100 * float64(runtime.NumCPU()) * (0.8 + rand.Float64()*0.4)

	return map[string]float64{
		models.MetricCPUPercent:    clamp(s.jitter(cpu), 0, 100),
		models.MetricMemoryPercent: clamp(s.jitter(memory), 0, 100),
		models.MetricDiskPercent:   clamp(disk, 0, 100),
		models.MetricLoadAvg1Min:   load,
		models.MetricLoadAvg5Min:   load * 0.9,
		models.MetricLoadAvg15Min:  load * 0.8,
	}, nil
}

func (s *SimulatedSampler) HealthCheck(_ context.Context) error {
	return nil
}

func (s *SimulatedSampler) Close() error {
	return nil
}

// TriggerSpike pushes CPU toward target for the given duration, ramping up
// over rampUp. Used by the simulator's control endpoint and tests.
func (s *SimulatedSampler) TriggerSpike(target float64, duration, rampUp time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spike = &Spike{
		TargetCPU:   target,
		StartTime:   time.Now(),
		Duration:    duration,
		RampUp:      rampUp,
		OriginalCPU: s.baseCPU,
	}
}

// SetPattern switches the load pattern at runtime.
func (s *SimulatedSampler) SetPattern(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = ParsePattern(name)
}

func (s *SimulatedSampler) PatternName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern.Name()
}

func (s *SimulatedSampler) currentCPU() float64 {
	cpu := s.pattern.Apply(s.baseCPU)

	if s.spike != nil {
		elapsed := time.Since(s.spike.StartTime)
		switch {
		case elapsed > s.spike.Duration:
			s.spike = nil
		case elapsed < s.spike.RampUp:
			progress := float64(elapsed) / float64(s.spike.RampUp)
			cpu = s.spike.OriginalCPU + (s.spike.TargetCPU-s.spike.OriginalCPU)*progress
		default:
			cpu = s.spike.TargetCPU
		}
	}
	return cpu
}

func (s *SimulatedSampler) currentMemory(cpu float64) float64 {
	delta := cpu - s.baseCPU
	return s.baseMem + delta*s.memoryCorrelation
}

func (s *SimulatedSampler) currentDisk() float64 {
	// roughly 0.1% growth per hour of uptime
	hours := time.Since(s.started).Hours()
	return s.baseDisk + hours*0.1
}

func (s *SimulatedSampler) jitter(base float64) float64 {
	return base + (rand.Float64()*2-1)*s.variance
}

package sampler

import (
	"math"
	"math/rand"
	"time"
)

// Pattern shapes the simulated CPU load over time.
type Pattern interface {
	Apply(base float64) float64
	Name() string
}

var (
	PatternSteady Pattern = &SteadyPattern{}
	PatternDaily  Pattern = &DailyPattern{}
	PatternRandom Pattern = &RandomPattern{}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return PatternDaily
	case "random":
		return PatternRandom
	case "gradual_rise":
		return &GradualRisePattern{startTime: time.Now()}
	case "sine_wave":
		return &SineWavePattern{}
	default:
		return PatternSteady
	}
}

// SteadyPattern holds the load constant.
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(base float64) float64 {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern follows a business-hours traffic cycle.
type DailyPattern struct{}

func (p *DailyPattern) Apply(base float64) float64 {
	hour := time.Now().Hour()

	var modifier float64
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour >= 0 && hour <= 6:
		modifier = 0.6
	default:
		modifier = 1.0
	}
	return clamp(base*modifier, 0, 100)
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// RandomPattern applies unpredictable swings.
type RandomPattern struct{}

func (p *RandomPattern) Apply(base float64) float64 {
	modifier := 0.5 + rand.Float64()
	return clamp(base*modifier, 10, 100)
}

func (p *RandomPattern) Name() string {
	return "random"
}

// GradualRisePattern increases load 2% per minute, capped at +50%.
type GradualRisePattern struct {
	startTime time.Time
}

func (p *GradualRisePattern) Apply(base float64) float64 {
	minutes := time.Since(p.startTime).Minutes()
	increasePercent := math.Min(minutes*2, 50)
	return clamp(base*(1+increasePercent/100), 0, 100)
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern oscillates smoothly around the base.
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64
}

func (p *SineWavePattern) Apply(base float64) float64 {
	period := p.Period
	if period == 0 {
		period = 10 * time.Minute
	}
	amplitude := p.Amplitude
	if amplitude == 0 {
		amplitude = 20
	}

	phase := float64(time.Now().UnixNano()) / float64(period.Nanoseconds()) * 2 * math.Pi
	return clamp(base+math.Sin(phase)*amplitude, 0, 100)
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package collector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"healthmon/internal/models"
)

// Synthetic produces random readings for every collaborator. It stands in for
// real sources in demos and on machines where host metrics are unavailable.
type Synthetic struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock clockwork.Clock
}

// NewSynthetic seeds from the clock when seed is zero.
func NewSynthetic(seed int64, clock clockwork.Clock) *Synthetic {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	return &Synthetic{rng: rand.New(rand.NewSource(seed)), clock: clock}
}

func (s *Synthetic) Sample(ctx context.Context) (models.MetricsSample, error) {
	if err := ctx.Err(); err != nil {
		return models.MetricsSample{}, collectionErr("synthetic metrics", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MetricsSample{
		TS:      s.clock.Now().UTC().Truncate(time.Millisecond),
		CPUPct:  s.rng.Float64() * 100,
		MemPct:  s.rng.Float64() * 100,
		DiskPct: s.rng.Float64() * 100,
	}, nil
}

func (s *Synthetic) Forecast(ctx context.Context, window time.Duration) (models.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return models.Forecast{}, collectionErr("synthetic forecast", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Forecast{
		Window:     window,
		CPUPct:     s.rng.Float64() * 100,
		MemPct:     s.rng.Float64() * 100,
		TrafficRPS: s.rng.Float64() * 1000,
		Confidence: 70 + s.rng.Float64()*30,
	}, nil
}

func (s *Synthetic) Status(ctx context.Context, target string) (models.TargetStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.TargetStatus{}, collectionErr("synthetic fleet "+target, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.TargetStatus{
		Target:    target,
		Instances: 5 + s.rng.Intn(10),
		LoadPct:   s.rng.Float64() * 100,
		Health:    models.HealthHealthy,
	}
	if s.rng.Float64() < 0.1 {
		st.Health = models.HealthDegraded
	}
	return st, nil
}

// Retrain reports an accuracy in [90,99).
func (s *Synthetic) Retrain(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, collectionErr("synthetic trainer", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return 90 + s.rng.Float64()*9, nil
}

package models

import (
	"math"
	"time"
)

type Status string

const (
	StatusUnknown Status = "UNKNOWN"
	StatusOptimal Status = "OPTIMAL"
	StatusWarning Status = "WARNING"
)

type Health string

const (
	HealthHealthy  Health = "HEALTHY"
	HealthDegraded Health = "DEGRADED"
)

type MetricsSample struct {
	TS      time.Time
	CPUPct  float64
	MemPct  float64
	DiskPct float64
}

// MaxUsage is the highest of the three utilisation figures.
func (s MetricsSample) MaxUsage() float64 {
	return math.Max(s.CPUPct, math.Max(s.MemPct, s.DiskPct))
}

type Forecast struct {
	Window     time.Duration
	CPUPct     float64
	MemPct     float64
	TrafficRPS float64
	Confidence float64
}

type TargetStatus struct {
	Target    string
	Instances int
	LoadPct   float64
	Health    Health
}

type AlertEvent struct {
	ID        int64
	Profile   string
	Status    string
	StartedTS time.Time
	EndedTS   *time.Time
	Summary   string
	MaxUsage  float64
	Threshold float64
}

// ClampPct pins v to [0,100]. NaN maps to 0.
func ClampPct(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Package reporter runs the health-check cycle: it pulls readings from the
// configured collaborators, evaluates the profile's alert threshold and writes
// a line-oriented report to its sinks.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"healthmon/internal/models"
	"healthmon/internal/profile"
)

type MetricsSource interface {
	Sample(ctx context.Context) (models.MetricsSample, error)
}

type PredictionSource interface {
	Forecast(ctx context.Context, window time.Duration) (models.Forecast, error)
}

type FleetStatusSource interface {
	Status(ctx context.Context, target string) (models.TargetStatus, error)
}

// Observer receives every emitted report after it has been written.
type Observer interface {
	Observe(ctx context.Context, rep Report)
}

var ErrMissingSource = errors.New("missing collaborator")

type Options struct {
	Metrics    MetricsSource
	Prediction PredictionSource
	Fleet      FleetStatusSource
	Sinks      []io.Writer
	Observers  []Observer
	Logger     *slog.Logger
	// Color enables ANSI styling. Styling is still dropped on sinks that are
	// not terminals.
	Color bool
}

type Reporter struct {
	profile   profile.Profile
	metrics   MetricsSource
	predict   PredictionSource
	fleet     FleetStatusSource
	sinks     []io.Writer
	observers []Observer
	log       *slog.Logger
	styles    styles
}

// Report is the outcome of one tick.
type Report struct {
	Text            string
	Status          models.Status
	Sample          *models.MetricsSample
	MaxUsage        float64
	Forecast        *models.Forecast
	PredictiveAlert bool
	Targets         []models.TargetStatus
	Failures        []error
}

func New(p profile.Profile, opts Options) (*Reporter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("%w: metrics source", ErrMissingSource)
	}
	if p.AIEnabled && opts.Prediction == nil {
		return nil, fmt.Errorf("%w: prediction source required by profile %q", ErrMissingSource, p.Name)
	}
	if p.AIEnabled && len(p.CloudTargets) > 0 && opts.Fleet == nil {
		return nil, fmt.Errorf("%w: fleet status source required by profile %q", ErrMissingSource, p.Name)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var styleOut io.Writer = io.Discard
	if len(opts.Sinks) > 0 {
		styleOut = opts.Sinks[0]
	}
	return &Reporter{
		profile:   p,
		metrics:   opts.Metrics,
		predict:   opts.Prediction,
		fleet:     opts.Fleet,
		sinks:     opts.Sinks,
		observers: opts.Observers,
		log:       logger,
		styles:    newStyles(styleOut, opts.Color),
	}, nil
}

func (r *Reporter) Profile() profile.Profile { return r.profile }

// Tick performs one reporting cycle. It does not write to the sinks, so with
// deterministic collaborators repeated calls return identical reports.
func (r *Reporter) Tick(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, r.profile.Interval)
	defer cancel()

	var rep Report
	out := newBlock(r.styles)

	sample, err := r.metrics.Sample(ctx)
	if err != nil {
		r.log.Warn("collect metrics", "err", err)
		rep.Failures = append(rep.Failures, err)
		out.healthUnavailable(err)
	} else {
		sample = clampSample(sample)
		rep.Sample = &sample
		rep.MaxUsage = sample.MaxUsage()
		out.health(sample, r.profile.DebugMode)
	}

	if r.profile.AIEnabled {
		r.tickAI(ctx, &rep, out)
	}

	switch {
	case rep.Sample == nil:
		rep.Status = models.StatusUnknown
	case rep.MaxUsage > r.profile.AlertThreshold:
		rep.Status = models.StatusWarning
	default:
		rep.Status = models.StatusOptimal
	}
	out.status(rep.Status, r.profile.AIEnabled)

	rep.Text = out.String()
	return rep
}

func (r *Reporter) tickAI(ctx context.Context, rep *Report, out *block) {
	for _, target := range r.profile.CloudTargets {
		st, err := r.fleet.Status(ctx, target)
		if err != nil {
			r.log.Warn("fetch target status", "target", target, "err", err)
			rep.Failures = append(rep.Failures, err)
			continue
		}
		st.Target = target
		st.LoadPct = models.ClampPct(st.LoadPct)
		rep.Targets = append(rep.Targets, st)
	}

	fc, err := r.predict.Forecast(ctx, r.profile.Window())
	if err != nil {
		r.log.Warn("fetch forecast", "err", err)
		rep.Failures = append(rep.Failures, err)
	} else {
		fc.CPUPct = models.ClampPct(fc.CPUPct)
		fc.MemPct = models.ClampPct(fc.MemPct)
		fc.Confidence = models.ClampPct(fc.Confidence)
		rep.Forecast = &fc
		rep.PredictiveAlert = fc.CPUPct > r.profile.AlertThreshold
	}

	out.analysis(rep.Targets, rep.PredictiveAlert, len(r.profile.CloudTargets))
	for _, st := range rep.Targets {
		out.target(st)
	}
	if rep.Forecast != nil {
		out.forecast(*rep.Forecast, rep.PredictiveAlert)
	}
}

// Emit runs a tick, writes it to every sink and hands it to the observers.
// Sink write failures are logged and do not stop the remaining sinks.
func (r *Reporter) Emit(ctx context.Context) Report {
	rep := r.Tick(ctx)
	r.write(rep.Text)
	for _, o := range r.observers {
		o.Observe(ctx, rep)
	}
	r.log.Debug("tick complete", "status", rep.Status, "max_usage", rep.MaxUsage, "failures", len(rep.Failures))
	return rep
}

// Announce writes the startup banner.
func (r *Reporter) Announce() {
	r.write(banner(r.styles, r.profile))
}

// Notify writes free-form lines produced by companion tasks.
func (r *Reporter) Notify(text string) {
	r.write(text)
}

func (r *Reporter) write(text string) {
	for _, w := range r.sinks {
		if _, err := io.WriteString(w, text); err != nil {
			r.log.Warn("write report", "err", err)
		}
	}
}

func clampSample(s models.MetricsSample) models.MetricsSample {
	s.CPUPct = models.ClampPct(s.CPUPct)
	s.MemPct = models.ClampPct(s.MemPct)
	s.DiskPct = models.ClampPct(s.DiskPct)
	return s
}

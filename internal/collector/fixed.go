package collector

import (
	"context"
	"time"

	"healthmon/internal/models"
)

// Fixed returns the same readings on every call. Err, when set, is returned
// from every method instead.
type Fixed struct {
	Metrics    models.MetricsSample
	Prediction models.Forecast
	Targets    map[string]models.TargetStatus
	Accuracy   float64
	Err        error
}

func (f *Fixed) Sample(ctx context.Context) (models.MetricsSample, error) {
	if f.Err != nil {
		return models.MetricsSample{}, collectionErr("fixed metrics", f.Err)
	}
	return f.Metrics, nil
}

func (f *Fixed) Forecast(ctx context.Context, window time.Duration) (models.Forecast, error) {
	if f.Err != nil {
		return models.Forecast{}, collectionErr("fixed forecast", f.Err)
	}
	fc := f.Prediction
	fc.Window = window
	return fc, nil
}

func (f *Fixed) Status(ctx context.Context, target string) (models.TargetStatus, error) {
	if f.Err != nil {
		return models.TargetStatus{}, collectionErr("fixed fleet "+target, f.Err)
	}
	st, ok := f.Targets[target]
	if !ok {
		st = models.TargetStatus{Instances: 5}
	}
	if st.Health == "" {
		st.Health = models.HealthHealthy
	}
	st.Target = target
	return st, nil
}

func (f *Fixed) Retrain(ctx context.Context) (float64, error) {
	if f.Err != nil {
		return 0, collectionErr("fixed trainer", f.Err)
	}
	return f.Accuracy, nil
}

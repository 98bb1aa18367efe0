package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"healthmon/internal/db"
	"healthmon/internal/models"
	"healthmon/internal/profile"
	"healthmon/internal/reporter"
)

// Engine journals threshold breaches. A profile moves OK -> FIRING on the
// first WARNING report and back to OK on the next OPTIMAL one; reports
// without a sample leave the state untouched.
type Engine struct {
	repo    *db.Repository
	log     *slog.Logger
	clock   clockwork.Clock
	profile profile.Profile
	runID   string
}

func NewEngine(repo *db.Repository, p profile.Profile, logger *slog.Logger, clock clockwork.Clock, runID string) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{repo: repo, log: logger, clock: clock, profile: p, runID: runID}
}

func (e *Engine) Observe(ctx context.Context, rep reporter.Report) {
	if rep.Status == models.StatusUnknown || rep.Sample == nil {
		return
	}
	if err := e.evaluate(ctx, rep); err != nil {
		e.log.Error("journal alert", "err", err, "profile", e.profile.Name)
	}
}

func (e *Engine) evaluate(ctx context.Context, rep reporter.Report) error {
	now := e.clock.Now().UTC()
	st, err := e.repo.GetAlertState(ctx, e.profile.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get alert state: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		st = db.AlertState{State: db.StateOK, Since: now}
	}

	firing := rep.Status == models.StatusWarning
	switch {
	case firing && st.State != db.StateFiring:
		msg := fmt.Sprintf("ALERT %s max usage %.2f%% > threshold %g%%", e.profile.Name, rep.MaxUsage, e.profile.AlertThreshold)
		id, err := e.repo.CreateAlert(ctx, e.profile.Name, msg, e.details(rep), now)
		if err != nil {
			return fmt.Errorf("create alert: %w", err)
		}
		e.log.Warn("alert firing", "alert_id", id, "max_usage", rep.MaxUsage, "threshold", e.profile.AlertThreshold)
		return e.repo.UpsertAlertState(ctx, e.profile.Name, db.AlertState{State: db.StateFiring, Since: now, LastFired: &now, LastRecovered: st.LastRecovered})
	case !firing && st.State == db.StateFiring:
		if err := e.repo.CloseAlert(ctx, e.profile.Name, now); err != nil {
			return fmt.Errorf("close alert: %w", err)
		}
		e.log.Info("alert recovered", "max_usage", rep.MaxUsage, "firing_for", now.Sub(st.Since).Round(time.Second))
		return e.repo.UpsertAlertState(ctx, e.profile.Name, db.AlertState{State: db.StateOK, Since: now, LastFired: st.LastFired, LastRecovered: &now})
	}
	return nil
}

func (e *Engine) details(rep reporter.Report) db.AlertDetails {
	return db.AlertDetails{
		MaxUsage:  rep.MaxUsage,
		Threshold: e.profile.AlertThreshold,
		CPUPct:    rep.Sample.CPUPct,
		MemPct:    rep.Sample.MemPct,
		DiskPct:   rep.Sample.DiskPct,
		RunID:     e.runID,
	}
}

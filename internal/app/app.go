package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"healthmon/internal/alerts"
	"healthmon/internal/collector"
	"healthmon/internal/config"
	"healthmon/internal/db"
	"healthmon/internal/profile"
	"healthmon/internal/reporter"
	"healthmon/internal/retention"
	"healthmon/internal/retrain"
)

const retentionInterval = 6 * time.Hour

type App struct {
	cfg     config.Config
	log     *slog.Logger
	clock   clockwork.Clock
	profile profile.Profile

	sqldb     *sql.DB
	reporter  *reporter.Reporter
	retrain   *retrain.Service
	retention *retention.Service
}

// SelectProfile resolves the configured environment name. Only a broken
// profiles file is an error; unknown names fall back to production.
func SelectProfile(cfg config.Config) (profile.Profile, error) {
	table := profile.Builtin()
	if cfg.ProfilesFile != "" {
		t, err := profile.LoadFile(cfg.ProfilesFile)
		if err != nil {
			return profile.Profile{}, err
		}
		table = t
	}
	return table.Select(cfg.Env), nil
}

func New(cfg config.Config, p profile.Profile, logger *slog.Logger, out io.Writer, clock clockwork.Clock, runID string) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if p.AIEnabled && cfg.RetrainInterval <= 0 {
		return nil, fmt.Errorf("%w %q: retrain interval must be positive, got %s", profile.ErrInvalidProfile, p.Name, cfg.RetrainInterval)
	}
	if p.AIEnabled && cfg.RetrainInterval == p.Interval {
		return nil, fmt.Errorf("%w %q: retrain interval must differ from tick interval %s", profile.ErrInvalidProfile, p.Name, p.Interval)
	}

	synthetic := collector.NewSynthetic(cfg.Seed, clock)
	var metrics reporter.MetricsSource
	switch cfg.Source {
	case config.SourceSynthetic:
		metrics = synthetic
	case config.SourceHost:
		metrics = collector.NewHost(cfg.DiskPath, clock)
	default:
		return nil, fmt.Errorf("unknown metrics source %q", cfg.Source)
	}

	a := &App{cfg: cfg, log: logger, clock: clock, profile: p}

	var observers []reporter.Observer
	if cfg.DBPath != "" {
		sqldb, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(sqldb); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
		repo := db.NewRepository(sqldb)
		a.sqldb = sqldb
		a.retention = retention.NewService(repo, cfg.RetentionDays, logger.With("module", "retention"), clock)
		observers = append(observers, alerts.NewEngine(repo, p, logger.With("module", "alerts"), clock, runID))
	}

	rep, err := reporter.New(p, reporter.Options{
		Metrics:    metrics,
		Prediction: synthetic,
		Fleet:      synthetic,
		Sinks:      []io.Writer{out},
		Observers:  observers,
		Logger:     logger.With("module", "reporter"),
		Color:      cfg.Color,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.reporter = rep
	if p.AIEnabled {
		a.retrain = retrain.NewService(synthetic, rep, cfg.RetrainInterval, logger.With("module", "retrain"))
	}
	return a, nil
}

// Run prints the banner, reports immediately and then on every tick until
// ctx is cancelled. All periodic work shares one loop, so ticks never overlap.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("monitor starting", "profile", a.profile.Name, "interval", a.profile.Interval,
		"threshold", a.profile.AlertThreshold, "ai", a.profile.AIEnabled, "source", a.cfg.Source)
	a.reporter.Announce()

	mainTicker := a.clock.NewTicker(a.profile.Interval)
	defer mainTicker.Stop()

	var retrainC, retentionC <-chan time.Time
	if a.retrain != nil {
		t := a.clock.NewTicker(a.cfg.RetrainInterval)
		defer t.Stop()
		retrainC = t.Chan()
	}
	if a.retention != nil {
		t := a.clock.NewTicker(retentionInterval)
		defer t.Stop()
		retentionC = t.Chan()
		a.retention.Run(ctx)
	}

	// Immediate first run
	a.reporter.Emit(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("monitor stopping")
			return a.close()
		case <-mainTicker.Chan():
			a.reporter.Emit(ctx)
		case <-retrainC:
			a.retrain.Run(ctx)
		case <-retentionC:
			a.retention.Run(ctx)
		}
	}
}

func (a *App) close() error {
	if a.sqldb == nil {
		return nil
	}
	return a.sqldb.Close()
}

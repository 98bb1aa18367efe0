package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"healthmon/internal/models"
)

const (
	StateOK     = "OK"
	StateFiring = "FIRING"

	AlertFiring    = "firing"
	AlertRecovered = "recovered"
)

type Repository struct {
	db *sql.DB
}

type AlertState struct {
	State         string
	Since         time.Time
	LastFired     *time.Time
	LastRecovered *time.Time
}

type AlertDetails struct {
	MaxUsage  float64 `json:"max_usage"`
	Threshold float64 `json:"threshold"`
	CPUPct    float64 `json:"cpu_pct"`
	MemPct    float64 `json:"mem_pct"`
	DiskPct   float64 `json:"disk_pct"`
	RunID     string  `json:"run_id,omitempty"`
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sql.DB { return r.db }

func (r *Repository) UpsertAlertState(ctx context.Context, profile string, st AlertState) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO alert_states (profile,state,since_ts,last_fired_ts,last_recovered_ts)
		VALUES (?,?,?,?,?)
		ON CONFLICT(profile) DO UPDATE SET state=excluded.state,since_ts=excluded.since_ts,last_fired_ts=excluded.last_fired_ts,last_recovered_ts=excluded.last_recovered_ts`,
		profile, st.State, st.Since.UTC(), utcPtr(st.LastFired), utcPtr(st.LastRecovered))
	return err
}

// GetAlertState returns sql.ErrNoRows when the profile has never been evaluated.
func (r *Repository) GetAlertState(ctx context.Context, profile string) (AlertState, error) {
	var st AlertState
	var fired, recovered sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT state,since_ts,last_fired_ts,last_recovered_ts FROM alert_states WHERE profile=?`, profile).
		Scan(&st.State, &st.Since, &fired, &recovered)
	if err != nil {
		return AlertState{}, err
	}
	if fired.Valid {
		t := fired.Time
		st.LastFired = &t
	}
	if recovered.Valid {
		t := recovered.Time
		st.LastRecovered = &t
	}
	return st, nil
}

func (r *Repository) CreateAlert(ctx context.Context, profile, summary string, details AlertDetails, started time.Time) (int64, error) {
	b, err := json.Marshal(details)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO alerts (profile,status,started_ts,summary,details_json) VALUES (?,?,?,?,?)`,
		profile, AlertFiring, started.UTC(), summary, string(b))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) CloseAlert(ctx context.Context, profile string, ended time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET status=?, ended_ts_nullable=? WHERE profile=? AND status=?`,
		AlertRecovered, ended.UTC(), profile, AlertFiring)
	return err
}

func (r *Repository) RecentAlerts(ctx context.Context, since time.Time, limit int) ([]models.AlertEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id,profile,status,started_ts,ended_ts_nullable,summary,details_json
		FROM alerts
		WHERE started_ts >= ?
		ORDER BY started_ts DESC, id DESC LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.AlertEvent
	for rows.Next() {
		var ev models.AlertEvent
		var ended sql.NullTime
		var detailsJSON string
		if err := rows.Scan(&ev.ID, &ev.Profile, &ev.Status, &ev.StartedTS, &ended, &ev.Summary, &detailsJSON); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			ev.EndedTS = &t
		}
		var d AlertDetails
		if err := json.Unmarshal([]byte(detailsJSON), &d); err == nil {
			ev.MaxUsage = d.MaxUsage
			ev.Threshold = d.Threshold
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *Repository) ActiveAlertCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE status=?`, AlertFiring).Scan(&n)
	return n, err
}

// DeleteResolvedBefore prunes recovered alerts that started before cutoff.
// Firing alerts are never removed.
func (r *Repository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE started_ts < ? AND status=?`, cutoff.UTC(), AlertRecovered)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	_, _ = r.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`)
	_, _ = r.db.ExecContext(ctx, `PRAGMA optimize`)
	return n, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Package profile holds the named monitoring configurations a monitor run can be
// started with. Selection is total: unknown names fall back to production.
package profile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	Production   = "production"
	Development  = "development"
	Experimental = "experimental"

	DefaultName = Production
)

// DefaultPredictiveWindow is used when an AI profile leaves the window unset.
const DefaultPredictiveWindow = 300 * time.Second

var ErrInvalidProfile = errors.New("invalid profile")

type Profile struct {
	Name             string
	Interval         time.Duration
	AlertThreshold   float64
	DebugMode        bool
	VerboseLogging   bool
	AIEnabled        bool
	PredictiveWindow time.Duration
	CloudTargets     []string
	ModelPath        string
}

// Window returns the forecast horizon, defaulting when the profile has none.
func (p Profile) Window() time.Duration {
	if p.PredictiveWindow > 0 {
		return p.PredictiveWindow
	}
	return DefaultPredictiveWindow
}

func (p Profile) clone() Profile {
	p.CloudTargets = slices.Clone(p.CloudTargets)
	return p
}

func (p Profile) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("%w %q: interval must be positive, got %s", ErrInvalidProfile, p.Name, p.Interval)
	}
	if math.IsNaN(p.AlertThreshold) || p.AlertThreshold < 0 || p.AlertThreshold > 100 {
		return fmt.Errorf("%w %q: alert threshold %.2f outside [0,100]", ErrInvalidProfile, p.Name, p.AlertThreshold)
	}
	if p.PredictiveWindow < 0 {
		return fmt.Errorf("%w %q: negative predictive window", ErrInvalidProfile, p.Name)
	}
	for i, t := range p.CloudTargets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w %q: cloud target %d is empty", ErrInvalidProfile, p.Name, i)
		}
	}
	return nil
}

// Table maps profile names to profiles.
type Table map[string]Profile

func Builtin() Table {
	return Table{
		Production: {
			Name:           Production,
			Interval:       60 * time.Second,
			AlertThreshold: 80,
		},
		Development: {
			Name:           Development,
			Interval:       5 * time.Second,
			AlertThreshold: 90,
			DebugMode:      true,
			VerboseLogging: true,
		},
		Experimental: {
			Name:             Experimental,
			Interval:         30 * time.Second,
			AlertThreshold:   75,
			AIEnabled:        true,
			PredictiveWindow: DefaultPredictiveWindow,
			CloudTargets:     []string{"aws", "azure", "gcp"},
			ModelPath:        "./models/anomaly-detection.h5",
		},
	}
}

// Select looks name up in the built-in table.
func Select(name string) Profile {
	return Builtin().Select(name)
}

// Select returns a copy of the named profile, or the production profile when
// the name is unknown. A table without a production entry falls back to the
// built-in one.
func (t Table) Select(name string) Profile {
	if p, ok := t[name]; ok {
		return p.clone()
	}
	if p, ok := t[DefaultName]; ok {
		return p.clone()
	}
	return Builtin()[DefaultName].clone()
}

type fileProfile struct {
	Interval         string   `yaml:"interval"`
	AlertThreshold   *float64 `yaml:"alert_threshold"`
	DebugMode        bool     `yaml:"debug_mode"`
	VerboseLogging   bool     `yaml:"verbose_logging"`
	AIEnabled        bool     `yaml:"ai_enabled"`
	PredictiveWindow string   `yaml:"predictive_window"`
	CloudTargets     []string `yaml:"cloud_targets"`
	ModelPath        string   `yaml:"model_path"`
}

type file struct {
	Profiles map[string]fileProfile `yaml:"profiles"`
}

// LoadFile reads a YAML profiles file and merges it over the built-in table.
// Any malformed entry fails the whole load.
func LoadFile(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Table, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: parse profiles: %v", ErrInvalidProfile, err)
	}
	table := Builtin()
	for name, fp := range f.Profiles {
		p, err := fp.toProfile(name)
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		table[name] = p
	}
	return table, nil
}

func (fp fileProfile) toProfile(name string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return Profile{}, fmt.Errorf("%w: empty profile name", ErrInvalidProfile)
	}
	if fp.AlertThreshold == nil {
		return Profile{}, fmt.Errorf("%w %q: alert_threshold is required", ErrInvalidProfile, name)
	}
	interval, err := time.ParseDuration(fp.Interval)
	if err != nil {
		return Profile{}, fmt.Errorf("%w %q: interval: %v", ErrInvalidProfile, name, err)
	}
	var window time.Duration
	if fp.PredictiveWindow != "" {
		window, err = time.ParseDuration(fp.PredictiveWindow)
		if err != nil {
			return Profile{}, fmt.Errorf("%w %q: predictive_window: %v", ErrInvalidProfile, name, err)
		}
	}
	return Profile{
		Name:             name,
		Interval:         interval,
		AlertThreshold:   *fp.AlertThreshold,
		DebugMode:        fp.DebugMode,
		VerboseLogging:   fp.VerboseLogging,
		AIEnabled:        fp.AIEnabled,
		PredictiveWindow: window,
		CloudTargets:     fp.CloudTargets,
		ModelPath:        fp.ModelPath,
	}, nil
}

package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSelectBuiltins(t *testing.T) {
	dev := Select(Development)
	assert.Equal(t, 5*time.Second, dev.Interval)
	assert.Equal(t, 90.0, dev.AlertThreshold)
	assert.True(t, dev.DebugMode)
	assert.False(t, dev.AIEnabled)

	exp := Select(Experimental)
	assert.True(t, exp.AIEnabled)
	assert.Equal(t, 75.0, exp.AlertThreshold)
	assert.Equal(t, []string{"aws", "azure", "gcp"}, exp.CloudTargets)
	assert.Equal(t, 300*time.Second, exp.Window())
}

func TestSelectUnknownFallsBackToProduction(t *testing.T) {
	for _, name := range []string{"", "staging", "PRODUCTION", "Development"} {
		p := Select(name)
		assert.Equal(t, Production, p.Name, "name %q", name)
		assert.Equal(t, 60000*time.Millisecond, p.Interval)
		assert.Equal(t, 80.0, p.AlertThreshold)
		assert.False(t, p.AIEnabled)
	}
}

func TestSelectIsTotal(t *testing.T) {
	known := Builtin()
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.String().Draw(t, "name")
		p := Select(name)
		if _, ok := known[name]; ok {
			if p.Name != name {
				t.Fatalf("Select(%q).Name = %q", name, p.Name)
			}
			return
		}
		if p.Name != Production {
			t.Fatalf("Select(%q) = %q, want production", name, p.Name)
		}
	})
}

func TestBuiltinsAreValid(t *testing.T) {
	for name, p := range Builtin() {
		require.NoError(t, p.Validate(), name)
	}
}

func TestSelectReturnsCopy(t *testing.T) {
	p := Select(Experimental)
	p.CloudTargets[0] = "mutated"
	assert.Equal(t, "aws", Select(Experimental).CloudTargets[0])
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Profile
	}{
		{"zero interval", Profile{Name: "x", AlertThreshold: 50}},
		{"threshold high", Profile{Name: "x", Interval: time.Second, AlertThreshold: 101}},
		{"threshold negative", Profile{Name: "x", Interval: time.Second, AlertThreshold: -1}},
		{"negative window", Profile{Name: "x", Interval: time.Second, PredictiveWindow: -time.Second}},
		{"blank target", Profile{Name: "x", Interval: time.Second, CloudTargets: []string{"aws", " "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProfile))
		})
	}
}

func TestParseMergesOverBuiltins(t *testing.T) {
	table, err := Parse([]byte(`
profiles:
  staging:
    interval: 10s
    alert_threshold: 70
    ai_enabled: true
    cloud_targets: [aws, gcp]
  production:
    interval: 2m
    alert_threshold: 85
`))
	require.NoError(t, err)

	staging := table.Select("staging")
	assert.Equal(t, 10*time.Second, staging.Interval)
	assert.Equal(t, []string{"aws", "gcp"}, staging.CloudTargets)
	assert.Equal(t, DefaultPredictiveWindow, staging.Window())

	prod := table.Select("nope")
	assert.Equal(t, 2*time.Minute, prod.Interval)
	assert.Equal(t, 85.0, prod.AlertThreshold)

	assert.True(t, table.Select(Development).DebugMode)
}

func TestParseRejectsMalformed(t *testing.T) {
	inputs := map[string]string{
		"bad yaml":          "profiles: [",
		"missing threshold": "profiles:\n  a:\n    interval: 1s\n",
		"bad interval":      "profiles:\n  a:\n    interval: soon\n    alert_threshold: 10\n",
		"out of range":      "profiles:\n  a:\n    interval: 1s\n    alert_threshold: 150\n",
		"nan threshold":     "profiles:\n  a:\n    interval: 1s\n    alert_threshold: .nan\n",
		"bad window":        "profiles:\n  a:\n    interval: 1s\n    alert_threshold: 10\n    predictive_window: later\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  ci:\n    interval: 1s\n    alert_threshold: 50\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ci", table.Select("ci").Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

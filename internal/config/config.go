package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SourceSynthetic = "synthetic"
	SourceHost      = "host"
)

type Config struct {
	Env             string
	ProfilesFile    string
	Source          string
	DiskPath        string
	DBPath          string
	RetentionDays   int
	RetrainInterval time.Duration
	Seed            int64
	Color           bool
}

// Load reads the environment. Malformed values fall back to defaults; the
// profile name is free-form and resolved later.
func Load() Config {
	return Config{
		Env:             getenv("MONITOR_ENV", getenv("NODE_ENV", "production")),
		ProfilesFile:    os.Getenv("MONITOR_PROFILES_FILE"),
		Source:          strings.ToLower(getenv("MONITOR_SOURCE", SourceSynthetic)),
		DiskPath:        getenv("MONITOR_DISK_PATH", "/"),
		DBPath:          os.Getenv("MONITOR_DB_PATH"),
		RetentionDays:   getenvInt("MONITOR_RETENTION_DAYS", 14),
		RetrainInterval: getenvDuration("MONITOR_RETRAIN_INTERVAL", 2*time.Minute),
		Seed:            int64(getenvInt("MONITOR_SEED", 0)),
		Color:           getenvBool("MONITOR_COLOR", true),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}

func getenvBool(k string, d bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(k)))
	if v == "" {
		return d
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	return d
}

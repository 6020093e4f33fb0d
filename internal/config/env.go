// Package config provides centralized configuration management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// RutacatEnv holds all rutacat environment variables.
type RutacatEnv struct {
	// Home overrides the rutacat home directory (RUTACAT_HOME)
	Home string

	// DataDir overrides where topology and rule catalogs are read from
	// (RUTACAT_DATA_DIR); empty means the embedded defaults
	DataDir string

	// DBPath overrides the sqlite database path (RUTACAT_DB_PATH)
	DBPath string

	// CronToken authenticates the cron entry point (RUTACAT_CRON_TOKEN)
	CronToken string

	// MetricsPort is the metrics listener port (RUTACAT_METRICS_PORT)
	MetricsPort int

	// MinStops overrides the minimum internal stops of a route
	// (RUTACAT_MIN_STOPS); 0 means the mode default
	MinStops int

	// DefaultMode is the difficulty used when none is requested
	// (RUTACAT_DEFAULT_MODE)
	DefaultMode string
}

var (
	env     *RutacatEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *RutacatEnv {
	envOnce.Do(func() {
		env = &RutacatEnv{
			Home:        os.Getenv("RUTACAT_HOME"),
			DataDir:     os.Getenv("RUTACAT_DATA_DIR"),
			DBPath:      os.Getenv("RUTACAT_DB_PATH"),
			CronToken:   os.Getenv("RUTACAT_CRON_TOKEN"),
			MetricsPort: getEnvInt("RUTACAT_METRICS_PORT", 9190),
			MinStops:    getEnvInt("RUTACAT_MIN_STOPS", 0),
			DefaultMode: getEnvDefault("RUTACAT_DEFAULT_MODE", "classic"),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
	pathsOnce = sync.Once{}
	paths = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Paths holds standard rutacat directory paths.
type Paths struct {
	// Home is the rutacat home directory (~/.rutacat)
	Home string

	// Data is the data directory (~/.rutacat/data)
	Data string

	// DB is the sqlite database path (~/.rutacat/data/rutacat.db)
	DB string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration. RUTACAT_HOME and
// RUTACAT_DB_PATH override the defaults.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home := Env().Home
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				userHome = "."
			}
			home = filepath.Join(userHome, ".rutacat")
		}

		db := Env().DBPath
		if db == "" {
			db = filepath.Join(home, "data", "rutacat.db")
		}

		paths = &Paths{
			Home: home,
			Data: filepath.Join(home, "data"),
			DB:   db,
		}
	})
	return paths
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

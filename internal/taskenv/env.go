// Package taskenv applies environment overrides to the loaded configuration.
package taskenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/tasktracker/internal/config"
	"github.com/joho/godotenv"
)

// Environment variables that override config values.
const (
	FileEnvVar      = "TASKS_FILE"
	BackendEnvVar   = "TASKS_BACKEND"
	RedisAddrEnvVar = "TASKS_REDIS_ADDR"
	LogLevelEnvVar  = "TASKS_LOG_LEVEL"
)

// DotenvFileName is the optional env file read from the working directory.
const DotenvFileName = ".env"

// LoadDotenv loads dir/.env into the process environment. Variables that
// are already set keep their values. A missing file is not an error.
func LoadDotenv(dir string) error {
	path := filepath.Join(dir, DotenvFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Apply overrides cfg with any non-empty environment variables.
func Apply(cfg *config.Config) {
	if value := lookup(FileEnvVar); value != "" {
		cfg.Store.Path = value
	}
	if value := lookup(BackendEnvVar); value != "" {
		cfg.Store.Backend = config.Backend(strings.ToLower(value))
	}
	if value := lookup(RedisAddrEnvVar); value != "" {
		cfg.Store.RedisAddr = value
	}
	if value := lookup(LogLevelEnvVar); value != "" {
		cfg.Log.Level = value
	}
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

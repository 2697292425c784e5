// Package main implements the task CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/amonks/tasktracker/internal/blob"
	"github.com/amonks/tasktracker/internal/config"
	"github.com/amonks/tasktracker/internal/logging"
	"github.com/amonks/tasktracker/internal/paths"
	"github.com/amonks/tasktracker/internal/taskenv"
	"github.com/amonks/tasktracker/task"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "task",
	Short:        "Track personal tasks",
	SilenceUsage: true,
}

var (
	rootFile      string
	rootConfig    string
	rootBackend   string
	rootRedisAddr string
	rootLogLevel  string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFile, "file", "", "Task data file (file backend)")
	flags.StringVar(&rootConfig, "config", "", "Project config file (default ./"+config.ProjectFileName+")")
	flags.StringVar(&rootBackend, "backend", "", "Storage backend (file, redis)")
	flags.StringVar(&rootRedisAddr, "redis-addr", "", "Redis address (redis backend)")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig resolves configuration from files, the environment, and flags,
// in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	if err := taskenv.LoadDotenv(cwd); err != nil {
		return nil, err
	}

	globalPath, err := paths.GlobalConfigFile()
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if rootConfig != "" {
		cfg, err = config.LoadRequired(globalPath, rootConfig)
	} else {
		cfg, err = config.LoadFiles(globalPath, filepath.Join(cwd, config.ProjectFileName))
	}
	if err != nil {
		return nil, err
	}
	taskenv.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.Store.Path = rootFile
	}
	if flags.Changed("backend") {
		cfg.Store.Backend = config.Backend(rootBackend)
	}
	if flags.Changed("redis-addr") {
		cfg.Store.RedisAddr = rootRedisAddr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = rootLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openService builds the task service described by the configuration.
// The returned release func must be called when done.
func openService(cmd *cobra.Command) (*task.Service, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		blobs   blob.Store
		key     string
		release = func() error { return nil }
	)
	switch cfg.Store.Backend {
	case config.BackendRedis:
		redisStore := blob.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr}))
		blobs, key, release = redisStore, cfg.Store.RedisKey, redisStore.Close
	default:
		blobs, key = blob.NewFileStore(""), cfg.Store.Path
	}

	store, err := task.NewStore(blobs, task.StoreOptions{
		Key:       key,
		OnCorrupt: cfg.Tasks.OnCorrupt,
		Logger:    logger,
	})
	if err != nil {
		release()
		return nil, nil, err
	}

	svc, err := task.NewService(store, task.ServiceOptions{
		IDStrategy: cfg.Tasks.IDStrategy,
		Logger:     logger,
	})
	if err != nil {
		release()
		return nil, nil, err
	}

	logger.WithField("backend", cfg.Store.Backend).WithField("key", key).Debug("opened task store")
	return svc, release, nil
}

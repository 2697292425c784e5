// Package config handles loading tasktracker TOML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/tasktracker/internal/paths"
	"github.com/amonks/tasktracker/internal/validation"
	"github.com/amonks/tasktracker/task"
	log "github.com/sirupsen/logrus"
)

// ProjectFileName is the name of the per-directory config file.
const ProjectFileName = "tasks.toml"

// Backend names a blob store implementation.
type Backend string

const (
	// BackendFile stores tasks in a JSON file on disk.
	BackendFile Backend = "file"

	// BackendRedis stores tasks as a redis string value.
	BackendRedis Backend = "redis"
)

// Backends returns all known backends.
func Backends() []Backend {
	return []Backend{BackendFile, BackendRedis}
}

// ErrInvalidSetting is returned by Validate.
var ErrInvalidSetting = errors.New("invalid setting")

// Defaults applied by Load for unset values.
const (
	DefaultRedisAddr = "localhost:6379"
	DefaultRedisKey  = "tasktracker:tasks"
	DefaultLogLevel  = "warn"
)

// Config represents the tasktracker configuration.
type Config struct {
	Store Store `toml:"store"`
	Tasks Tasks `toml:"tasks"`
	Log   Log   `toml:"log"`
}

// Store selects and configures the blob store holding the task collection.
type Store struct {
	// Backend is "file" (default) or "redis".
	Backend Backend `toml:"backend"`

	// Path is the data file used by the file backend. Relative paths in a
	// project config are resolved against the project directory.
	Path string `toml:"path"`

	// RedisAddr is the host:port of the redis server.
	RedisAddr string `toml:"redis-addr"`

	// RedisKey is the redis key holding the collection.
	RedisKey string `toml:"redis-key"`
}

// Tasks configures task service behavior.
type Tasks struct {
	// IDStrategy is "length" (default) or "next".
	IDStrategy task.IDStrategy `toml:"id-strategy"`

	// OnCorrupt is "fail" (default) or "reset".
	OnCorrupt task.CorruptPolicy `toml:"on-corrupt"`
}

// Log configures logging.
type Log struct {
	// Level is a logrus level name. Defaults to "warn".
	Level string `toml:"level"`
}

// Load reads the global config file and the project config file in
// projectDir, merges them (project values win when defined), and fills in
// defaults. Missing files are not an error.
func Load(projectDir string) (*Config, error) {
	globalPath, err := paths.GlobalConfigFile()
	if err != nil {
		return nil, err
	}
	return LoadFiles(globalPath, filepath.Join(projectDir, ProjectFileName))
}

// ErrMissingFile is returned by LoadRequired when the named file does not exist.
var ErrMissingFile = errors.New("config file not found")

// LoadRequired is LoadFiles for a project file the user named explicitly,
// which must exist.
func LoadRequired(globalPath, projectPath string) (*Config, error) {
	if _, err := os.Stat(projectPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, projectPath)
		}
		return nil, fmt.Errorf("stat config file %s: %w", projectPath, err)
	}
	return LoadFiles(globalPath, projectPath)
}

// LoadFiles is Load with explicit file locations.
func LoadFiles(globalPath, projectPath string) (*Config, error) {
	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(projectPath)
	if err != nil {
		return nil, err
	}
	if projectCfg.Store.Path != "" && !filepath.IsAbs(projectCfg.Store.Path) {
		projectCfg.Store.Path = filepath.Join(filepath.Dir(projectPath), projectCfg.Store.Path)
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := merged.applyDefaults(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	merged := Config{}
	merged.Store.Backend = Backend(mergeString(projectMeta.IsDefined("store", "backend"), string(projectCfg.Store.Backend), string(globalCfg.Store.Backend)))
	merged.Store.Path = mergeString(projectMeta.IsDefined("store", "path"), projectCfg.Store.Path, globalCfg.Store.Path)
	merged.Store.RedisAddr = mergeString(projectMeta.IsDefined("store", "redis-addr"), projectCfg.Store.RedisAddr, globalCfg.Store.RedisAddr)
	merged.Store.RedisKey = mergeString(projectMeta.IsDefined("store", "redis-key"), projectCfg.Store.RedisKey, globalCfg.Store.RedisKey)
	merged.Tasks.IDStrategy = task.IDStrategy(mergeString(projectMeta.IsDefined("tasks", "id-strategy"), string(projectCfg.Tasks.IDStrategy), string(globalCfg.Tasks.IDStrategy)))
	merged.Tasks.OnCorrupt = task.CorruptPolicy(mergeString(projectMeta.IsDefined("tasks", "on-corrupt"), string(projectCfg.Tasks.OnCorrupt), string(globalCfg.Tasks.OnCorrupt)))
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func (c *Config) applyDefaults() error {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Path == "" {
		path, err := paths.DefaultDataFile()
		if err != nil {
			return err
		}
		c.Store.Path = path
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = DefaultRedisAddr
	}
	if c.Store.RedisKey == "" {
		c.Store.RedisKey = DefaultRedisKey
	}
	if c.Tasks.IDStrategy == "" {
		c.Tasks.IDStrategy = task.IDStrategyLength
	}
	if c.Tasks.OnCorrupt == "" {
		c.Tasks.OnCorrupt = task.CorruptFail
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the file backend", ErrInvalidSetting)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" || c.Store.RedisKey == "" {
			return fmt.Errorf("%w: store.redis-addr and store.redis-key are required for the redis backend", ErrInvalidSetting)
		}
	default:
		return validation.InvalidValueError(ErrInvalidSetting, "unknown store backend", c.Store.Backend, Backends())
	}
	if !c.Tasks.IDStrategy.IsValid() {
		return validation.InvalidValueError(ErrInvalidSetting, "unknown id strategy", c.Tasks.IDStrategy, task.IDStrategies())
	}
	if !c.Tasks.OnCorrupt.IsValid() {
		return validation.InvalidValueError(ErrInvalidSetting, "unknown on-corrupt policy", c.Tasks.OnCorrupt, task.CorruptPolicies())
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidSetting, err)
	}
	return nil
}

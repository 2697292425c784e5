package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataFileName is the name of the task data file inside DefaultDataDir.
const DataFileName = "tasks.json"

// DefaultDataDir returns the default tasktracker data directory.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "tasktracker"), nil
}

// DefaultDataFile returns the default location of the task data file.
func DefaultDataFile() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DataFileName), nil
}

// GlobalConfigFile returns the location of the user-wide config file.
func GlobalConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "tasktracker", "config.toml"), nil
}

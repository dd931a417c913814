package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

// PathManager handles cross-platform path resolution for taskpad storage
type PathManager struct {
	homeDir string
	dataDir string
}

// NewPathManager creates a path manager rooted at ~/.taskpad
func NewPathManager() *PathManager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir is not available
		homeDir = "."
	}

	return &PathManager{
		homeDir: homeDir,
		dataDir: filepath.Join(homeDir, ".taskpad"),
	}
}

// NewPathManagerAt creates a path manager rooted at an explicit data directory.
// A leading "~/" is expanded against the user's home directory.
func NewPathManagerAt(dataDir string) *PathManager {
	pm := NewPathManager()
	if dataDir == "" {
		return pm
	}
	if dataDir == "~" {
		dataDir = pm.homeDir
	} else if len(dataDir) > 1 && dataDir[:2] == "~/" {
		dataDir = filepath.Join(pm.homeDir, dataDir[2:])
	}
	pm.dataDir = dataDir
	return pm
}

// GetDataDir returns the main taskpad data directory.
// Creates the directory if it doesn't exist
func (pm *PathManager) GetDataDir() (string, error) {
	if err := os.MkdirAll(pm.dataDir, 0755); err != nil {
		return "", err
	}
	return pm.dataDir, nil
}

// GetStateDatabasePath returns the path for the libsql state database
func (pm *PathManager) GetStateDatabasePath() (string, error) {
	dir, err := pm.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// GetStateFilePath returns the path for the TOML state file
func (pm *PathManager) GetStateFilePath() (string, error) {
	dir, err := pm.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.toml"), nil
}

// GetLogsDir returns the directory for log files
func (pm *PathManager) GetLogsDir() (string, error) {
	dir, err := pm.GetDataDir()
	if err != nil {
		return "", err
	}
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	return logsDir, nil
}

// GetPlatformInfo returns platform-specific information
func (pm *PathManager) GetPlatformInfo() map[string]string {
	return map[string]string{
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
		"home_dir": pm.homeDir,
		"data_dir": pm.dataDir,
	}
}

// ValidatePaths ensures all necessary directories exist
func (pm *PathManager) ValidatePaths() error {
	if _, err := pm.GetDataDir(); err != nil {
		return err
	}
	if _, err := pm.GetLogsDir(); err != nil {
		return err
	}
	return nil
}

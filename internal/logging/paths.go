package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.sitesearch/logs, or a temp dir fallback when the
// home directory is unknown.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".sitesearch", "logs")
	}
	return filepath.Join(home, ".sitesearch", "logs")
}

// DefaultLogPath returns the log file used by every sitesearch command.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "sitesearch.log")
}

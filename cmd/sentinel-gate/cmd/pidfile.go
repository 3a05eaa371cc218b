package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// pidFilePath returns the path to the server's PID file, preferring
// ~/.sentinelgate/server.pid and falling back to the OS temp dir.
func pidFilePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".sentinelgate", "server.pid")
	}
	return filepath.Join(os.TempDir(), "sentinelgate-server.pid")
}

// writePIDFile writes the current process's PID to path, creating
// parent directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

// readPIDFile reads a PID from the given file path. Returns 0 if unreadable.
func readPIDFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

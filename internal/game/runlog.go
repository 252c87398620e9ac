package game

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// saveSessionLog appends the finished session as a single JSON line to
// sessions.jsonl. Failures are logged and otherwise ignored.
func saveSessionLog(logger *slog.Logger, entry SessionLog) {
	dir, err := sessionLogDir()
	if err != nil {
		logger.Warn("session log skipped", "err", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("session log skipped", "err", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "sessions.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("session log skipped", "err", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("session log skipped", "err", err)
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		logger.Warn("session log write failed", "err", err)
	}
}

// sessionLogDir follows the XDG Base Directory spec: $XDG_DATA_HOME/statbars,
// defaulting to ~/.local/share/statbars.
func sessionLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "statbars"), nil
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxLogFiles bounds the generated files kept under the log dir.
const maxLogFiles = 20

// Logger is shared by all packages. It discards everything until Initialize
// enables debug output.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

var logFile *os.File

// Initialize points Logger at a JSON log file when debug is on. An empty file
// path picks a timestamped file under logDir.
func Initialize(debug bool, file, logDir string) error {
	if os.Getenv("TALLY_DEBUG") == "1" {
		debug = true
	}
	if envFile := os.Getenv("TALLY_LOG_FILE"); envFile != "" && file == "" {
		file = envFile
	}
	if !debug && file == "" {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return nil
	}

	if file == "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		if err := rotate(logDir, maxLogFiles); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
		}
		file = filepath.Join(logDir, fmt.Sprintf("tally-%s.log", time.Now().Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Close()
	logFile = f

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("logging initialized", "file", file, "pid", os.Getpid())
	return nil
}

// Close flushes and closes the current log file, if any.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// rotate deletes the oldest generated logs so that at most keep-1 remain,
// leaving room for the file about to be created.
func rotate(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log dir: %w", err)
	}
	type logInfo struct {
		path    string
		modTime time.Time
	}
	var logs []logInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "tally-") || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logInfo{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	if len(logs) < keep {
		return nil
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime.Before(logs[j].modTime) })
	for _, l := range logs[:len(logs)-keep+1] {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old log: %w", err)
		}
	}
	return nil
}

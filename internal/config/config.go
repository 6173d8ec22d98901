// Package config holds the command-line and environment configuration of the
// editor and constructs its run-scoped logger.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config is the resolved configuration for one run.
type Config struct {
	// Debug switches logging from errors-only to detailed.
	Debug bool
	// BackupEnabled controls whether saving renames the original file to a
	// backup first. On unless -no-backup is given.
	BackupEnabled bool
	// LogDir is where run-scoped log files are written.
	LogDir string
	// Path is the optional PDF file to open on startup.
	Path string
}

// FromArgs parses the command line (without the program name).
func FromArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("pdfmeta", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "run with detailed logging")
	noBackup := fs.Bool("no-backup", false, "overwrite files without keeping a backup copy")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdfmeta [flags] [file.pdf]\n\nCopy a PDF file with altered metadata.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg := &Config{
		Debug:         *debug,
		BackupEnabled: !*noBackup,
		LogDir:        GetEnv("PDFMETA_LOG_DIR", "logs"),
	}
	if fs.NArg() > 0 {
		cfg.Path = fs.Arg(0)
	}
	return cfg, nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// NewLogger returns a JSON logger writing to a timestamped file under LogDir,
// plus a close function. The level is Error unless Debug is set. The log
// directory and file appear on the first record written, so an uneventful run
// leaves nothing behind.
func (c *Config) NewLogger() (*slog.Logger, func()) {
	level := slog.LevelError
	if c.Debug {
		level = slog.LevelDebug
	}
	out := &logFile{
		dir:  c.LogDir,
		name: time.Now().Format("20060102150405.000000") + ".log",
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = out.Close() }
}

// logFile creates its directory and file lazily on the first write. A failed
// create is remembered and fails every later write.
type logFile struct {
	dir  string
	name string
	f    *os.File
	err  error
}

func (l *logFile) Write(p []byte) (int, error) {
	if l.f == nil {
		if l.err != nil {
			return 0, l.err
		}
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			l.err = fmt.Errorf("create log directory: %w", err)
			return 0, l.err
		}
		f, err := os.Create(filepath.Join(l.dir, l.name))
		if err != nil {
			l.err = fmt.Errorf("create log file: %w", err)
			return 0, l.err
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *logFile) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

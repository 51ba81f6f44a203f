// Package logging owns the process logger and the log file it may write to.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/plain/internal/config"
)

var (
	mu   sync.Mutex
	log  *logrus.Logger
	file *os.File
)

// Init replaces the process logger. A log file left open by an earlier Init is
// closed. An unparsable level falls back to info; with neither console nor
// file output every entry is dropped.
func Init(cfg config.LoggingConfig) error {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.DateTime})
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	out := io.Discard
	if cfg.Console {
		out = os.Stderr
	}
	var f *os.File
	if cfg.File != "" {
		if f, err = openFile(cfg.File); err != nil {
			return err
		}
		out = f
		if cfg.Console {
			out = io.MultiWriter(os.Stderr, f)
		}
	}
	l.SetOutput(out)

	mu.Lock()
	defer mu.Unlock()
	prev := file
	log, file = l, f
	if prev != nil {
		return prev.Close()
	}
	return nil
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Close closes the log file, if any. The logger is reset, so later entries go
// to a default stderr logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	f := file
	log, file = nil, nil
	if f == nil {
		return nil
	}
	return f.Close()
}

// Get returns the process logger.
func Get() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = logrus.New()
	}
	return log
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Package logging builds the logrus loggers used by both binaries. The TUI
// owns the terminal, so the console client must log to a file; the daemon
// logs to stderr unless a file is requested.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: false})
	return logger
}

// NewFileLogger appends JSON records to path. The returned closer flushes
// the file handle; the logger itself must not be used afterwards.
func NewFileLogger(path string) (*logrus.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f), f, nil
}

// NewStderrLogger logs JSON records to standard error.
func NewStderrLogger() *logrus.Logger {
	return newLogger(os.Stderr)
}

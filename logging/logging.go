package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "invoicechat.log"

const (
	maxLogSizeMB  = 5
	maxLogBackups = 3
	maxLogAgeDays = 14
)

// New returns a logger writing to out with the given level and format
// ("text" or "json").
func New(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(level))
	logger.SetFormatter(newFormatter(format))
	return logger
}

// NewFileLogger logs to a rotated file. Used by the terminal chat, which owns
// stdout and stderr while it runs.
func NewFileLogger(path, level string) (*logrus.Logger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return New(level, "text", io.Discard), err
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	return New(level, "json", writer), nil
}

func DefaultLogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return filepath.Join(".invoicechat", "logs", defaultLogFile)
	}
	return filepath.Join(homeDir, ".invoicechat", "logs", defaultLogFile)
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func newFormatter(format string) logrus.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}

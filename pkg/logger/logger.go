package logger

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"transcription-service/pkg/config"
)

// Logger wraps a logrus instance configured from service config.
type Logger struct {
	base *logrus.Logger
}

var (
	globalMu     sync.RWMutex
	globalLogger = NewDefault()
)

// NewLogger builds a logger from the log section of the config.
func NewLogger(cfg *config.Config) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)

	format := ""
	level := ""
	if cfg != nil {
		format = cfg.Log.Format
		level = cfg.Log.Level
	}

	if format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{base: base}
}

// NewDefault returns a text logger at info level, used before config loads.
func NewDefault() *Logger {
	return NewLogger(nil)
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

func global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Close flushes pending output. logrus writes synchronously, so this is a no-op
// kept for symmetry with resource lifecycles.
func (l *Logger) Close() {}

func (l *Logger) entry(fields map[string]interface{}) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(l.base)
	}
	return l.base.WithFields(logrus.Fields(fields))
}

func Debug(msg string, fields map[string]interface{}) { global().entry(fields).Debug(msg) }
func Info(msg string, fields map[string]interface{})  { global().entry(fields).Info(msg) }
func Warn(msg string, fields map[string]interface{})  { global().entry(fields).Warn(msg) }
func Error(msg string, fields map[string]interface{}) { global().entry(fields).Error(msg) }

func Debugf(format string, args ...interface{}) { global().base.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { global().base.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { global().base.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { global().base.Errorf(format, args...) }

// Fatal logs the message and exits.
func Fatal(msg string) { global().base.Fatal(msg) }

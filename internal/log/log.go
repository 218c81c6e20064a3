// package log is the logging facade used by every component. it wraps
// logrus so that callers can inject their own logger, or silence it in tests.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

type Config struct {
	Level  string    `yaml:"level"`  // debug, info, warn, error. default is info
	Format string    `yaml:"format"` // text or json. default is text
	Output io.Writer `yaml:"-"`      // default is stderr
}

// New builds a logrus backed Logger.
func New(cfg Config) (Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, &FormatError{cfg.Format}
	}
	return FromLogrus(l), nil
}

type FormatError struct{ Format string }

func (e *FormatError) Error() string {
	return "log: unknown format " + e.Format
}

func FromLogrus(l *logrus.Logger) Logger {
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *logrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *logrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *logrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{entry: l.entry.WithError(err)}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(args ...interface{})                         {}
func (Nop) Info(args ...interface{})                          {}
func (Nop) Warn(args ...interface{})                          {}
func (Nop) Error(args ...interface{})                         {}
func (Nop) Debugf(format string, args ...interface{})         {}
func (Nop) Infof(format string, args ...interface{})          {}
func (Nop) Warnf(format string, args ...interface{})          {}
func (Nop) Errorf(format string, args ...interface{})         {}
func (n Nop) WithField(key string, value interface{}) Logger  { return n }
func (n Nop) WithFields(fields map[string]interface{}) Logger { return n }
func (n Nop) WithError(err error) Logger                      { return n }

var (
	muDefault  sync.RWMutex
	defaultLog Logger = FromLogrus(logrus.StandardLogger())
)

// Default is used by components that were not given a logger.
func Default() Logger {
	muDefault.RLock()
	defer muDefault.RUnlock()
	return defaultLog
}

func SetDefault(l Logger) {
	if l == nil {
		l = Nop{}
	}
	muDefault.Lock()
	defaultLog = l
	muDefault.Unlock()
}

// Or returns l, or Default() when l is nil.
func Or(l Logger) Logger {
	if l != nil {
		return l
	}
	return Default()
}

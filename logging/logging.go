package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	mu     sync.Mutex
)

// InitLogger configures the process-wide logger. It may be called again to
// change the level or format after the config file has been read.
func InitLogger(level logrus.Level, format ...string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = newLogger()
	}
	logger.SetLevel(level)
	if len(format) > 0 && strings.EqualFold(format[0], "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// GetLogger returns the process logger, creating one at Info level if
// InitLogger has not run yet. Packages grab it from init(), before main.
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = newLogger()
	}
	return logger
}

// ParseLevel is logrus.ParseLevel with a fallback to Info.
func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

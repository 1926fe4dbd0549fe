// Package logging configures the logrus loggers used across river-swww.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Environment overrides.
const (
	EnvLevel  = "RIVER_SWWW_LOG_LEVEL"
	EnvFormat = "RIVER_SWWW_LOG_FORMAT"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	root     *logrus.Logger
	rootOnce sync.Once
)

func base() *logrus.Logger {
	rootOnce.Do(func() {
		root = logrus.New()
		root.SetOutput(os.Stderr)
		configure(root, os.Getenv(EnvLevel), os.Getenv(EnvFormat), isTerminal(os.Stderr))
	})
	return root
}

// NewLogger returns the logger for a component, creating it on first use.
// Every entry carries a "component" field.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}
	l := base().WithField("component", component)
	loggers[component] = l
	return l
}

// SetLevel changes the level of all component loggers. An unparsable level
// is returned as an error and leaves the level unchanged.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base().SetLevel(lvl)
	return nil
}

// SetOutput redirects all component loggers.
func SetOutput(w io.Writer) {
	base().SetOutput(w)
}

// configure applies level and format settings to l.
// Format is "json", "text" or "auto" (the default): colored text on a
// terminal, plain text otherwise.
func configure(l *logrus.Logger, level, format string, tty bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   tty,
			DisableColors: !tty,
		})
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	EnvLevel  = "MINIVUE_LOG_LEVEL"
	EnvFormat = "MINIVUE_LOG_FORMAT"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	output    io.Writer = os.Stderr
	defaults  Config
)

// Config is the logging section of an app config.
type Config struct {
	// Level is the minimum level to output. MINIVUE_LOG_LEVEL wins over it.
	Level string `mapstructure:"level"`
	// Format is "text", "json" or empty for auto: json when stderr is not
	// a terminal.
	Format string `mapstructure:"format"`
}

// NewLogger returns the logger of a component, creating it on first use
// with the config last passed to Configure.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	cfg := defaults
	loggersMu.Unlock()
	return NewLoggerWithConfig(component, cfg)
}

func NewLoggerWithConfig(component string, cfg Config) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(parseLevel(cfg.Level))
	logger.SetFormatter(formatter(cfg.Format))

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies cfg to every logger created so far and to the ones
// created later.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	defaults = cfg
	for _, entry := range loggers {
		entry.Logger.SetLevel(parseLevel(cfg.Level))
		entry.Logger.SetFormatter(formatter(cfg.Format))
	}
}

// SetOutput redirects every logger. Tests use it to capture output.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	output = w
	for _, entry := range loggers {
		entry.Logger.SetOutput(w)
	}
}

func parseLevel(configured string) logrus.Level {
	levelStr := "info"
	if env := os.Getenv(EnvLevel); env != "" {
		levelStr = env
	} else if configured != "" {
		levelStr = configured
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func formatter(configured string) logrus.Formatter {
	format := strings.ToLower(configured)
	if env := os.Getenv(EnvFormat); env != "" {
		format = strings.ToLower(env)
	}
	switch format {
	case "json":
		return &logrus.JSONFormatter{}
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}

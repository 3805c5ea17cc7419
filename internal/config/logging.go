package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logrus logger and returns it.
// Unknown levels fall back to info.
func SetupLogging(cfg LogConfig) *logrus.Logger {
	return configureLogger(logrus.StandardLogger(), cfg, os.Stdout)
}

// NewLogger builds a standalone logger, mostly for tools and tests
func NewLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	return configureLogger(logrus.New(), cfg, out)
}

func configureLogger(logger *logrus.Logger, cfg LogConfig, out io.Writer) *logrus.Logger {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(out)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}

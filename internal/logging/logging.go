// Package logging configures the shared logrus logger.
package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/termgraph/changetrack/internal/config"
)

// New builds a logger from configuration. Unknown levels fall back to info.
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

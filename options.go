package duckpond

import (
	"time"

	"go.uber.org/zap"
)

type connConfig struct {
	locator     string
	readOnly    bool
	binary      string
	quiescence  time.Duration
	hardTimeout time.Duration
	logger      *zap.Logger
}

// Option customizes how a Connection is opened.
type Option func(*connConfig)

// WithReadOnly opens the database in read-only mode.
func WithReadOnly(readOnly bool) Option {
	return func(c *connConfig) {
		c.readOnly = readOnly
	}
}

// WithBinary points the session at a specific engine executable instead of
// resolving the default binary from PATH.
func WithBinary(path string) Option {
	return func(c *connConfig) {
		c.binary = path
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *connConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithQuiescence sets the quiescence window used as a fallback completion
// signal after the last output byte arrived.
func WithQuiescence(d time.Duration) Option {
	return func(c *connConfig) {
		c.quiescence = d
	}
}

// WithHardTimeout sets the last-resort timeout that forces resolution of a
// statement with whatever output accumulated.
func WithHardTimeout(d time.Duration) Option {
	return func(c *connConfig) {
		c.hardTimeout = d
	}
}

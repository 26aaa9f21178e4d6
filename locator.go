package duckpond

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Locator holds parsed database locator parameters.
type Locator struct {
	Path     string // database file path or MemoryLocator
	ReadOnly bool   // open the database read-only (default: false)
	LogLevel string // log level: debug, info, warn, error (default: warn)
}

// DefaultLocator returns default settings for the given path.
func DefaultLocator(path string) *Locator {
	if path == "" {
		path = MemoryLocator
	}
	return &Locator{
		Path:     path,
		LogLevel: "warn",
	}
}

// ParseLocator parses a database locator with optional query parameters.
//
// Format: /path/to/database.db?param1=value1&param2=value2
//
// Supported parameters:
//   - readonly=true|false : Open the database read-only (default: false)
//   - log_level=debug|info|warn|error : Set logging level (default: warn)
//
// Examples:
//   - ":memory:"                     : In-memory database
//   - "./my.db"                      : Default settings
//   - "./my.db?readonly=true"        : Read-only
//   - "./my.db?log_level=debug"      : Enable debug logging
func ParseLocator(locator string) (*Locator, error) {
	// The in-memory sentinel carries a colon; never split it.
	if locator == MemoryLocator {
		return DefaultLocator(locator), nil
	}

	parts := strings.SplitN(locator, "?", 2)
	parsed := DefaultLocator(parts[0])

	if len(parts) == 1 {
		return parsed, nil
	}

	queryParams, err := url.ParseQuery(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid locator query parameters: %w", err)
	}

	if readOnlyStr := queryParams.Get("readonly"); readOnlyStr != "" {
		readOnly, err := strconv.ParseBool(readOnlyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid readonly parameter: must be 'true' or 'false', got %q", readOnlyStr)
		}
		parsed.ReadOnly = readOnly
	}

	if logLevel := queryParams.Get("log_level"); logLevel != "" {
		logLevel = strings.ToLower(logLevel)
		switch logLevel {
		case "debug", "info", "warn", "error":
			parsed.LogLevel = logLevel
		default:
			return nil, fmt.Errorf("invalid log_level parameter: must be 'debug', 'info', 'warn', or 'error', got %q", logLevel)
		}
	}

	return parsed, nil
}

// ZapLevel converts the locator's log level to a zap level.
func (l *Locator) ZapLevel() zap.AtomicLevel {
	switch l.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	}
}

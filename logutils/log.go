// Package logutils provides the shared logging backend used by every
// package in this module, following the subsystem-logger convention lnd
// uses across chanbackup, macaroons and keychain: a single btclog.Backend
// writing to one io.Writer, with each package pulling its own tagged
// btclog.Logger out of it.
package logutils

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
)

// backend is the shared logging backend every subsystem logger is created
// from. It writes to stdout until SetOutput redirects it.
var backend = btclog.NewBackend(os.Stdout)

// NewSubLogger constructs a logger for the named subsystem, tagged with a
// short upper-case prefix (e.g. "CRPT", "LGSV") shown on every line it
// emits. The returned logger defaults to the Info level.
func NewSubLogger(subsystem string) btclog.Logger {
	logger := backend.Logger(subsystem)
	logger.SetLevel(btclog.LevelInfo)
	return logger
}

// SetOutput replaces the shared logging backend with one writing to w.
// Only loggers created by NewSubLogger after the call write to w; loggers
// created earlier, including every package-level logger this module
// creates during package initialization, keep writing to the previous
// backend.
func SetOutput(w io.Writer) {
	backend = btclog.NewBackend(w)
}

// SetLevel parses level and applies it to logger, ignoring unparseable
// levels the way lnd's setLogLevel does.
func SetLevel(logger btclog.Logger, level string) {
	parsed, ok := btclog.LevelFromString(level)
	if !ok {
		return
	}
	logger.SetLevel(parsed)
}

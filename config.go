package airbitz

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLoginServerURL = "https://login.airbitz.co/api/v1"
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 2
	defaultLogLevel       = "info"
)

// DefaultAppDataDir returns the platform-appropriate default root for the
// local account directory, e.g. ~/.airbitz on Linux or
// %LOCALAPPDATA%\Airbitz on Windows.
func DefaultAppDataDir() string {
	return btcutil.AppDataDir("airbitz", false)
}

// Config configures a LoginContext. Every field has a usable zero-ish
// default filled in by DefaultConfig; callers using go-flags can parse
// directly into a Config the same way lnd's top-level Config is parsed
// from the command line and config file.
type Config struct {
	// AccountDir is the root of the local account directory. Defaults
	// to DefaultAppDataDir().
	AccountDir string `long:"accountdir" description:"Root directory for local account data"`

	// LoginServerURL is the base URL of the remote login server.
	LoginServerURL string `long:"loginserver" description:"Base URL of the login server"`

	// RequestTimeout bounds a single login server HTTP round trip.
	RequestTimeout time.Duration `long:"requesttimeout" description:"Timeout for a single login server request"`

	// MaxRetries is how many additional attempts a login server request
	// gets after a transport-level failure.
	MaxRetries int `long:"maxretries" description:"Retries for a failed login server request"`

	// LogLevel sets the level for every subsystem logger.
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems"`

	// Sync is the content-addressed sync engine collaborator this
	// module delegates repo creation and data sync to. Required; there
	// is no usable default.
	Sync SyncEngine `no-flag:"true"`
}

// DefaultConfig returns a Config with every field set to a usable
// default except Sync, which the caller must still supply.
func DefaultConfig() Config {
	return Config{
		AccountDir:     DefaultAppDataDir(),
		LoginServerURL: defaultLoginServerURL,
		RequestTimeout: defaultRequestTimeout,
		MaxRetries:     defaultMaxRetries,
		LogLevel:       defaultLogLevel,
	}
}

// ParseFlags parses os.Args-style command line arguments over a
// DefaultConfig, the same layering lnd's LoadConfig uses: defaults, then
// file, then command line. This module has no config file, so it's just
// defaults then flags.
func ParseFlags(args []string) (Config, error) {
	cfg := DefaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

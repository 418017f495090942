package keycache

import (
	"github.com/btcsuite/btclog"
	"github.com/maniacs-ops/airbitz-core/logutils"
)

// log is the package-wide logger, disabled until UseLogger is called.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	UseLogger(logutils.NewSubLogger("KYCH"))
}

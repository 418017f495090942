package loginserver

import (
	"github.com/btcsuite/btclog"
	"github.com/maniacs-ops/airbitz-core/logutils"
)

// log is a logger that is initialized with the btclog.Disabled logger.
var log btclog.Logger = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	UseLogger(logutils.NewSubLogger("LGSV"))
}

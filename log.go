// Package airbitz is the login orchestrator: it wires together the local
// account directory, the login server client and the key derivation cache
// behind the eight operations a wallet front-end needs (Create, SignIn,
// ChangePassword, SetRecovery, CheckRecoveryAnswers, FetchRecoveryQuestions,
// GetSyncKeys, SyncData), sequencing steps across them and compensating on
// partial failure. Modeled on walletunlocker.UnlockerService's role as the
// thin coordinator sitting in front of lnd's storage and crypto packages.
package airbitz

import (
	"github.com/btcsuite/btclog"
	"github.com/maniacs-ops/airbitz-core/accountdir"
	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/crypto"
	"github.com/maniacs-ops/airbitz-core/keycache"
	"github.com/maniacs-ops/airbitz-core/loginserver"
	"github.com/maniacs-ops/airbitz-core/logutils"
)

var (
	lginLog = logutils.NewSubLogger("LGIN")
	crptLog = logutils.NewSubLogger("CRPT")
	careLog = logutils.NewSubLogger("CARE")
	acdrLog = logutils.NewSubLogger("ACDR")
	lgsvLog = logutils.NewSubLogger("LGSV")
	kychLog = logutils.NewSubLogger("KYCH")
)

var log = lginLog

func init() {
	crypto.UseLogger(crptLog)
	carepackage.UseLogger(careLog)
	accountdir.UseLogger(acdrLog)
	loginserver.UseLogger(lgsvLog)
	keycache.UseLogger(kychLog)
}

// subsystemLoggers maps every subsystem tag this module owns to its
// logger, the same registry lnd's top-level log.go keeps so setLogLevels
// can reach every package from one Config.LogLevel value.
var subsystemLoggers = map[string]btclog.Logger{
	"LGIN": lginLog,
	"CRPT": crptLog,
	"CARE": careLog,
	"ACDR": acdrLog,
	"LGSV": lgsvLog,
	"KYCH": kychLog,
}

// SetLogLevel sets the logging level for every subsystem this module
// owns. Invalid levels are ignored, matching lnd's setLogLevels.
func SetLogLevel(level string) {
	for _, logger := range subsystemLoggers {
		logutils.SetLevel(logger, level)
	}
}

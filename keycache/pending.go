package keycache

import "github.com/maniacs-ops/airbitz-core/carepackage"

// PendingRecovery carries a CarePackage fetched on the recover-on-new-
// device path — where FetchRecoveryQuestions found no local slot — from
// there to CheckRecoveryAnswers. It replaces the module-level "CarePackage
// cache" variable the source used for the same purpose with an explicit
// value the orchestrator threads through itself.
type PendingRecovery struct {
	Username string
	Care     carepackage.CarePackage
}

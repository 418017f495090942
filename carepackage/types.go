// Package carepackage defines the two structured, unencrypted-at-rest
// documents an account persists locally and exchanges with the login
// server: CarePackage (the SNRP records and the optional encrypted
// recovery questions) and LoginPackage (the encrypted master key, sync
// key, and optional recovery-password envelopes). Field shapes mirror
// chanbackup's Single/Multi split — a small versioned struct whose
// optional fields must round-trip as "absent" rather than "present but
// empty".
package carepackage

import "github.com/maniacs-ops/airbitz-core/crypto"

// CarePackage is the public per-account document. It never contains the
// master key or sync key, only the parameters needed to derive the keys
// that unwrap them, plus the optionally-set encrypted recovery questions.
type CarePackage struct {
	// ERQ holds Encrypt(RQ, L4), the recovery questions encrypted under
	// the username-derived key L4. Nil when no recovery questions have
	// been configured for this account.
	ERQ *crypto.Envelope

	// SNRP2 is the parameter record used to derive LP2 from LP.
	SNRP2 crypto.SNRP

	// SNRP3 is the parameter record used to derive LRA3 from LRA.
	SNRP3 crypto.SNRP

	// SNRP4 is the parameter record used to derive L4 from L.
	SNRP4 crypto.SNRP
}

// HasRecoveryQuestions reports whether ERQ is present.
func (c CarePackage) HasRecoveryQuestions() bool {
	return c.ERQ != nil
}

// LoginPackage is the per-account document holding the encrypted master
// key, sync key, and (once recovery has been configured) the two envelopes
// that let a recovery-answer-derived key and a password-derived key unwrap
// each other.
type LoginPackage struct {
	// EMK holds Encrypt(MK, LP2), the master key encrypted under the
	// password-derived key LP2.
	EMK crypto.Envelope

	// ESyncKey holds Encrypt(SyncKey, L4), the sync repo key encrypted
	// under the username-derived key L4. Its on-wire field name is
	// "SyncKey" for historical reasons; see MarshalLoginPackage.
	ESyncKey crypto.Envelope

	// ELP2 holds Encrypt(LP2, LRA3), present once recovery has been set
	// up. It lets a recovery-answer-derived key recover the password
	// key.
	ELP2 *crypto.Envelope

	// ELRA3 holds Encrypt(LRA3, LP2), present once recovery has been
	// set up. It lets a password-derived key recover the
	// recovery-answer key, so changing the password doesn't require the
	// user to re-answer their recovery questions.
	ELRA3 *crypto.Envelope
}

// HasRecovery reports whether both recovery envelopes are present. A
// LoginPackage is only ever built with both or neither.
func (l LoginPackage) HasRecovery() bool {
	return l.ELP2 != nil && l.ELRA3 != nil
}

package keycache

import "errors"

var (
	// ErrBadPassword is returned when a supplied password or set of
	// recovery answers fails to decrypt a password-keyed envelope, or
	// when it disagrees with a password already held by the entry.
	ErrBadPassword = errors.New("keycache: bad password")

	// ErrNoRecoveryQuestions is returned by a field that requires ERQ
	// when the entry's CarePackage has none.
	ErrNoRecoveryQuestions = errors.New("keycache: account has no recovery questions")

	// ErrMissingInput is returned when require is asked for a field
	// whose leaf inputs (password, recovery answers, CarePackage,
	// LoginPackage) were never supplied and can't be derived.
	ErrMissingInput = errors.New("keycache: missing input for derivation")

	// ErrCorrupt marks a derivation that was expected to always succeed
	// (an envelope keyed by the username-derived L4) but didn't. Unlike
	// ErrBadPassword, this is never the user's fault.
	ErrCorrupt = errors.New("keycache: corrupt local account state")

	// ErrFieldConflict is returned by require when a field is
	// recomputed and disagrees with the value already memoized for it.
	// This is always a programmer error, never a data problem.
	ErrFieldConflict = errors.New("keycache: recomputed field disagrees with memoized value")

	// ErrNotFound is returned when the cache holds no entry for a
	// requested username.
	ErrNotFound = errors.New("keycache: no entry for username")
)

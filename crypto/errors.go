package crypto

import "errors"

var (
	// ErrParse is returned when a structured document (an SNRP or an
	// Envelope) can't be decoded from its wire shape.
	ErrParse = errors.New("crypto: parse error")

	// ErrDecryptFailure is returned by Decrypt when the ciphertext fails
	// authentication, or the envelope names an algorithm this package
	// doesn't implement. Callers map this to a wrong-password or
	// corrupted-account condition depending on how the key was derived;
	// this package has no opinion on which.
	ErrDecryptFailure = errors.New("crypto: decrypt failure")

	// ErrInternal covers resource exhaustion in scrypt and failures to
	// read from the system random source — conditions that indicate a
	// broken environment rather than bad input.
	ErrInternal = errors.New("crypto: internal error")
)

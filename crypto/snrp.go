// Package crypto implements the scrypt key stretching and AES-256-GCM
// envelope primitives the rest of this module builds on. Everything here
// is stateless and pure aside from random-number generation.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// SNRP is a named scrypt parameter record: Salt, N (CPU/memory cost), R
// (block size) and P (parallelization). It is the same shape whether it is
// the globally fixed SNRP1 or a freshly randomized per-account SNRP2/3/4.
type SNRP struct {
	Salt []byte
	N    int
	R    int
	P    int
}

type snrpWire struct {
	Salt string `json:"salt"`
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
}

// MarshalJSON encodes the SNRP as {salt, n, r, p} with salt hex-encoded.
func (s SNRP) MarshalJSON() ([]byte, error) {
	return json.Marshal(snrpWire{
		Salt: hex.EncodeToString(s.Salt),
		N:    s.N,
		R:    s.R,
		P:    s.P,
	})
}

// UnmarshalJSON decodes an SNRP from the {salt, n, r, p} wire shape.
func (s *SNRP) UnmarshalJSON(data []byte) error {
	var w snrpWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	salt, err := hex.DecodeString(w.Salt)
	if err != nil {
		return fmt.Errorf("%w: bad salt encoding: %v", ErrParse, err)
	}
	s.Salt = salt
	s.N = w.N
	s.R = w.R
	s.P = w.P
	return nil
}

// keyLen is the length in bytes of every scrypt-derived key this module
// produces. All of SNRP1 through SNRP4 target this width regardless of the
// role the resulting key plays.
const keyLen = 32

// defaultServerN, defaultServerR and defaultServerP are the fixed scrypt
// cost parameters for SNRP1, the server-shared parameter set used to
// compute L1, LP1 and LRA1. Because every device must derive the same
// value from the same username or password, these parameters and the salt
// below can never change without breaking every existing account.
const (
	defaultServerN = 16384
	defaultServerR = 1
	defaultServerP = 1
)

// serverSalt is SNRP1's fixed salt. It is not a secret — knowing it does
// not help an attacker who lacks the password — but it must be identical
// on every device and for every account, so it is a compile-time constant
// rather than something fetched or generated.
var serverSalt = []byte{
	0x0d, 0xd4, 0xdc, 0x38, 0x7e, 0xe8, 0xc9, 0x22,
	0xd7, 0x59, 0x3a, 0x1b, 0xb6, 0xf8, 0xb2, 0x27,
	0x9b, 0x9d, 0x9a, 0x83, 0x67, 0xed, 0x69, 0x2d,
	0x77, 0xf7, 0x9c, 0x0f, 0x5e, 0x2e, 0x24, 0x1b,
}

// defaultClientN, defaultClientR and defaultClientP are the scrypt cost
// parameters used for freshly generated per-account SNRP2/3/4 records.
// These are heavier than SNRP1 because they gate the local device's own
// unlock, not a network round trip, and can be changed account by account
// without invalidating anyone else's data.
const (
	defaultClientN = 16384
	defaultClientR = 8
	defaultClientP = 1
)

// SNRPForServer returns the fixed, globally-shared SNRP1 used to derive
// L1, LP1 and LRA1. Every device and account computes the exact same
// SNRP1, so this never touches randomness or storage.
func SNRPForServer() SNRP {
	return SNRP{
		Salt: append([]byte(nil), serverSalt...),
		N:    defaultServerN,
		R:    defaultServerR,
		P:    defaultServerP,
	}
}

// SNRPForClient generates a freshly randomized SNRP suitable for use as
// SNRP2, SNRP3 or SNRP4 on a newly created account.
func SNRPForClient() (SNRP, error) {
	salt, err := RandomBytes(32)
	if err != nil {
		return SNRP{}, err
	}
	return SNRP{
		Salt: salt,
		N:    defaultClientN,
		R:    defaultClientR,
		P:    defaultClientP,
	}, nil
}

// Scrypt derives a 32-byte key from input using the given parameter
// record. It is deterministic: the same input and snrp always produce the
// same output. The only expected failure mode is resource exhaustion
// inside the underlying scrypt implementation (e.g. an SNRP with N, R or P
// set so large the working set can't be allocated).
func Scrypt(input []byte, snrp SNRP) ([]byte, error) {
	key, err := scrypt.Key(input, snrp.Salt, snrp.N, snrp.R, snrp.P, keyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return key, nil
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return b, nil
}

// Hex returns the lower-case hex encoding of b, used for every byte value
// this module places directly on the wire (SyncKey, device IDs, L1/LP1
// tokens sent to the login server).
func Hex(b []byte) string {
	return hex.EncodeToString(b)
}

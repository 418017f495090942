package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AlgAES256 is the only algorithm tag this package produces or accepts.
const AlgAES256 = "AES256"

// ivSize and tagSize match the wire contract: a 16-byte random IV used as
// the GCM nonce, and the standard 16-byte GCM authentication tag.
const (
	ivSize  = 16
	tagSize = 16
)

// Envelope is a self-describing authenticated-encryption record: the
// algorithm tag, the random IV, the ciphertext and the authentication tag,
// in that wire order.
type Envelope struct {
	Alg        string
	IV         []byte
	Ciphertext []byte
	Tag        []byte
}

type envelopeWire struct {
	Alg string `json:"alg"`
	IV  string `json:"iv"`
	CT  string `json:"ct"`
	Tag string `json:"tag"`
}

// MarshalJSON encodes the envelope as {alg, iv, ct, tag} with the byte
// fields hex-encoded.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeWire{
		Alg: e.Alg,
		IV:  hex.EncodeToString(e.IV),
		CT:  hex.EncodeToString(e.Ciphertext),
		Tag: hex.EncodeToString(e.Tag),
	})
}

// UnmarshalJSON decodes an envelope from the {alg, iv, ct, tag} wire shape.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w envelopeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	iv, err := hex.DecodeString(w.IV)
	if err != nil {
		return fmt.Errorf("%w: bad iv encoding: %v", ErrParse, err)
	}
	ct, err := hex.DecodeString(w.CT)
	if err != nil {
		return fmt.Errorf("%w: bad ciphertext encoding: %v", ErrParse, err)
	}
	tag, err := hex.DecodeString(w.Tag)
	if err != nil {
		return fmt.Errorf("%w: bad tag encoding: %v", ErrParse, err)
	}
	e.Alg = w.Alg
	e.IV = iv
	e.Ciphertext = ct
	e.Tag = tag
	return nil
}

// gcmForKey builds the AEAD instance shared by Encrypt and Decrypt. key
// must be exactly 32 bytes, the width every scrypt derivation in this
// module produces.
func gcmForKey(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return gcm, nil
}

// Encrypt seals plaintext under key, producing a self-describing envelope
// with a fresh random IV. key must be 32 bytes.
func Encrypt(plaintext, key []byte) (Envelope, error) {
	gcm, err := gcmForKey(key)
	if err != nil {
		return Envelope{}, err
	}

	iv, err := RandomBytes(ivSize)
	if err != nil {
		return Envelope{}, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return Envelope{
		Alg:        AlgAES256,
		IV:         iv,
		Ciphertext: ct,
		Tag:        tag,
	}, nil
}

// Decrypt opens env under key. Any authentication failure, malformed IV
// length or unrecognized algorithm tag returns ErrDecryptFailure; the
// caller decides whether that means a wrong password or a corrupted
// account, since this package doesn't know which key derived it.
func Decrypt(env Envelope, key []byte) ([]byte, error) {
	if env.Alg != AlgAES256 {
		return nil, fmt.Errorf("%w: unrecognized algorithm %q",
			ErrDecryptFailure, env.Alg)
	}
	if len(env.IV) != ivSize {
		return nil, fmt.Errorf("%w: bad iv length", ErrDecryptFailure)
	}

	gcm, err := gcmForKey(key)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte(nil), env.Ciphertext...), env.Tag...)
	plaintext, err := gcm.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailure, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

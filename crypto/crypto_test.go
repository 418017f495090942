package crypto_test

import (
	"encoding/json"
	"testing"

	"github.com/maniacs-ops/airbitz-core/crypto"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScryptDeterministic(t *testing.T) {
	snrp := crypto.SNRPForServer()

	k1, err := crypto.Scrypt([]byte("alice"), snrp)
	require.NoError(t, err)
	k2, err := crypto.Scrypt([]byte("alice"), snrp)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)

	k3, err := crypto.Scrypt([]byte("bob"), snrp)
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)
}

func TestSNRPForClientRandomizesSalt(t *testing.T) {
	a, err := crypto.SNRPForClient()
	require.NoError(t, err)
	b, err := crypto.SNRPForClient()
	require.NoError(t, err)
	require.NotEqual(t, a.Salt, b.Salt)
}

func TestSNRPRoundTrip(t *testing.T) {
	snrp, err := crypto.SNRPForClient()
	require.NoError(t, err)

	data, err := json.Marshal(snrp)
	require.NoError(t, err)

	var out crypto.SNRP
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, snrp, out)
}

func TestSNRPUnmarshalBadSalt(t *testing.T) {
	var s crypto.SNRP
	err := json.Unmarshal([]byte(`{"salt":"zz","n":1,"r":1,"p":1}`), &s)
	require.ErrorIs(t, err, crypto.ErrParse)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte("the master key never touches disk unencrypted")
	env, err := crypto.Encrypt(plaintext, key)
	require.NoError(t, err)
	require.Equal(t, crypto.AlgAES256, env.Alg)
	require.Len(t, env.IV, 16)
	require.Len(t, env.Tag, 16)

	out, err := crypto.Decrypt(env, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key := make([]byte, 32)
	wrongKey := make([]byte, 32)
	wrongKey[0] = 1

	env, err := crypto.Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = crypto.Decrypt(env, wrongKey)
	require.ErrorIs(t, err, crypto.ErrDecryptFailure)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	key := make([]byte, 32)
	env, err := crypto.Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	env.Ciphertext[0] ^= 0xff

	_, err = crypto.Decrypt(env, key)
	require.ErrorIs(t, err, crypto.ErrDecryptFailure)
}

func TestDecryptUnknownAlgorithm(t *testing.T) {
	env, err := crypto.Encrypt([]byte("secret"), make([]byte, 32))
	require.NoError(t, err)
	env.Alg = "AES128"

	_, err = crypto.Decrypt(env, make([]byte, 32))
	require.ErrorIs(t, err, crypto.ErrDecryptFailure)
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	env, err := crypto.Encrypt([]byte("secret"), make([]byte, 32))
	require.NoError(t, err)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var out crypto.Envelope
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, env, out)
}

func TestHex(t *testing.T) {
	require.Equal(t, "0011ff", crypto.Hex([]byte{0x00, 0x11, 0xff}))
}

// TestEnvelopeProperties tests properties Encrypt and Decrypt should
// satisfy for any 32-byte key and any plaintext, using property-based
// testing.
func TestEnvelopeProperties(t *testing.T) {
	t.Parallel()

	// Sealing under a key and opening under the same key always
	// recovers the original plaintext, regardless of its contents or
	// length.
	t.Run("round_trip", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			key := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "key")
			plaintext := rapid.SliceOfN(
				rapid.Byte(), 0, 256,
			).Draw(t, "plaintext")

			env, err := crypto.Encrypt(plaintext, key)
			require.NoError(t, err)

			out, err := crypto.Decrypt(env, key)
			require.NoError(t, err)
			require.Equal(t, plaintext, out)
		})
	})

	// Opening under any key other than the one that sealed the envelope
	// always fails, never silently returning the wrong plaintext.
	t.Run("wrong_key_fails", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			key := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "key")
			wrongKey := rapid.SliceOfN(
				rapid.Byte(), 32, 32,
			).Draw(t, "wrongKey")
			if string(key) == string(wrongKey) {
				return
			}
			plaintext := rapid.SliceOfN(
				rapid.Byte(), 0, 64,
			).Draw(t, "plaintext")

			env, err := crypto.Encrypt(plaintext, key)
			require.NoError(t, err)

			_, err = crypto.Decrypt(env, wrongKey)
			require.ErrorIs(t, err, crypto.ErrDecryptFailure)
		})
	})
}

package keycache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/crypto"
	"github.com/maniacs-ops/airbitz-core/secret"
)

// Entry holds one username's partially- or fully-derived key material.
// Every method assumes its caller already holds the owning Cache's lock —
// Entry has no lock of its own, matching Cache.WithEntry's contract.
type Entry struct {
	username string

	slot    int
	hasSlot bool

	care  *carepackage.CarePackage
	login *carepackage.LoginPackage

	secrets map[Field]secret.Bytes
}

func newEntry(username string) *Entry {
	return &Entry{
		username: username,
		secrets:  make(map[Field]secret.Bytes),
	}
}

// Username returns the entry's username, always available.
func (e *Entry) Username() string {
	return e.username
}

// Slot reports the local account-directory slot associated with this
// entry, if one has been set.
func (e *Entry) Slot() (int, bool) {
	return e.slot, e.hasSlot
}

// SetSlot records the local account-directory slot for this entry.
func (e *Entry) SetSlot(slot int) {
	e.slot = slot
	e.hasSlot = true
}

// CarePackage returns the entry's CarePackage, if one has been loaded.
func (e *Entry) CarePackage() (carepackage.CarePackage, bool) {
	if e.care == nil {
		return carepackage.CarePackage{}, false
	}
	return *e.care, true
}

// SetCarePackage attaches a CarePackage to the entry, making SNRP2/3/4
// and (if present) ERQ available to Require.
func (e *Entry) SetCarePackage(care carepackage.CarePackage) {
	e.care = &care
}

// LoginPackage returns the entry's LoginPackage, if one has been loaded.
func (e *Entry) LoginPackage() (carepackage.LoginPackage, bool) {
	if e.login == nil {
		return carepackage.LoginPackage{}, false
	}
	return *e.login, true
}

// SetLoginPackage attaches a LoginPackage to the entry, making EMK and
// ESyncKey (and, if present, ELP2/ELRA3) available to Require.
func (e *Entry) SetLoginPackage(login carepackage.LoginPackage) {
	e.login = &login
}

// SetPassword supplies the entry's password. If a password was already
// held, the new one must byte-equal it or SetPassword fails with
// ErrBadPassword and leaves the held password untouched.
func (e *Entry) SetPassword(p []byte) error {
	return e.setField(FieldP, p, ErrBadPassword)
}

// SetAnswers supplies the entry's recovery answers, in order, newline-joining
// them the same way ResetAnswers does. If a set of answers was already
// held, the newly joined answers must byte-equal it or SetAnswers fails
// with ErrBadPassword and leaves the held answers untouched — the same
// tie-break SetPassword applies to P, so a second attempt with different
// answers is rejected immediately rather than silently reusing the first
// attempt's derived state.
func (e *Entry) SetAnswers(answers []string) error {
	return e.setField(FieldRA, []byte(strings.Join(answers, "\n")), ErrBadPassword)
}

// ResetPassword installs a new password for the entry, discarding P, LP,
// LP1 and LP2 rather than mutating them in place. MK is left untouched:
// callers use this only after already proving and holding the old MK, as
// part of changePassword.
func (e *Entry) ResetPassword(newP []byte) {
	for _, f := range []Field{FieldP, FieldLP, FieldLP1, FieldLP2} {
		if b, ok := e.secrets[f]; ok {
			b.Destroy()
			delete(e.secrets, f)
		}
	}
	e.secrets[FieldP] = secret.New(newP)
}

// ResetAnswers installs a new set of recovery answers for the entry,
// discarding RA, LRA, LRA1 and LRA3 rather than tie-breaking against
// whatever was memoized before. Callers use this to configure or replace
// recovery answers after already authenticating some other way (a
// password); SetAnswers, by contrast, tie-breaks like SetPassword because
// it is used to test a caller-supplied guess against what is already
// held.
func (e *Entry) ResetAnswers(answers []string) {
	for _, f := range []Field{FieldRA, FieldLRA, FieldLRA1, FieldLRA3} {
		if b, ok := e.secrets[f]; ok {
			b.Destroy()
			delete(e.secrets, f)
		}
	}
	e.secrets[FieldRA] = secret.New([]byte(strings.Join(answers, "\n")))
}

// SetDerived directly supplies value for field, bypassing Require's normal
// derivation path. It is subject to the same tie-break rule as any other
// field: if field is already memoized, value must byte-equal it or
// SetDerived fails with ErrFieldConflict. This lets a caller install a
// field it obtained by some other means than the table in Require — for
// instance LP2 recovered by decrypting ELP2 with LRA3 during a
// change-password-by-recovery-answers flow, which produces the exact
// same bytes scrypt(LP, SNRP2) would have, without ever knowing LP.
func (e *Entry) SetDerived(field Field, value []byte) error {
	return e.setField(field, value, ErrFieldConflict)
}

// Get requires field, deriving it if necessary, and returns a copy of its
// bytes that the caller owns outright.
func (e *Entry) Get(field Field) ([]byte, error) {
	if err := e.Require(field); err != nil {
		return nil, err
	}
	src := e.secrets[field].Reveal()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// Require ensures field is present, recursively deriving whatever inputs
// it needs first. It is idempotent: calling it twice for the same field
// does no extra work the second time.
func (e *Entry) Require(field Field) error {
	if _, ok := e.secrets[field]; ok {
		return nil
	}

	switch field {
	case FieldL:
		return e.setField(field, []byte(e.username), ErrFieldConflict)

	case FieldP:
		return ErrMissingInput

	case FieldLP:
		if err := e.requireAll(FieldL, FieldP); err != nil {
			return err
		}
		return e.setField(field, e.concat(FieldL, FieldP), ErrFieldConflict)

	case FieldRA:
		// Only reachable when SetAnswers was never called: SetAnswers
		// installs FieldRA directly via setField, so a memoized RA is
		// found by the early-return above before this switch runs.
		return ErrMissingInput

	case FieldLRA:
		if err := e.requireAll(FieldL, FieldRA); err != nil {
			return err
		}
		return e.setField(field, e.concat(FieldL, FieldRA), ErrFieldConflict)

	case FieldL1:
		return e.deriveScrypt(field, FieldL, crypto.SNRPForServer())

	case FieldL4:
		snrp, err := e.snrp4()
		if err != nil {
			return err
		}
		return e.deriveScrypt(field, FieldL, snrp)

	case FieldLP1:
		return e.deriveScrypt(field, FieldLP, crypto.SNRPForServer())

	case FieldLP2:
		snrp, err := e.snrp2()
		if err != nil {
			return err
		}
		return e.deriveScrypt(field, FieldLP, snrp)

	case FieldLRA1:
		return e.deriveScrypt(field, FieldLRA, crypto.SNRPForServer())

	case FieldLRA3:
		snrp, err := e.snrp3()
		if err != nil {
			return err
		}
		return e.deriveScrypt(field, FieldLRA, snrp)

	case FieldMK:
		if err := e.Require(FieldLP2); err != nil {
			return err
		}
		if e.login == nil {
			return ErrMissingInput
		}
		mk, err := crypto.Decrypt(e.login.EMK, e.reveal(FieldLP2))
		if err != nil {
			if errors.Is(err, crypto.ErrDecryptFailure) {
				return ErrBadPassword
			}
			return err
		}
		return e.setField(field, mk, ErrFieldConflict)

	case FieldSyncKey:
		if err := e.Require(FieldL4); err != nil {
			return err
		}
		if e.login == nil {
			return ErrMissingInput
		}
		sk, err := crypto.Decrypt(e.login.ESyncKey, e.reveal(FieldL4))
		if err != nil {
			if errors.Is(err, crypto.ErrDecryptFailure) {
				return ErrCorrupt
			}
			return err
		}
		return e.setField(field, sk, ErrFieldConflict)

	case FieldRQ:
		if e.care == nil || e.care.ERQ == nil {
			return ErrNoRecoveryQuestions
		}
		if err := e.Require(FieldL4); err != nil {
			return err
		}
		rq, err := crypto.Decrypt(*e.care.ERQ, e.reveal(FieldL4))
		if err != nil {
			if errors.Is(err, crypto.ErrDecryptFailure) {
				return ErrCorrupt
			}
			return err
		}
		return e.setField(field, rq, ErrFieldConflict)

	default:
		return fmt.Errorf("keycache: unrequireable field %v", field)
	}
}

func (e *Entry) requireAll(fields ...Field) error {
	for _, f := range fields {
		if err := e.Require(f); err != nil {
			return err
		}
	}
	return nil
}

func (e *Entry) deriveScrypt(field, input Field, snrp crypto.SNRP) error {
	if err := e.Require(input); err != nil {
		return err
	}
	key, err := crypto.Scrypt(e.reveal(input), snrp)
	if err != nil {
		return err
	}
	return e.setField(field, key, ErrFieldConflict)
}

func (e *Entry) snrp2() (crypto.SNRP, error) {
	if e.care == nil {
		return crypto.SNRP{}, ErrMissingInput
	}
	return e.care.SNRP2, nil
}

func (e *Entry) snrp3() (crypto.SNRP, error) {
	if e.care == nil {
		return crypto.SNRP{}, ErrMissingInput
	}
	return e.care.SNRP3, nil
}

func (e *Entry) snrp4() (crypto.SNRP, error) {
	if e.care == nil {
		return crypto.SNRP{}, ErrMissingInput
	}
	return e.care.SNRP4, nil
}

func (e *Entry) reveal(field Field) []byte {
	return e.secrets[field].Reveal()
}

func (e *Entry) concat(a, b Field) []byte {
	av, bv := e.reveal(a), e.reveal(b)
	out := make([]byte, 0, len(av)+len(bv))
	out = append(out, av...)
	out = append(out, bv...)
	return out
}

// setField installs value under field if the field is unset. If it is
// already set, value must byte-equal the memoized value or setField
// fails with mismatchErr; either way value's own storage is zeroed before
// returning, since it never becomes the field's permanent home in the
// mismatch case, and is redundant in the match case.
func (e *Entry) setField(field Field, value []byte, mismatchErr error) error {
	if existing, ok := e.secrets[field]; ok {
		equal := existing.Equal(value)
		secret.New(value).Destroy()
		if !equal {
			return mismatchErr
		}
		return nil
	}
	e.secrets[field] = secret.New(value)
	return nil
}

// destroy zeroes every secret field and drops the entry's package
// references. Called by Cache.Evict; the Entry is unusable afterward.
func (e *Entry) destroy() {
	for _, b := range e.secrets {
		b.Destroy()
	}
	e.secrets = make(map[Field]secret.Bytes)
	e.care = nil
	e.login = nil
}

package airbitz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/maniacs-ops/airbitz-core/accountdir"
	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/crypto"
	"github.com/maniacs-ops/airbitz-core/keycache"
	"github.com/maniacs-ops/airbitz-core/loginserver"
)

// SyncEngine is the narrow contract this module needs from the
// content-addressed sync engine, out of scope for this module. It embeds
// accountdir.SyncEngine's repo-initialization contract and adds the one
// operation the orchestrator needs to actually push and pull account
// data once a repo exists.
type SyncEngine interface {
	accountdir.SyncEngine

	// Sync exchanges data with the remote repo rooted at dir, using
	// syncKey to authenticate.
	Sync(dir string, syncKey []byte) error
}

// LoginContext is the owned, non-global aggregate an application builds
// once and calls the eight orchestrator operations against. It carries no
// package-level mutable state: everything it touches lives in its own
// store, server client and cache.
type LoginContext struct {
	cfg    Config
	store  *accountdir.Store
	server *loginserver.Client
	cache  *keycache.Cache

	pendingMu sync.Mutex
	pending   map[string]keycache.PendingRecovery
}

// New builds a LoginContext from cfg. cfg.Sync must be set; there is no
// usable default sync engine.
func New(cfg Config) (*LoginContext, error) {
	if cfg.Sync == nil {
		return nil, fmt.Errorf("%w: Config.Sync is required", ErrInternal)
	}
	if cfg.AccountDir == "" {
		cfg.AccountDir = DefaultAppDataDir()
	}

	store, err := accountdir.New(cfg.AccountDir, cfg.Sync)
	if err != nil {
		return nil, err
	}

	server := loginserver.New(loginserver.Config{
		BaseURL:        cfg.LoginServerURL,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	})

	SetLogLevel(cfg.LogLevel)

	return &LoginContext{
		cfg:     cfg,
		store:   store,
		server:  server,
		cache:   keycache.New(),
		pending: make(map[string]keycache.PendingRecovery),
	}, nil
}

// Create registers a new account under username and password, both
// locally and on the login server, per the create sequence: the remote
// account is made durable before any local slot exists, and a failure
// after the slot is allocated removes that slot again, so no orphan local
// account is left behind. The remote account is not removed on failure.
func (lc *LoginContext) Create(ctx context.Context, username, password string) error {
	if _, found, err := lc.store.SlotForUsername(username); err != nil {
		return err
	} else if found {
		return ErrAccountAlreadyExists
	}

	snrp2, err := crypto.SNRPForClient()
	if err != nil {
		return err
	}
	snrp3, err := crypto.SNRPForClient()
	if err != nil {
		return err
	}
	snrp4, err := crypto.SNRPForClient()
	if err != nil {
		return err
	}

	mk, err := crypto.RandomBytes(32)
	if err != nil {
		return err
	}
	syncKey, err := crypto.RandomBytes(20)
	if err != nil {
		return err
	}

	care := carepackage.CarePackage{SNRP2: snrp2, SNRP3: snrp3, SNRP4: snrp4}

	var login carepackage.LoginPackage
	var l1, lp1 []byte
	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(care)
		if err := e.SetPassword([]byte(password)); err != nil {
			return err
		}

		var err error
		if l1, err = e.Get(keycache.FieldL1); err != nil {
			return err
		}
		if lp1, err = e.Get(keycache.FieldLP1); err != nil {
			return err
		}
		lp2, err := e.Get(keycache.FieldLP2)
		if err != nil {
			return err
		}
		l4, err := e.Get(keycache.FieldL4)
		if err != nil {
			return err
		}

		emk, err := crypto.Encrypt(mk, lp2)
		if err != nil {
			return err
		}
		esync, err := crypto.Encrypt(syncKey, l4)
		if err != nil {
			return err
		}
		login = carepackage.LoginPackage{EMK: emk, ESyncKey: esync}
		e.SetLoginPackage(login)

		if _, err := e.Get(keycache.FieldMK); err != nil {
			return err
		}
		if _, err := e.Get(keycache.FieldSyncKey); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		lc.cache.Evict(username)
		return err
	}

	if err := lc.server.Create(ctx, l1, lp1, care, login, syncKey); err != nil {
		lc.cache.Evict(username)
		return err
	}

	slot, err := lc.store.AllocateSlot(username)
	if err != nil {
		lc.cache.Evict(username)
		return err
	}

	if err := lc.finishCreate(ctx, username, slot, l1, lp1, care, login, syncKey); err != nil {
		lc.store.DeleteSlot(slot)
		lc.cache.Evict(username)
		return err
	}

	return lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetSlot(slot)
		return nil
	})
}

func (lc *LoginContext) finishCreate(ctx context.Context, username string, slot int,
	l1, lp1 []byte, care carepackage.CarePackage, login carepackage.LoginPackage,
	syncKey []byte) error {

	if err := lc.writePackages(slot, care, login); err != nil {
		return err
	}
	if err := lc.store.CreateSyncDir(slot); err != nil {
		return err
	}
	if err := lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey); err != nil {
		return err
	}
	return lc.server.Activate(ctx, l1, lp1)
}

// SignIn authenticates username with password, populating the cache so
// GetSyncKeys and later operations can use it. If no local slot exists
// yet it first fetches the account's packages from the server, proving
// the password is correct in the process. A background refresh then
// fetches the latest LoginPackage; its outcome is delivered on the
// returned channel, which is buffered so a caller that never reads it
// doesn't block the refresh goroutine.
func (lc *LoginContext) SignIn(ctx context.Context, username, password string) (<-chan error, error) {
	lc.cache.Evict(username)

	slot, found, err := lc.store.SlotForUsername(username)
	if err != nil {
		return nil, err
	}

	var care carepackage.CarePackage
	var login carepackage.LoginPackage

	if !found {
		care, login, err = lc.fetchAccountForSignIn(ctx, username, password)
		if err != nil {
			return nil, err
		}
		slot, err = lc.store.AllocateSlot(username)
		if err != nil {
			return nil, err
		}
		if err := lc.writePackages(slot, care, login); err != nil {
			lc.store.DeleteSlot(slot)
			return nil, err
		}
		if err := lc.store.CreateSyncDir(slot); err != nil {
			lc.store.DeleteSlot(slot)
			return nil, err
		}
		syncKey, err := lc.decryptSyncKey(username, care, login)
		if err != nil {
			lc.store.DeleteSlot(slot)
			return nil, err
		}
		if err := lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey); err != nil {
			lc.store.DeleteSlot(slot)
			return nil, err
		}
	} else {
		care, login, err = lc.readPackages(slot)
		if err != nil {
			return nil, err
		}
	}

	var l1, lp1 []byte
	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetSlot(slot)
		e.SetCarePackage(care)
		e.SetLoginPackage(login)
		if err := e.SetPassword([]byte(password)); err != nil {
			return err
		}

		if _, err := e.Get(keycache.FieldSyncKey); err != nil {
			return err
		}
		if _, err := e.Get(keycache.FieldMK); err != nil {
			return err
		}

		var err error
		if l1, err = e.Get(keycache.FieldL1); err != nil {
			return err
		}
		lp1, err = e.Get(keycache.FieldLP1)
		return err
	})
	if err != nil {
		lc.cache.Evict(username)
		return nil, err
	}

	done := make(chan error, 1)
	go lc.refreshLoginPackage(username, l1, lp1, done)
	return done, nil
}

// fetchAccountForSignIn recovers a CarePackage and LoginPackage from the
// server on the recover-on-new-device path, proving password correctness
// as a side effect of a successful GetLoginPackage.
func (lc *LoginContext) fetchAccountForSignIn(ctx context.Context, username, password string) (
	carepackage.CarePackage, carepackage.LoginPackage, error) {

	var care carepackage.CarePackage
	var login carepackage.LoginPackage
	var l1, lp1 []byte

	err := lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		if err := e.SetPassword([]byte(password)); err != nil {
			return err
		}
		l1v, err := e.Get(keycache.FieldL1)
		if err != nil {
			return err
		}
		l1 = l1v
		return nil
	})
	if err != nil {
		return care, login, err
	}

	care, err = lc.server.GetCarePackage(ctx, l1)
	if err != nil {
		return care, login, err
	}

	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(care)
		v, err := e.Get(keycache.FieldLP1)
		if err != nil {
			return err
		}
		lp1 = v
		return nil
	})
	if err != nil {
		return care, login, err
	}

	login, err = lc.server.GetLoginPackage(ctx, l1, lp1, nil)
	if err != nil {
		return care, login, err
	}
	return care, login, nil
}

func (lc *LoginContext) decryptSyncKey(username string, care carepackage.CarePackage,
	login carepackage.LoginPackage) ([]byte, error) {

	var syncKey []byte
	err := lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(care)
		e.SetLoginPackage(login)
		v, err := e.Get(keycache.FieldSyncKey)
		if err != nil {
			return err
		}
		syncKey = v
		return nil
	})
	return syncKey, err
}

// refreshLoginPackage fetches the account's current LoginPackage in the
// background after a successful SignIn. A BadPassword response means the
// password was changed elsewhere; the cache is evicted so the next
// operation re-authenticates. Any other error is transport noise on a
// best-effort call and is swallowed except for reporting on done.
func (lc *LoginContext) refreshLoginPackage(username string, l1, lp1 []byte, done chan<- error) {
	ctx := context.Background()
	login, err := lc.server.GetLoginPackage(ctx, l1, lp1, nil)
	if err != nil {
		if isAuthBadPassword(err) {
			lc.cache.Evict(username)
		}
		done <- err
		return
	}

	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetLoginPackage(login)
		return nil
	})
	done <- err
}

// isAuthBadPassword reports whether err is the server's rejection of a
// password or recovery-answer auth token, as opposed to a rate limit,
// OTP challenge, or transport failure.
func isAuthBadPassword(err error) bool {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	return errors.Is(authErr.Unwrap(), loginserver.ErrBadPassword)
}

// SetRecovery configures recovery questions and answers for username,
// which must already have signed in this process. It uploads a new
// CarePackage carrying the encrypted questions and a new LoginPackage
// carrying the two recovery envelopes, then persists and syncs both
// locally.
func (lc *LoginContext) SetRecovery(ctx context.Context, username string,
	questions []string, answers []string) error {

	var l1, lp1, lra1, syncKey []byte
	var care carepackage.CarePackage
	var login carepackage.LoginPackage
	var slot int

	err := lc.peekSignedIn(username, func(e *keycache.Entry) error {
		s, ok := e.Slot()
		if !ok {
			return ErrAccountDoesNotExist
		}
		slot = s

		e.ResetAnswers(answers)

		var err error
		if l1, err = e.Get(keycache.FieldL1); err != nil {
			return err
		}
		if lp1, err = e.Get(keycache.FieldLP1); err != nil {
			return err
		}
		if lra1, err = e.Get(keycache.FieldLRA1); err != nil {
			return err
		}
		lra3, err := e.Get(keycache.FieldLRA3)
		if err != nil {
			return err
		}
		lp2, err := e.Get(keycache.FieldLP2)
		if err != nil {
			return err
		}
		l4, err := e.Get(keycache.FieldL4)
		if err != nil {
			return err
		}
		if syncKey, err = e.Get(keycache.FieldSyncKey); err != nil {
			return err
		}

		existingCare, ok := e.CarePackage()
		if !ok {
			return ErrInternal
		}
		existingLogin, ok := e.LoginPackage()
		if !ok {
			return ErrInternal
		}

		rq := append([]byte(strings.Join(questions, "\n")), 0)
		erq, err := crypto.Encrypt(rq, l4)
		if err != nil {
			return err
		}
		care = existingCare
		care.ERQ = &erq

		elp2, err := crypto.Encrypt(lp2, lra3)
		if err != nil {
			return err
		}
		elra3, err := crypto.Encrypt(lra3, lp2)
		if err != nil {
			return err
		}
		login = existingLogin
		login.ELP2 = &elp2
		login.ELRA3 = &elra3
		return nil
	})
	if err != nil {
		return err
	}

	if err := lc.server.SetRecovery(ctx, l1, lp1, lra1, care, login); err != nil {
		return err
	}

	if err := lc.writePackages(slot, care, login); err != nil {
		return err
	}
	if err := lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey); err != nil {
		return err
	}

	return lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(care)
		e.SetLoginPackage(login)
		return nil
	})
}

// ChangePassword changes username's password to newPassword. Exactly one
// of oldPassword or answers must be supplied: the caller either knows the
// current password, or is recovering via previously configured recovery
// answers without ever having known it.
func (lc *LoginContext) ChangePassword(ctx context.Context, username string,
	oldPassword string, answers []string, newPassword string) error {

	if (oldPassword == "") == (len(answers) == 0) {
		return fmt.Errorf("%w: exactly one of oldPassword or answers must be set", ErrInternal)
	}

	var l1, oldLP1, oldLRA1, newLP1, syncKey []byte
	var login carepackage.LoginPackage
	var slot int

	err := lc.peekSignedIn(username, func(e *keycache.Entry) error {
		s, ok := e.Slot()
		if !ok {
			return ErrAccountDoesNotExist
		}
		slot = s

		existingLogin, ok := e.LoginPackage()
		if !ok {
			return ErrInternal
		}

		var err error
		if l1, err = e.Get(keycache.FieldL1); err != nil {
			return err
		}
		if syncKey, err = e.Get(keycache.FieldSyncKey); err != nil {
			return err
		}

		var mk, lra3 []byte
		if oldPassword != "" {
			if err := e.SetPassword([]byte(oldPassword)); err != nil {
				return err
			}
			mk, err = e.Get(keycache.FieldMK)
			if err != nil {
				return err
			}
			oldLP1, err = e.Get(keycache.FieldLP1)
			if err != nil {
				return err
			}
			if existingLogin.HasRecovery() {
				oldLP2, err := e.Get(keycache.FieldLP2)
				if err != nil {
					return err
				}
				lra3, err = crypto.Decrypt(*existingLogin.ELRA3, oldLP2)
				if err != nil {
					return keycache.ErrBadPassword
				}
			}
		} else {
			if err := e.SetAnswers(answers); err != nil {
				return err
			}
			lra3v, err := e.Get(keycache.FieldLRA3)
			if err != nil {
				return err
			}
			lra3 = lra3v
			if !existingLogin.HasRecovery() {
				return ErrNoRecoveryQuestions
			}
			oldLP2, err := crypto.Decrypt(*existingLogin.ELP2, lra3)
			if err != nil {
				return keycache.ErrBadPassword
			}
			mk, err = crypto.Decrypt(existingLogin.EMK, oldLP2)
			if err != nil {
				return keycache.ErrBadPassword
			}
			oldLRA1, err = e.Get(keycache.FieldLRA1)
			if err != nil {
				return err
			}
		}

		e.ResetPassword([]byte(newPassword))
		newLP2, err := e.Get(keycache.FieldLP2)
		if err != nil {
			return err
		}
		newLP1, err = e.Get(keycache.FieldLP1)
		if err != nil {
			return err
		}

		emk, err := crypto.Encrypt(mk, newLP2)
		if err != nil {
			return err
		}
		login = carepackage.LoginPackage{
			EMK:      emk,
			ESyncKey: existingLogin.ESyncKey,
		}
		if lra3 != nil {
			elp2, err := crypto.Encrypt(newLP2, lra3)
			if err != nil {
				return err
			}
			elra3, err := crypto.Encrypt(lra3, newLP2)
			if err != nil {
				return err
			}
			login.ELP2 = &elp2
			login.ELRA3 = &elra3
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := lc.server.ChangePassword(ctx, l1, oldLP1, oldLRA1, newLP1, login); err != nil {
		return err
	}

	if err := lc.writePackages(slot, carepackage.CarePackage{}, login); err != nil {
		return err
	}
	if err := lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey); err != nil {
		return err
	}

	return lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetLoginPackage(login)
		return nil
	})
}

// CheckRecoveryAnswers reports whether answers match the recovery
// questions previously configured for username. On the recover-on-new-
// device path (FetchRecoveryQuestions ran with no local slot), a
// successful server check also finishes the recovery by writing a local
// slot and syncing, the same as SignIn's recover-on-new-device branch.
func (lc *LoginContext) CheckRecoveryAnswers(ctx context.Context, username string,
	answers []string) (bool, error) {

	lc.pendingMu.Lock()
	pending, ok := lc.pending[username]
	if ok {
		delete(lc.pending, username)
	}
	lc.pendingMu.Unlock()
	if ok {
		return lc.checkRecoveryAnswersPending(ctx, username, pending, answers)
	}

	var found bool
	err := lc.peekSignedIn(username, func(e *keycache.Entry) error {
		_, found = e.Slot()
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrAccountDoesNotExist
	}

	var mismatch bool
	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		if err := e.SetAnswers(answers); err != nil {
			if errors.Is(err, keycache.ErrBadPassword) {
				mismatch = true
				return nil
			}
			return err
		}
		lra3, err := e.Get(keycache.FieldLRA3)
		if err != nil {
			return err
		}
		login, ok := e.LoginPackage()
		if !ok || !login.HasRecovery() {
			return ErrNoRecoveryQuestions
		}
		if _, err := crypto.Decrypt(*login.ELP2, lra3); err != nil {
			if errors.Is(err, crypto.ErrDecryptFailure) {
				mismatch = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return !mismatch, nil
}

func (lc *LoginContext) checkRecoveryAnswersPending(ctx context.Context, username string,
	pending keycache.PendingRecovery, answers []string) (bool, error) {

	var l1, lra1 []byte
	var mismatch bool
	err := lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(pending.Care)
		if err := e.SetAnswers(answers); err != nil {
			if errors.Is(err, keycache.ErrBadPassword) {
				mismatch = true
				return nil
			}
			return err
		}

		var err error
		if l1, err = e.Get(keycache.FieldL1); err != nil {
			return err
		}
		lra1, err = e.Get(keycache.FieldLRA1)
		return err
	})
	if err != nil {
		return false, err
	}
	if mismatch {
		return false, nil
	}

	login, err := lc.server.GetLoginPackage(ctx, l1, nil, lra1)
	if err != nil {
		if isAuthBadPassword(err) {
			return false, nil
		}
		return false, err
	}

	slot, err := lc.store.AllocateSlot(username)
	if err != nil {
		return false, err
	}
	if err := lc.writePackages(slot, pending.Care, login); err != nil {
		lc.store.DeleteSlot(slot)
		return false, err
	}
	if err := lc.store.CreateSyncDir(slot); err != nil {
		lc.store.DeleteSlot(slot)
		return false, err
	}

	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetSlot(slot)
		e.SetLoginPackage(login)
		syncKey, err := e.Get(keycache.FieldSyncKey)
		if err != nil {
			return err
		}
		return lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey)
	})
	if err != nil {
		lc.store.DeleteSlot(slot)
		return false, err
	}
	return true, nil
}

// FetchRecoveryQuestions returns the recovery questions text configured
// for username. This never requires a password: RQ is encrypted with L4,
// which is derived from the username alone. On a device with a local slot
// this loads the CarePackage from disk if it isn't already cached and
// decrypts ERQ from it. On a brand new device it fetches the CarePackage
// from the server first, staging it as a PendingRecovery for
// CheckRecoveryAnswers to consume.
func (lc *LoginContext) FetchRecoveryQuestions(ctx context.Context, username string) (string, error) {
	slot, found, err := lc.store.SlotForUsername(username)
	if err != nil {
		return "", err
	}

	if found {
		var rq []byte
		err := lc.cache.WithEntry(username, func(e *keycache.Entry) error {
			if _, ok := e.CarePackage(); !ok {
				care, err := lc.readCarePackage(slot)
				if err != nil {
					return err
				}
				e.SetSlot(slot)
				e.SetCarePackage(care)
			}
			v, err := e.Get(keycache.FieldRQ)
			if err != nil {
				return err
			}
			rq = v
			return nil
		})
		if err != nil {
			return "", err
		}
		return string(rq), nil
	}

	var l1 []byte
	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		v, err := e.Get(keycache.FieldL1)
		if err != nil {
			return err
		}
		l1 = v
		return nil
	})
	if err != nil {
		return "", err
	}

	care, err := lc.server.GetCarePackage(ctx, l1)
	if err != nil {
		return "", err
	}

	var rq []byte
	err = lc.cache.WithEntry(username, func(e *keycache.Entry) error {
		e.SetCarePackage(care)
		v, err := e.Get(keycache.FieldRQ)
		if err != nil {
			return err
		}
		rq = v
		return nil
	})
	if err != nil {
		return "", err
	}

	lc.pendingMu.Lock()
	lc.pending[username] = keycache.PendingRecovery{Username: username, Care: care}
	lc.pendingMu.Unlock()
	return string(rq), nil
}

// GetSyncKeys returns the master data key and the sync repository key for
// username, both already resident in the cache from a prior SignIn or
// Create. It hands the two keys the external sync engine needs without
// exposing the cache entry itself.
func (lc *LoginContext) GetSyncKeys(username string) (mk, syncKey []byte, err error) {
	err = lc.peekSignedIn(username, func(e *keycache.Entry) error {
		var err error
		if mk, err = e.Get(keycache.FieldMK); err != nil {
			return err
		}
		syncKey, err = e.Get(keycache.FieldSyncKey)
		return err
	})
	return mk, syncKey, err
}

// SyncData synchronizes username's account directory against the remote
// repository, using the sync key already resident in the cache.
func (lc *LoginContext) SyncData(username string) error {
	var slot int
	var syncKey []byte
	err := lc.peekSignedIn(username, func(e *keycache.Entry) error {
		s, ok := e.Slot()
		if !ok {
			return ErrAccountDoesNotExist
		}
		slot = s
		v, err := e.Get(keycache.FieldSyncKey)
		if err != nil {
			return err
		}
		syncKey = v
		return nil
	})
	if err != nil {
		return err
	}
	return lc.cfg.Sync.Sync(lc.store.SyncDir(slot), syncKey)
}

// peekSignedIn runs fn against username's cache entry, requiring that one
// already exists from a prior Create or SignIn in this process. It maps
// keycache's "no entry at all" outcome onto the same sentinel a caller
// already checks for a genuinely unknown account, since from outside this
// package "never signed in" and "doesn't exist" call for the same
// corrective action: sign in first.
func (lc *LoginContext) peekSignedIn(username string, fn func(*keycache.Entry) error) error {
	err := lc.cache.Peek(username, fn)
	if errors.Is(err, keycache.ErrNotFound) {
		return ErrAccountDoesNotExist
	}
	return err
}

func (lc *LoginContext) writePackages(slot int, care carepackage.CarePackage,
	login carepackage.LoginPackage) error {

	if !isZeroCarePackage(care) {
		data, err := carepackage.MarshalCarePackage(care)
		if err != nil {
			return err
		}
		if err := lc.store.WritePackage(slot, accountdir.KindCarePackage, data); err != nil {
			return err
		}
	}

	data, err := carepackage.MarshalLoginPackage(login)
	if err != nil {
		return err
	}
	return lc.store.WritePackage(slot, accountdir.KindLoginPackage, data)
}

func isZeroCarePackage(c carepackage.CarePackage) bool {
	return c.SNRP2.N == 0 && c.SNRP3.N == 0 && c.SNRP4.N == 0
}

func (lc *LoginContext) readCarePackage(slot int) (carepackage.CarePackage, error) {
	careData, err := lc.store.ReadPackage(slot, accountdir.KindCarePackage)
	if err != nil {
		return carepackage.CarePackage{}, err
	}
	return carepackage.ParseCarePackage(careData)
}

func (lc *LoginContext) readPackages(slot int) (carepackage.CarePackage, carepackage.LoginPackage, error) {
	care, err := lc.readCarePackage(slot)
	if err != nil {
		return carepackage.CarePackage{}, carepackage.LoginPackage{}, err
	}

	loginData, err := lc.store.ReadPackage(slot, accountdir.KindLoginPackage)
	if err != nil {
		return carepackage.CarePackage{}, carepackage.LoginPackage{}, err
	}
	login, err := carepackage.ParseLoginPackage(loginData)
	if err != nil {
		return carepackage.CarePackage{}, carepackage.LoginPackage{}, err
	}
	return care, login, nil
}

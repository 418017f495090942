// Package accountdir is the source of truth for "does a local account
// exist, and where is it": a root directory containing numbered slot
// subdirectories, each holding a username marker, the two package files
// and a sync/ directory owned by the (out-of-scope) content-addressed sync
// engine. Every write is atomic, grounded on chanbackup/backupfile.go's
// temp-file-then-rename pattern.
package accountdir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind names one of the two package files persisted per slot.
type Kind string

const (
	// KindCarePackage names CarePackage.json.
	KindCarePackage Kind = "CarePackage.json"

	// KindLoginPackage names LoginPackage.json.
	KindLoginPackage Kind = "LoginPackage.json"
)

const (
	usernameFileName = "UserName.json"
	syncDirName      = "sync"
	slotDirPrefix    = "Account_"
	deviceFileName   = "device.json"
	tempFilePattern  = ".tmp-*"
)

// SyncEngine is the narrow contract this package needs from the
// content-addressed sync engine, which is out of scope for this module.
// CreateSyncDir only needs to know how to turn an empty directory into a
// freshly initialized repo; it doesn't need to know how sync itself works.
type SyncEngine interface {
	// InitRepo initializes dir as a new, empty sync repository.
	InitRepo(dir string) error
}

// Store maps usernames to numbered local account slots rooted at Dir.
type Store struct {
	// Dir is the root directory containing Account_N slot directories
	// and device.json.
	Dir string

	// Sync is used by CreateSyncDir to initialize a slot's sync/
	// subdirectory. It may be nil if the caller never calls
	// CreateSyncDir (e.g. in tests exercising only the package store).
	Sync SyncEngine
}

// New returns a Store rooted at dir, creating dir if it doesn't already
// exist.
func New(dir string, sync SyncEngine) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("accountdir: creating root: %w", err)
	}
	return &Store{Dir: dir, Sync: sync}, nil
}

type usernameFile struct {
	UserName string `json:"userName"`
}

func (s *Store) slotDir(slot int) string {
	return filepath.Join(s.Dir, slotDirPrefix+strconv.Itoa(slot))
}

// slots returns every currently allocated slot number, in no particular
// order.
func (s *Store) slots() ([]int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("accountdir: listing root: %w", err)
	}

	var slots []int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), slotDirPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), slotDirPrefix))
		if err != nil {
			continue
		}
		slots = append(slots, n)
	}
	return slots, nil
}

// SlotForUsername scans every slot for one whose UserName.json matches
// username, returning found=false if none does. This is an O(n) scan by
// design: the store must never trust an in-memory index over what's
// actually on disk.
func (s *Store) SlotForUsername(username string) (slot int, found bool, err error) {
	slots, err := s.slots()
	if err != nil {
		return 0, false, err
	}
	for _, candidate := range slots {
		data, err := os.ReadFile(filepath.Join(s.slotDir(candidate), usernameFileName))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, false, fmt.Errorf(
				"accountdir: reading slot %d username: %w", candidate, err)
		}
		var uf usernameFile
		if err := json.Unmarshal(data, &uf); err != nil {
			continue
		}
		if uf.UserName == username {
			return candidate, true, nil
		}
	}
	return 0, false, nil
}

// AllocateSlot creates a new slot directory for username, choosing the
// lowest unused non-negative integer as its slot id, and writes
// UserName.json. It does not create the sync/ subdirectory; call
// CreateSyncDir separately once the caller is ready to initialize it.
func (s *Store) AllocateSlot(username string) (slot int, err error) {
	existing, err := s.slots()
	if err != nil {
		return 0, err
	}
	used := make(map[int]bool, len(existing))
	for _, n := range existing {
		used[n] = true
	}
	for slot = 0; used[slot]; slot++ {
	}

	dir := s.slotDir(slot)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return 0, fmt.Errorf("accountdir: creating slot dir: %w", err)
	}

	data, err := json.Marshal(usernameFile{UserName: username})
	if err != nil {
		return 0, fmt.Errorf("accountdir: encoding username: %w", err)
	}
	if err := atomicWrite(filepath.Join(dir, usernameFileName), data); err != nil {
		return 0, err
	}

	log.Infof("Allocated slot %d for account", slot)
	return slot, nil
}

// WritePackage atomically replaces the given package file within slot. No
// partial file is ever observable: the new contents are written to a
// temporary file in the same directory, then renamed over the target.
func (s *Store) WritePackage(slot int, kind Kind, data []byte) error {
	dir := s.slotDir(slot)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: slot %d", ErrSlotNotFound, slot)
		}
		return fmt.Errorf("accountdir: stat slot dir: %w", err)
	}
	return atomicWrite(filepath.Join(dir, string(kind)), data)
}

// ReadPackage reads the given package file from slot, returning
// ErrNotFound if it doesn't exist.
func (s *Store) ReadPackage(slot int, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.slotDir(slot), string(kind)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: slot %d %s", ErrNotFound, slot, kind)
		}
		return nil, fmt.Errorf("accountdir: reading package: %w", err)
	}
	return data, nil
}

// CreateSyncDir initializes slot's sync/ subdirectory via the configured
// SyncEngine.
func (s *Store) CreateSyncDir(slot int) error {
	dir := filepath.Join(s.slotDir(slot), syncDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("accountdir: creating sync dir: %w", err)
	}
	if s.Sync == nil {
		return nil
	}
	return s.Sync.InitRepo(dir)
}

// SyncDir returns the path to slot's sync/ subdirectory.
func (s *Store) SyncDir(slot int) string {
	return filepath.Join(s.slotDir(slot), syncDirName)
}

// DeleteSlot recursively removes slot's directory. It is idempotent:
// deleting an already-absent slot is not an error.
func (s *Store) DeleteSlot(slot int) error {
	if err := os.RemoveAll(s.slotDir(slot)); err != nil {
		return fmt.Errorf("accountdir: deleting slot %d: %w", slot, err)
	}
	log.Infof("Deleted slot %d", slot)
	return nil
}

type deviceFile struct {
	DeviceID string `json:"deviceId"`
}

// DeviceID returns this store's stable per-device identifier, generating
// and persisting one on first use.
func (s *Store) DeviceID() (string, error) {
	path := filepath.Join(s.Dir, deviceFileName)

	data, err := os.ReadFile(path)
	if err == nil {
		var df deviceFile
		if err := json.Unmarshal(data, &df); err == nil && df.DeviceID != "" {
			return df.DeviceID, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("accountdir: reading device id: %w", err)
	}

	id := uuid.New().String()
	data, err = json.Marshal(deviceFile{DeviceID: id})
	if err != nil {
		return "", fmt.Errorf("accountdir: encoding device id: %w", err)
	}
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return id, nil
}

// atomicWrite writes data to a temp file beside path, then renames it into
// place. This relies on the same-filesystem atomic rename guarantee most
// file systems provide, exactly as chanbackup.MultiFile.UpdateAndSwap
// does for channel backups.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("accountdir: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("accountdir: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("accountdir: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("accountdir: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("accountdir: renaming into place: %w", err)
	}
	return nil
}

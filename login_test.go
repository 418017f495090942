package airbitz_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	airbitz "github.com/maniacs-ops/airbitz-core"
	"github.com/stretchr/testify/require"
)

// fakeSync is an in-memory stand-in for the content-addressed sync
// engine, recording every repo it was asked to initialize or sync.
type fakeSync struct {
	mu      sync.Mutex
	inited  map[string]bool
	synced  []string
}

func newFakeSync() *fakeSync {
	return &fakeSync{inited: make(map[string]bool)}
}

func (f *fakeSync) InitRepo(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited[dir] = true
	return nil
}

func (f *fakeSync) Sync(dir string, syncKey []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, dir)
	return nil
}

// fakeAccount mirrors the subset of server-side state the login server
// endpoints this orchestrator uses actually need.
type fakeAccount struct {
	lp1, lra1      string
	care, login    json.RawMessage
}

// fakeServer is a minimal in-memory login server exercising exactly the
// v1 endpoints LoginContext calls, keyed by L1 hex.
type fakeServer struct {
	mu       sync.Mutex
	accounts map[string]*fakeAccount
}

func newFakeServer() *fakeServer {
	return &fakeServer{accounts: make(map[string]*fakeAccount)}
}

type wireRequest struct {
	L1           string          `json:"l1"`
	LP1          string          `json:"lp1"`
	LRA1         string          `json:"lra1"`
	OldLP1       string          `json:"oldLp1"`
	OldLRA1      string          `json:"oldLra1"`
	NewLP1       string          `json:"newLp1"`
	CarePackage  json.RawMessage `json:"carePackage"`
	LoginPackage json.RawMessage `json:"loginPackage"`
	SyncKey      string          `json:"syncKey"`
}

func writeStatus(w http.ResponseWriter, status int) {
	fmt.Fprintf(w, `{"status":%d}`, status)
}

func writeResults(w http.ResponseWriter, raw json.RawMessage) {
	fmt.Fprintf(w, `{"status":0,"results":%s}`, raw)
}

func (s *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/account/carepackage/get":
		l1 := r.URL.Query().Get("l1")
		acct, ok := s.accounts[l1]
		if !ok {
			writeStatus(w, 2)
			return
		}
		writeResults(w, acct.care)
		return
	}

	var req wireRequest
	json.NewDecoder(r.Body).Decode(&req)

	switch r.URL.Path {
	case "/account/create":
		if _, exists := s.accounts[req.L1]; exists {
			writeStatus(w, 1)
			return
		}
		s.accounts[req.L1] = &fakeAccount{
			lp1:   req.LP1,
			care:  req.CarePackage,
			login: req.LoginPackage,
		}
		writeStatus(w, 0)

	case "/account/activate":
		if !s.authLP1(req.L1, req.LP1) {
			writeStatus(w, 3)
			return
		}
		writeStatus(w, 0)

	case "/account/loginpackage/get":
		acct, ok := s.accounts[req.L1]
		if !ok {
			writeStatus(w, 2)
			return
		}
		if req.LP1 != "" {
			if req.LP1 != acct.lp1 {
				writeStatus(w, 3)
				return
			}
		} else {
			if acct.lra1 == "" || req.LRA1 != acct.lra1 {
				writeStatus(w, 3)
				return
			}
		}
		writeResults(w, acct.login)

	case "/account/recovery/set":
		if !s.authLP1(req.L1, req.LP1) {
			writeStatus(w, 3)
			return
		}
		acct := s.accounts[req.L1]
		acct.lra1 = req.LRA1
		acct.care = req.CarePackage
		acct.login = req.LoginPackage
		writeStatus(w, 0)

	case "/account/password/update":
		acct, ok := s.accounts[req.L1]
		if !ok {
			writeStatus(w, 2)
			return
		}
		if req.OldLP1 != "" {
			if req.OldLP1 != acct.lp1 {
				writeStatus(w, 3)
				return
			}
		} else {
			if acct.lra1 == "" || req.OldLRA1 != acct.lra1 {
				writeStatus(w, 3)
				return
			}
		}
		acct.lp1 = req.NewLP1
		acct.login = req.LoginPackage
		writeStatus(w, 0)

	default:
		writeStatus(w, 0)
	}
}

func (s *fakeServer) authLP1(l1, lp1 string) bool {
	acct, ok := s.accounts[l1]
	return ok && acct.lp1 == lp1
}

func newTestContext(t *testing.T) (*airbitz.LoginContext, *fakeSync, string) {
	t.Helper()
	server := newFakeServer()
	srv := httptest.NewServer(http.HandlerFunc(server.handler))
	t.Cleanup(srv.Close)

	sync := newFakeSync()
	accountDir := t.TempDir()
	cfg := airbitz.DefaultConfig()
	cfg.AccountDir = accountDir
	cfg.LoginServerURL = srv.URL
	cfg.Sync = sync

	ctx, err := airbitz.New(cfg)
	require.NoError(t, err)
	return ctx, sync, accountDir
}

// freshConfig builds a Config pointing at an already-populated account
// directory, simulating a process restart against the same local state.
func freshConfig(t *testing.T, accountDir string) airbitz.Config {
	t.Helper()
	cfg := airbitz.DefaultConfig()
	cfg.AccountDir = accountDir
	cfg.Sync = newFakeSync()
	return cfg
}

// corruptSyncKeyCiphertext overwrites the last byte of slot 0's on-disk
// ESyncKey ciphertext, simulating bit rot or disk corruption unrelated to
// any password.
func corruptSyncKeyCiphertext(t *testing.T, accountDir string) {
	t.Helper()
	path := filepath.Join(accountDir, "Account_0", "LoginPackage.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	syncKey := doc["SyncKey"].(map[string]interface{})
	ct := syncKey["ct"].(string)
	require.True(t, len(ct) >= 2)
	last := ct[len(ct)-2:]
	replacement := "00"
	if last == "00" {
		replacement = "ff"
	}
	syncKey["ct"] = ct[:len(ct)-2] + replacement

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, out, 0600))
}

func drainRefresh(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background login package refresh")
	}
}

func TestCreateThenSignInRecoversSameKeys(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	mkAtCreate, syncKeyAtCreate, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)

	done, err := lc.SignIn(ctx, "alice", "hunter2")
	require.NoError(t, err)
	drainRefresh(t, done)

	mkAtSignIn, syncKeyAtSignIn, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)
	require.Equal(t, mkAtCreate, mkAtSignIn)
	require.Equal(t, syncKeyAtCreate, syncKeyAtSignIn)
}

func TestCreateTwiceFails(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	err := lc.Create(ctx, "alice", "hunter2")
	require.ErrorIs(t, err, airbitz.ErrAccountAlreadyExists)
}

func TestSignInWrongPasswordFails(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	_, err := lc.SignIn(ctx, "alice", "wrongpass")
	require.ErrorIs(t, err, airbitz.ErrBadPassword)
}

func TestChangePasswordThenSignInWithNewPassword(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	mkAtCreate, _, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)

	require.NoError(t, lc.ChangePassword(ctx, "alice", "hunter2", nil, "newpassword"))

	_, err = lc.SignIn(ctx, "alice", "hunter2")
	require.ErrorIs(t, err, airbitz.ErrBadPassword)

	done, err := lc.SignIn(ctx, "alice", "newpassword")
	require.NoError(t, err)
	drainRefresh(t, done)

	mkAfter, _, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)
	require.Equal(t, mkAtCreate, mkAfter)
}

func TestSetRecoveryThenCheckRecoveryAnswers(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	require.NoError(t, lc.SetRecovery(ctx, "alice",
		[]string{"Q1", "Q2"}, []string{"A1", "A2"}))

	ok, err := lc.CheckRecoveryAnswers(ctx, "alice", []string{"A1", "A2"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lc.CheckRecoveryAnswers(ctx, "alice", []string{"wrong", "answers"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFetchRecoveryQuestionsLocalSlot(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	require.NoError(t, lc.SetRecovery(ctx, "alice",
		[]string{"Q1", "Q2"}, []string{"A1", "A2"}))

	rq, err := lc.FetchRecoveryQuestions(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Q1\nQ2\x00", rq)
}

func TestFetchRecoveryQuestionsWithoutPriorSignIn(t *testing.T) {
	lc, _, accountDir := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	require.NoError(t, lc.SetRecovery(ctx, "alice",
		[]string{"Q1", "Q2"}, []string{"A1", "A2"}))

	fresh, err := airbitz.New(freshConfig(t, accountDir))
	require.NoError(t, err)

	rq, err := fresh.FetchRecoveryQuestions(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Q1\nQ2\x00", rq)
}

func TestChangePasswordViaRecoveryAnswersWithoutOldPassword(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	require.NoError(t, lc.SetRecovery(ctx, "alice",
		[]string{"Q1", "Q2"}, []string{"A1", "A2"}))
	mkAtCreate, _, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)

	err = lc.ChangePassword(ctx, "alice", "", []string{"A1", "A2"}, "brandnew")
	require.NoError(t, err)

	done, err := lc.SignIn(ctx, "alice", "brandnew")
	require.NoError(t, err)
	drainRefresh(t, done)

	mkAfter, _, err := lc.GetSyncKeys("alice")
	require.NoError(t, err)
	require.Equal(t, mkAtCreate, mkAfter)
}

func TestCorruptSyncKeySurfacesInternalErrorNotBadPassword(t *testing.T) {
	lc, _, accountDir := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	corruptSyncKeyCiphertext(t, accountDir)

	_, err := lc.SignIn(ctx, "alice", "hunter2")
	require.ErrorIs(t, err, airbitz.ErrCorrupt)
	require.NotErrorIs(t, err, airbitz.ErrBadPassword)
}

func TestFetchAccountOnNewDeviceFailsForUnknownUsername(t *testing.T) {
	lc, _, _ := newTestContext(t)
	ctx := context.Background()

	_, err := lc.SignIn(ctx, "nosuchaccount", "hunter2")
	require.ErrorIs(t, err, airbitz.ErrAccountDoesNotExist)
}

func TestCreateSyncsRepoAndInitializesSlot(t *testing.T) {
	lc, sync, _ := newTestContext(t)
	ctx := context.Background()

	require.NoError(t, lc.Create(ctx, "alice", "hunter2"))
	require.NotEmpty(t, sync.synced)
	require.Len(t, sync.inited, 1)
}

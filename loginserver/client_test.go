package loginserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/crypto"
	"github.com/maniacs-ops/airbitz-core/loginserver"
	"github.com/stretchr/testify/require"
)

func testCarePackage(t *testing.T) carepackage.CarePackage {
	t.Helper()
	snrp, err := crypto.SNRPForClient()
	require.NoError(t, err)
	return carepackage.CarePackage{SNRP2: snrp, SNRP3: snrp, SNRP4: snrp}
}

func testLoginPackage(t *testing.T) carepackage.LoginPackage {
	t.Helper()
	env, err := crypto.Encrypt([]byte("x"), make([]byte, 32))
	require.NoError(t, err)
	return carepackage.LoginPackage{EMK: env, ESyncKey: env}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *loginserver.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return loginserver.New(loginserver.DefaultConfig(srv.URL))
}

func writeStatus(w http.ResponseWriter, status int, extra map[string]interface{}) {
	body := map[string]interface{}{"status": status}
	for k, v := range extra {
		body[k] = v
	}
	json.NewEncoder(w).Encode(body)
}

func TestCreateSuccess(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeStatus(w, 0, nil)
	})

	err := client.Create(context.Background(), []byte("l1"), []byte("lp1"),
		testCarePackage(t), testLoginPackage(t), []byte("synckey"))
	require.NoError(t, err)
	require.Equal(t, "/account/create", gotPath)
}

func TestCreateAlreadyExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, 1, nil)
	})

	err := client.Create(context.Background(), []byte("l1"), []byte("lp1"),
		testCarePackage(t), testLoginPackage(t), []byte("synckey"))
	require.ErrorIs(t, err, loginserver.ErrAccountAlreadyExists)
}

func TestActivateIdempotent(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeStatus(w, 0, nil)
	})

	require.NoError(t, client.Activate(context.Background(), []byte("l1"), []byte("lp1")))
	require.NoError(t, client.Activate(context.Background(), []byte("l1"), []byte("lp1")))
	require.Equal(t, 2, calls)
}

func TestGetCarePackageRoundTrip(t *testing.T) {
	care := testCarePackage(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := carepackage.MarshalCarePackage(care)
		w.Write([]byte(`{"status":0,"results":` + string(data) + `}`))
	})

	out, err := client.GetCarePackage(context.Background(), []byte("l1"))
	require.NoError(t, err)
	require.Equal(t, care.SNRP2, out.SNRP2)
}

func TestBadPasswordMapsToAuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, 3, nil)
	})

	_, err := client.GetLoginPackage(context.Background(), []byte("l1"), []byte("lp1"), nil)
	require.ErrorIs(t, err, loginserver.ErrBadPassword)

	var authErr *loginserver.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestInvalidOTPCarriesResetDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, 5, map[string]interface{}{
			"otpResetDate":  "2026-08-10",
			"otpResetToken": "reset-tok",
		})
	})

	err := client.Activate(context.Background(), []byte("l1"), []byte("lp1"))
	var authErr *loginserver.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "2026-08-10", authErr.OTPDate)
	require.Equal(t, "reset-tok", authErr.OTPToken)
}

func TestInvalidPinWaitCarriesSeconds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, 6, map[string]interface{}{"pinWait": 42})
	})

	_, err := client.GetPin(context.Background(), []byte("did"), []byte("lpin1"))
	var authErr *loginserver.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 42, authErr.PinWait)
}

func TestServerErrorOn5xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Activate(context.Background(), []byte("l1"), []byte("lp1"))
	require.ErrorIs(t, err, loginserver.ErrServer)
}

func TestChangePasswordRequiresExactlyOneOldAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, 0, nil)
	})

	err := client.ChangePassword(context.Background(), []byte("l1"), nil, nil,
		[]byte("newlp1"), testLoginPackage(t))
	require.Error(t, err)

	err = client.ChangePassword(context.Background(), []byte("l1"),
		[]byte("oldlp1"), []byte("oldlra1"), []byte("newlp1"), testLoginPackage(t))
	require.Error(t, err)
}

func TestV2LoginRoundTrip(t *testing.T) {
	login := testLoginPackage(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := carepackage.MarshalLoginPackage(login)
		w.Write([]byte(`{"status":0,"results":{"loginPackage":` + string(data) + `}}`))
	})

	out, err := client.V2Login(context.Background(), loginserver.AuthJson{UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, login.ESyncKey, out.ESyncKey)
}

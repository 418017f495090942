package loginserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/crypto"
)

// Create registers a new account on the server. It is not idempotent on
// success: calling it again for the same username returns
// ErrAccountAlreadyExists. The orchestrator is responsible for checking
// the local store first so a retried Create after a network error doesn't
// masquerade as "someone already took this username".
func (c *Client) Create(ctx context.Context, l1, lp1 []byte,
	care carepackage.CarePackage, login carepackage.LoginPackage,
	syncKey []byte) error {

	careEnv, err := newCarePackageEnvelope(care)
	if err != nil {
		return err
	}
	loginEnv, err := newLoginPackageEnvelope(login)
	if err != nil {
		return err
	}

	req := createRequest{
		L1:           crypto.Hex(l1),
		LP1:          crypto.Hex(lp1),
		CarePackage:  careEnv,
		LoginPackage: loginEnv,
		SyncKey:      crypto.Hex(syncKey),
	}
	return c.doJSON(ctx, "POST", "/account/create", req, nil)
}

// Activate marks an account active once its initial sync has completed.
// It is idempotent: calling it twice with the same arguments both
// succeed.
func (c *Client) Activate(ctx context.Context, l1, lp1 []byte) error {
	req := activateRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1)}
	return c.doJSON(ctx, "POST", "/account/activate", req, nil)
}

// GetCarePackage fetches the account's CarePackage by L1 alone — no
// password proof is required, since the CarePackage contains no secret
// material.
func (c *Client) GetCarePackage(ctx context.Context, l1 []byte) (carepackage.CarePackage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "GET", "/account/carepackage/get?l1="+crypto.Hex(l1),
		nil, &raw); err != nil {
		return carepackage.CarePackage{}, err
	}
	pkg, err := carepackage.ParseCarePackage(raw)
	if err != nil {
		return carepackage.CarePackage{}, err
	}
	return pkg, nil
}

// GetLoginPackage fetches the account's LoginPackage, proving identity
// with exactly one of lp1 or lra1 (pass the other as nil). A successful
// response proves the supplied auth token is correct.
func (c *Client) GetLoginPackage(ctx context.Context, l1, lp1, lra1 []byte) (carepackage.LoginPackage, error) {
	req := loginPackageGetRequest{L1: crypto.Hex(l1)}
	if lp1 != nil {
		req.LP1 = crypto.Hex(lp1)
	}
	if lra1 != nil {
		req.LRA1 = crypto.Hex(lra1)
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, "POST", "/account/loginpackage/get", req, &raw); err != nil {
		return carepackage.LoginPackage{}, err
	}
	pkg, err := carepackage.ParseLoginPackage(raw)
	if err != nil {
		return carepackage.LoginPackage{}, err
	}
	return pkg, nil
}

// SetRecovery uploads a new CarePackage and LoginPackage that add (or
// replace) recovery-question support, proving identity with both the
// password and recovery-answer auth tokens.
func (c *Client) SetRecovery(ctx context.Context, l1, lp1, lra1 []byte,
	care carepackage.CarePackage, login carepackage.LoginPackage) error {

	careEnv, err := newCarePackageEnvelope(care)
	if err != nil {
		return err
	}
	loginEnv, err := newLoginPackageEnvelope(login)
	if err != nil {
		return err
	}

	req := setRecoveryRequest{
		L1:           crypto.Hex(l1),
		LP1:          crypto.Hex(lp1),
		LRA1:         crypto.Hex(lra1),
		CarePackage:  careEnv,
		LoginPackage: loginEnv,
	}
	return c.doJSON(ctx, "POST", "/account/recovery/set", req, nil)
}

// ChangePassword uploads a new LoginPackage wrapping the account's
// unchanged master key under a freshly derived password key, proving the
// caller's prior identity with exactly one of oldLP1 or oldLRA1.
func (c *Client) ChangePassword(ctx context.Context, l1, oldLP1, oldLRA1, newLP1 []byte,
	login carepackage.LoginPackage) error {

	if (oldLP1 == nil) == (oldLRA1 == nil) {
		return fmt.Errorf("%w: exactly one of oldLP1 or oldLRA1 must be set",
			ErrServer)
	}

	loginEnv, err := newLoginPackageEnvelope(login)
	if err != nil {
		return err
	}

	req := changePasswordRequest{
		L1:           crypto.Hex(l1),
		NewLP1:       crypto.Hex(newLP1),
		LoginPackage: loginEnv,
	}
	if oldLP1 != nil {
		req.OldLP1 = crypto.Hex(oldLP1)
	} else {
		req.OldLRA1 = crypto.Hex(oldLRA1)
	}
	return c.doJSON(ctx, "POST", "/account/password/update", req, nil)
}

// GetPin fetches the account's PIN package, authenticating with a
// device-scoped hashed PIN token. A rate-limit or OTP failure comes back
// as an *AuthError; callers use errors.As to inspect it.
func (c *Client) GetPin(ctx context.Context, did, lpin1 []byte) (PinPackage, error) {
	req := pinPackageGetRequest{DID: crypto.Hex(did), LPIN1: crypto.Hex(lpin1)}
	var pin PinPackage
	err := c.doJSON(ctx, "POST", "/account/pin/get", req, &pin)
	return pin, err
}

// PutPin uploads a new PIN package for the account.
func (c *Client) PutPin(ctx context.Context, l1, lp1, did, lpin1 []byte, pin PinPackage) error {
	req := pinPackagePutRequest{
		L1:    crypto.Hex(l1),
		LP1:   crypto.Hex(lp1),
		DID:   crypto.Hex(did),
		LPIN1: crypto.Hex(lpin1),
		Pin:   pin,
	}
	return c.doJSON(ctx, "POST", "/account/pin/update", req, nil)
}

// OTPEnable turns on 2-factor authentication for the account.
func (c *Client) OTPEnable(ctx context.Context, l1, lp1 []byte, otpToken string, timeoutSeconds int64) error {
	req := otpEnableRequest{
		L1:       crypto.Hex(l1),
		LP1:      crypto.Hex(lp1),
		OTPToken: otpToken,
		Timeout:  timeoutSeconds,
	}
	return c.doJSON(ctx, "POST", "/account/otp/enable", req, nil)
}

// OTPDisable turns off 2-factor authentication for the account.
func (c *Client) OTPDisable(ctx context.Context, l1, lp1 []byte) error {
	req := otpAuthRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1)}
	return c.doJSON(ctx, "POST", "/account/otp/disable", req, nil)
}

// OTPStatus reports whether 2-factor authentication is enabled for the
// account.
func (c *Client) OTPStatus(ctx context.Context, l1, lp1 []byte) (OTPStatusResult, error) {
	req := otpAuthRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1)}
	var res OTPStatusResult
	err := c.doJSON(ctx, "POST", "/account/otp/status", req, &res)
	return res, err
}

// OTPReset requests a server-side 2-factor authentication reset using a
// reset token. This is rate-limited server-side and must never be
// retried on ErrInvalidOTP.
func (c *Client) OTPReset(ctx context.Context, l1 []byte, token string) error {
	req := otpResetRequest{L1: crypto.Hex(l1), Token: token}
	return c.doJSON(ctx, "POST", "/account/otp/reset", req, nil)
}

// OTPResetCancel cancels a pending 2-factor authentication reset.
func (c *Client) OTPResetCancel(ctx context.Context, l1, lp1 []byte) error {
	req := otpAuthRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1)}
	return c.doJSON(ctx, "POST", "/account/otp/reset/cancel", req, nil)
}

// OTPPending reports, for each L1 in l1s, whether that account has a
// pending 2-factor authentication reset.
func (c *Client) OTPPending(ctx context.Context, l1s [][]byte) ([]bool, error) {
	hexes := make([]string, len(l1s))
	for i, l1 := range l1s {
		hexes[i] = crypto.Hex(l1)
	}
	req := otpPendingRequest{L1s: hexes}
	var res []bool
	err := c.doJSON(ctx, "POST", "/account/otp/pending", req, &res)
	return res, err
}

// WalletCreate creates a git repository on the server suitable for
// holding a wallet. Idempotent: the orchestrator may retry it on a
// network error.
func (c *Client) WalletCreate(ctx context.Context, l1, lp1, syncKey []byte) error {
	req := walletRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1), SyncKey: crypto.Hex(syncKey)}
	return c.doJSON(ctx, "POST", "/account/wallet/create", req, nil)
}

// WalletActivate locks the server wallet repository so it isn't
// automatically garbage collected. Idempotent.
func (c *Client) WalletActivate(ctx context.Context, l1, lp1, syncKey []byte) error {
	req := walletRequest{L1: crypto.Hex(l1), LP1: crypto.Hex(lp1), SyncKey: crypto.Hex(syncKey)}
	return c.doJSON(ctx, "POST", "/account/wallet/activate", req, nil)
}

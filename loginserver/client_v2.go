package loginserver

import (
	"context"
	"encoding/json"

	"github.com/maniacs-ops/airbitz-core/carepackage"
)

// v2LoginResult is the payload V2Login returns on success.
type v2LoginResult struct {
	LoginPackage json.RawMessage `json:"loginPackage"`
}

// V2Login authenticates using the v2 AuthJson envelope, returning the
// account's LoginPackage on success. This is the v2 counterpart of
// GetLoginPackage, sharing its "success proves auth is correct" contract.
func (c *Client) V2Login(ctx context.Context, auth AuthJson) (carepackage.LoginPackage, error) {
	req := v2LoginRequest{Auth: auth}
	var res v2LoginResult
	if err := c.doJSON(ctx, "POST", "/v2/login", req, &res); err != nil {
		return carepackage.LoginPackage{}, err
	}
	pkg, err := carepackage.ParseLoginPackage(res.LoginPackage)
	if err != nil {
		return carepackage.LoginPackage{}, err
	}
	return pkg, nil
}

// V2PasswordSet is the v2 counterpart of ChangePassword.
func (c *Client) V2PasswordSet(ctx context.Context, auth AuthJson, newLP1 string,
	login carepackage.LoginPackage) error {

	loginEnv, err := newLoginPackageEnvelope(login)
	if err != nil {
		return err
	}
	req := v2PasswordSetRequest{
		Auth:         auth,
		NewLP1:       newLP1,
		LoginPackage: loginEnv,
	}
	return c.doJSON(ctx, "POST", "/v2/password", req, nil)
}

// V2RecoverySet is the v2 counterpart of SetRecovery.
func (c *Client) V2RecoverySet(ctx context.Context, auth AuthJson,
	care carepackage.CarePackage, login carepackage.LoginPackage) error {

	careEnv, err := newCarePackageEnvelope(care)
	if err != nil {
		return err
	}
	loginEnv, err := newLoginPackageEnvelope(login)
	if err != nil {
		return err
	}
	req := v2RecoverySetRequest{
		Auth:         auth,
		CarePackage:  careEnv,
		LoginPackage: loginEnv,
	}
	return c.doJSON(ctx, "POST", "/v2/recovery2", req, nil)
}

// V2RecoveryDelete removes recovery-question support from the account.
func (c *Client) V2RecoveryDelete(ctx context.Context, auth AuthJson) error {
	req := v2RecoveryDeleteRequest{Auth: auth}
	return c.doJSON(ctx, "DELETE", "/v2/recovery2", req, nil)
}

// ReposAdd registers a new wallet repository under the account, the v2
// counterpart of WalletCreate.
func (c *Client) ReposAdd(ctx context.Context, auth AuthJson, syncKey string) error {
	req := reposAddRequest{Auth: auth, SyncKey: syncKey}
	return c.doJSON(ctx, "POST", "/v2/repos", req, nil)
}

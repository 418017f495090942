package loginserver

import "github.com/maniacs-ops/airbitz-core/carepackage"

// status codes as returned in every server response's numeric status
// field. The exact values are this module's own numbering — the wire
// protocol only requires that the client and server agree, not that the
// numbers match any particular historical scheme.
const (
	statusOK = 0

	statusAccountAlreadyExists = 1
	statusAccountDoesNotExist  = 2
	statusBadPassword          = 3
	statusNoRecoveryQuestions  = 4
	statusInvalidOTP           = 5
	statusInvalidPinWait       = 6
)

// serverResponse is the structured document every endpoint returns: a
// numeric status field and, on success, an endpoint-specific payload
// carried in Results.
type serverResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`

	PinWait       int    `json:"pinWait,omitempty"`
	OTPResetDate  string `json:"otpResetDate,omitempty"`
	OTPResetToken string `json:"otpResetToken,omitempty"`

	Results rawResults `json:"results,omitempty"`
}

// rawResults defers decoding of the results payload until the caller
// knows which endpoint it came from.
type rawResults []byte

func (r *rawResults) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func (r rawResults) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// createRequest is the body of POST /account/create.
type createRequest struct {
	L1           string                     `json:"l1"`
	LP1          string                     `json:"lp1"`
	CarePackage  carepackageWireEnvelope    `json:"carePackage"`
	LoginPackage carepackageWireEnvelope    `json:"loginPackage"`
	SyncKey      string                     `json:"syncKey"`
}

// carepackageWireEnvelope wraps an already-marshaled CarePackage or
// LoginPackage document so it can be embedded as a JSON value rather than
// re-encoded as a string.
type carepackageWireEnvelope struct {
	raw []byte
}

func newCarePackageEnvelope(pkg carepackage.CarePackage) (carepackageWireEnvelope, error) {
	data, err := carepackage.MarshalCarePackage(pkg)
	if err != nil {
		return carepackageWireEnvelope{}, err
	}
	return carepackageWireEnvelope{raw: data}, nil
}

func newLoginPackageEnvelope(pkg carepackage.LoginPackage) (carepackageWireEnvelope, error) {
	data, err := carepackage.MarshalLoginPackage(pkg)
	if err != nil {
		return carepackageWireEnvelope{}, err
	}
	return carepackageWireEnvelope{raw: data}, nil
}

func (e carepackageWireEnvelope) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return []byte("null"), nil
	}
	return e.raw, nil
}

// activateRequest is the body of POST /account/activate.
type activateRequest struct {
	L1  string `json:"l1"`
	LP1 string `json:"lp1"`
}

// loginPackageGetRequest is the body of POST /account/loginpackage/get.
// Exactly one of LP1 or LRA1 is set, per spec.md §4.6's SignIn and
// CheckRecoveryAnswers flows.
type loginPackageGetRequest struct {
	L1   string `json:"l1"`
	LP1  string `json:"lp1,omitempty"`
	LRA1 string `json:"lra1,omitempty"`
}

// setRecoveryRequest is the body of POST /account/recovery/set.
type setRecoveryRequest struct {
	L1           string                  `json:"l1"`
	LP1          string                  `json:"lp1"`
	LRA1         string                  `json:"lra1"`
	CarePackage  carepackageWireEnvelope `json:"carePackage"`
	LoginPackage carepackageWireEnvelope `json:"loginPackage"`
}

// changePasswordRequest is the body of POST /account/password/update.
// Exactly one of OldLP1 or OldLRA1 proves the caller's prior identity.
type changePasswordRequest struct {
	L1           string                  `json:"l1"`
	OldLP1       string                  `json:"oldLp1,omitempty"`
	OldLRA1      string                  `json:"oldLra1,omitempty"`
	NewLP1       string                  `json:"newLp1"`
	LoginPackage carepackageWireEnvelope `json:"loginPackage"`
}

// pinPackageGetRequest is the body of POST /account/pin/get.
type pinPackageGetRequest struct {
	DID   string `json:"did"`
	LPIN1 string `json:"lpin1"`
}

// PinPackage is the payload PutPin uploads and GetPin returns.
type PinPackage struct {
	Package string `json:"pinPackage"`

	// AutoLogout is how long the server should honor a PIN-derived
	// login before requiring the full password again.
	AutoLogout int64 `json:"ali"`
}

type pinPackagePutRequest struct {
	L1     string `json:"l1"`
	LP1    string `json:"lp1"`
	DID    string `json:"did"`
	LPIN1  string `json:"lpin1"`
	Pin    PinPackage
}

func (p pinPackagePutRequest) MarshalJSON() ([]byte, error) {
	type alias struct {
		L1      string `json:"l1"`
		LP1     string `json:"lp1"`
		DID     string `json:"did"`
		LPIN1   string `json:"lpin1"`
		Package string `json:"pinPackage"`
		ALI     int64  `json:"ali"`
	}
	return jsonMarshal(alias{
		L1:      p.L1,
		LP1:     p.LP1,
		DID:     p.DID,
		LPIN1:   p.LPIN1,
		Package: p.Pin.Package,
		ALI:     p.Pin.AutoLogout,
	})
}

// otpEnableRequest is the body of POST /account/otp/enable.
type otpEnableRequest struct {
	L1       string `json:"l1"`
	LP1      string `json:"lp1"`
	OTPToken string `json:"otpToken"`
	Timeout  int64  `json:"timeout"`
}

// otpAuthRequest is the shared body of the OTP status/disable/reset-cancel
// endpoints, all of which only need L1/LP1.
type otpAuthRequest struct {
	L1  string `json:"l1"`
	LP1 string `json:"lp1"`
}

// OTPStatusResult is the payload OTPStatus returns.
type OTPStatusResult struct {
	On      bool  `json:"on"`
	Timeout int64 `json:"timeout"`
}

type otpResetRequest struct {
	L1    string `json:"l1"`
	Token string `json:"token"`
}

type otpPendingRequest struct {
	L1s []string `json:"l1s"`
}

// walletRequest is the shared body of walletCreate/walletActivate.
type walletRequest struct {
	L1      string `json:"l1"`
	LP1     string `json:"lp1"`
	SyncKey string `json:"syncKey"`
}

// AuthJson is the shared v2 authentication envelope: a resolved user id
// plus whichever auth tokens the operation needs, and an optional OTP
// token.
type AuthJson struct {
	UserID   string `json:"userId"`
	LP1      string `json:"passwordAuth,omitempty"`
	LRA1     string `json:"recoveryAuth,omitempty"`
	OTPToken string `json:"otpToken,omitempty"`
}

type v2LoginRequest struct {
	Auth AuthJson `json:"auth"`
}

type v2PasswordSetRequest struct {
	Auth         AuthJson                `json:"auth"`
	NewLP1       string                  `json:"newPasswordAuth"`
	LoginPackage carepackageWireEnvelope `json:"loginPackage"`
}

type v2RecoverySetRequest struct {
	Auth         AuthJson                `json:"auth"`
	CarePackage  carepackageWireEnvelope `json:"carePackage"`
	LoginPackage carepackageWireEnvelope `json:"loginPackage"`
}

type v2RecoveryDeleteRequest struct {
	Auth AuthJson `json:"auth"`
}

type reposAddRequest struct {
	Auth    AuthJson `json:"auth"`
	SyncKey string   `json:"syncKey"`
}

package loginserver

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountAlreadyExists is returned by Create when the username is
	// already taken.
	ErrAccountAlreadyExists = errors.New("loginserver: account already exists")

	// ErrAccountDoesNotExist is returned when an operation names an
	// account the server has never heard of.
	ErrAccountDoesNotExist = errors.New("loginserver: account does not exist")

	// ErrBadPassword is returned when the server rejects the supplied
	// LP1 or LRA1 auth token. It also covers wrong recovery answers.
	ErrBadPassword = errors.New("loginserver: bad password or answers")

	// ErrNoRecoveryQuestions is returned by GetCarePackage-derived flows
	// when the account has no recovery questions configured.
	ErrNoRecoveryQuestions = errors.New("loginserver: no recovery questions set")

	// ErrJSON is returned when a response body can't be decoded as the
	// expected JSON shape.
	ErrJSON = errors.New("loginserver: malformed response")

	// ErrServer covers transport failures and 5xx responses. It is
	// retryable.
	ErrServer = errors.New("loginserver: server error")

	// ErrURL is returned when the client's configured base URL is
	// invalid.
	ErrURL = errors.New("loginserver: invalid URL")
)

// AuthError carries the extra detail the server attaches to a
// password/auth failure so the caller can distinguish "wrong password"
// from "rate limited" from "needs a fresh OTP token", per spec.md §4.4.
type AuthError struct {
	// PinWait is set on an invalid-PIN-wait response: the number of
	// seconds the caller must wait before retrying.
	PinWait int

	// OTPDate and OTPToken are set on an invalid-OTP response
	// describing a pending server-side OTP reset.
	OTPDate  string
	OTPToken string

	// Err is the underlying sentinel: ErrBadPassword, or one of the
	// OTP/PIN-specific errors below.
	Err error
}

func (e *AuthError) Error() string {
	switch {
	case e.PinWait > 0:
		return fmt.Sprintf("loginserver: rate limited, retry in %ds", e.PinWait)
	case e.OTPToken != "":
		return fmt.Sprintf("loginserver: otp required (reset pending %s)", e.OTPDate)
	default:
		return e.Err.Error()
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidOTP is the sentinel wrapped by an AuthError carrying
	// OTPDate/OTPToken.
	ErrInvalidOTP = errors.New("loginserver: invalid or missing otp token")

	// ErrInvalidPinWait is the sentinel wrapped by an AuthError carrying
	// PinWait.
	ErrInvalidPinWait = errors.New("loginserver: pin rate limited")
)

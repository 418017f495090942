package airbitz

import (
	"errors"

	"github.com/maniacs-ops/airbitz-core/carepackage"
	"github.com/maniacs-ops/airbitz-core/keycache"
	"github.com/maniacs-ops/airbitz-core/loginserver"
)

// ErrorCode names the outcome of an orchestrator operation. Every public
// method returns an error that Code can classify into exactly one of
// these, the taxonomy a wallet front-end switches on. Modeled on
// errorcodes.ErrCode's string-constant style.
type ErrorCode string

const (
	ErrCodeAccountAlreadyExists ErrorCode = "AccountAlreadyExists"
	ErrCodeAccountDoesNotExist  ErrorCode = "AccountDoesNotExist"
	ErrCodeBadPassword          ErrorCode = "BadPassword"
	ErrCodeNoRecoveryQuestions  ErrorCode = "NoRecoveryQuestions"
	ErrCodeInvalidOTP           ErrorCode = "InvalidOTP"
	ErrCodeInvalidPinWait       ErrorCode = "InvalidPinWait"
	ErrCodeParse                ErrorCode = "ParseError"
	ErrCodeJSON                 ErrorCode = "JSONError"
	ErrCodeServer               ErrorCode = "ServerError"
	ErrCodeURL                  ErrorCode = "URLError"
	ErrCodeInternal             ErrorCode = "Error"
)

// Sentinel errors re-exported from the packages that originate them, so a
// caller of this package's public surface never needs to import
// loginserver, keycache or carepackage just to compare errors.
var (
	ErrAccountAlreadyExists = loginserver.ErrAccountAlreadyExists
	ErrAccountDoesNotExist  = loginserver.ErrAccountDoesNotExist
	ErrBadPassword          = keycache.ErrBadPassword
	ErrNoRecoveryQuestions  = keycache.ErrNoRecoveryQuestions
	ErrParse                = carepackage.ErrParse
	ErrJSON                 = loginserver.ErrJSON
	ErrServer               = loginserver.ErrServer
	ErrURL                  = loginserver.ErrURL

	// ErrCorrupt marks local account state that should have decrypted
	// unconditionally but didn't (an L4-keyed envelope). This is never
	// the user's fault, unlike ErrBadPassword.
	ErrCorrupt = keycache.ErrCorrupt

	// ErrInternal is the catch-all for a violated internal invariant —
	// a bug in this module, not a user or network condition.
	ErrInternal = errors.New("airbitz: internal error")
)

// AuthError carries the extra detail a password or recovery-answer
// failure comes back with — a PIN retry wait, or an OTP reset date and
// token — so a caller can distinguish "wrong password" from
// "rate-limited" from "needs 2FA" without out-parameters.
type AuthError = loginserver.AuthError

// Code classifies err into the ErrorCode taxonomy. A nil err yields the
// empty ErrorCode; a non-nil err that matches none of the known sentinels
// maps to ErrCodeInternal.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		switch {
		case errors.Is(authErr.Unwrap(), loginserver.ErrInvalidOTP):
			return ErrCodeInvalidOTP
		case errors.Is(authErr.Unwrap(), loginserver.ErrInvalidPinWait):
			return ErrCodeInvalidPinWait
		default:
			return ErrCodeBadPassword
		}
	}

	switch {
	case errors.Is(err, ErrAccountAlreadyExists):
		return ErrCodeAccountAlreadyExists
	case errors.Is(err, ErrAccountDoesNotExist):
		return ErrCodeAccountDoesNotExist
	case errors.Is(err, ErrBadPassword):
		return ErrCodeBadPassword
	case errors.Is(err, ErrNoRecoveryQuestions):
		return ErrCodeNoRecoveryQuestions
	case errors.Is(err, ErrParse):
		return ErrCodeParse
	case errors.Is(err, ErrJSON):
		return ErrCodeJSON
	case errors.Is(err, ErrServer):
		return ErrCodeServer
	case errors.Is(err, ErrURL):
		return ErrCodeURL
	default:
		return ErrCodeInternal
	}
}

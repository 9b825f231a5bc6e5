package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes carried by auth errors so callers can branch on kind
// without string-matching messages.
const (
	TextCodeInvalidCreds   = "INVALID_CREDENTIALS"
	TextCodeTokenMissing   = "TOKEN_MISSING"
	TextCodeTokenExpired   = "TOKEN_EXPIRED"
	TextCodeTokenInvalid   = "TOKEN_INVALID"
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	TextCodeAccessDenied   = "ACCESS_DENIED"
	TextCodeHashingError   = "HASHING_ERROR"
)

// ErrNoEmptyString is returned when we are asked to hash an empty password.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the hasher-level mismatch error. The
// authentication service folds it into ErrInvalidCredentials before it can
// reach a client.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrInvalidCredentials is returned for an unknown username AND for a wrong
// password. Both cases are deliberately indistinguishable so responses cannot
// be used to enumerate usernames.
var ErrInvalidCredentials = goerrors.New("Invalid username or password.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenMissing is returned when a protected route receives no
// Authorization header at all.
var ErrTokenMissing = goerrors.New("No token was provided.", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeTokenMissing)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = goerrors.New("Session expired.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenInvalid covers a signature that does not verify against the
// subject's current password hash, including tokens minted before a password
// rotation and tokens for accounts that no longer exist.
var ErrTokenInvalid = goerrors.New("Invalid session detected. This incident will be reported.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

// ErrTokenMalformed is returned when the token cannot be parsed at all.
var ErrTokenMalformed = goerrors.New("Invalid session detected. This incident will be reported.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrAccessDenied is returned when a verified token does not authorize the
// requested resource or role.
var ErrAccessDenied = goerrors.New("Access denied.", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode(TextCodeAccessDenied)

// IsTokenExpired reports whether err carries the token-expired text code.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenInvalid reports whether err is a signature or parse failure.
func IsTokenInvalid(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalid) || hasTextCode(err, TextCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

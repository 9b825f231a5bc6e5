package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs and verifies compact HS256 tokens. It holds no signing key
// of its own: the secret is supplied per call because every subject is keyed
// by its current password hash, which must be fetched fresh from storage.
type TokenCodec struct {
	method jwt.SigningMethod
	logger Logger
	// now is swappable for expiry tests
	now func() time.Time
}

// NewTokenCodec creates a codec using HMAC-SHA256.
func NewTokenCodec() *TokenCodec {
	return &TokenCodec{
		method: jwt.SigningMethodHS256,
		logger: defLogger{scope: "AUTH"},
		now:    time.Now,
	}
}

// WithLogger overrides the codec logger.
func (tc *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	if logger != nil {
		tc.logger = logger
	}
	return tc
}

// WithClock overrides the time source used for issued-at and expiry.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		tc.now = now
	}
	return tc
}

// Sign produces a signed token embedding identity plus issued-at and expiry
// timestamps, signed with the subject's secret.
func (tc *TokenCodec) Sign(identity Identity, secret []byte, ttl time.Duration) (string, error) {
	claims := newClaims(identity, tc.now(), ttl)
	return tc.SignClaims(claims, secret)
}

// SignClaims signs prebuilt claims with the given secret.
func (tc *TokenCodec) SignClaims(claims *Claims, secret []byte) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}
	if len(secret) == 0 {
		return "", goerrors.New("signing secret must not be empty", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(tc.method, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// DecodeUnsafe extracts the embedded claims WITHOUT verifying the signature.
// It exists only to discover which subject's secret to verify against; the
// caller must always follow up with Verify. Returns nil on malformed input.
func (tc *TokenCodec) DecodeUnsafe(tokenString string) *Claims {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// Verify parses and validates a token against the subject's current secret.
// It returns ErrTokenExpired past expiry, ErrTokenInvalid when the signature
// does not match (including after a password rotation), and ErrTokenMalformed
// when the token cannot be parsed at all.
func (tc *TokenCodec) Verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec rejected unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(tc.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		tc.logger.Error("token codec could not decode validated claims")
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenTTL is the session token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Service orchestrates credential lookup, hash verification, and token
// issuance. Token validity is a pure function of signature, the subject's
// current stored hash, and the clock; no session state is kept in process.
type Service struct {
	store    CredentialStore
	codec    *TokenCodec
	tokenTTL time.Duration
	logger   Logger
}

// NewService returns an authentication service bound to a credential store.
func NewService(store CredentialStore, codec *TokenCodec, tokenTTL time.Duration) *Service {
	if codec == nil {
		codec = NewTokenCodec()
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		store:    store,
		codec:    codec,
		tokenTTL: tokenTTL,
		logger:   defLogger{scope: "AUTH"},
	}
}

// WithLogger overrides the service logger.
func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Codec exposes the token codec so collaborators (the recovery flow) can
// share the same signing primitive.
func (s *Service) Codec() *TokenCodec {
	return s.codec
}

// VerifiedAccount pairs a verified identity with the signing secret current
// at verification time. The secret stays unexported; it only ever feeds
// IssueToken.
type VerifiedAccount struct {
	Identity Identity
	secret   []byte
}

// VerifyAccount checks username/password against the store. An unknown
// username and a wrong password both return ErrInvalidCredentials with the
// exact same message so the response cannot be used to probe for accounts.
func (s *Service) VerifyAccount(ctx context.Context, username, password string) (*VerifiedAccount, error) {
	row, err := s.store.LoginRow(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("verify account lookup failed", "username", username, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account credentials")
	}

	if err := ComparePasswordAndHash(password, row.PasswordHash); err != nil {
		if err != ErrMismatchedHashAndPassword {
			// corrupt stored hash, not a plain mismatch; still reduced to the
			// same client-facing error
			s.logger.Error("verify account hash comparison failed", "username", username, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	return &VerifiedAccount{
		Identity: Identity{
			Username: row.Username,
			Email:    row.Email,
			Role:     row.Role,
		},
		secret: []byte(row.PasswordHash),
	}, nil
}

// IssueToken signs the verified identity into a bearer token, keyed by the
// subject's current password hash and bounded by the configured TTL.
func (s *Service) IssueToken(account *VerifiedAccount) (string, error) {
	if account == nil {
		return "", goerrors.New("verified account must not be nil", goerrors.CategoryInternal)
	}
	return s.codec.Sign(account.Identity, account.secret, s.tokenTTL)
}

// VerifyToken validates a bearer token end to end: read the claimed subject
// without trusting the signature, fetch that subject's current hash, then
// verify the signature against it. A missing account invalidates the token,
// which also covers accounts deleted after issuance.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	unsafe := s.codec.DecodeUnsafe(tokenString)
	if unsafe == nil || unsafe.Username == "" {
		return nil, ErrTokenInvalid
	}

	row, err := s.store.LoginRow(ctx, unsafe.Username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrTokenInvalid
		}
		s.logger.Error("verify token lookup failed", "username", unsafe.Username, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account credentials")
	}

	claims, err := s.codec.Verify(tokenString, []byte(row.PasswordHash))
	if err != nil {
		return nil, err
	}

	return claims, nil
}

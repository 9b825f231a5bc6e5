// Package recovery implements the forgot/reset password flow. Reset tokens
// are signed with the credential hash current at issuance, so they expire,
// become single use through rotation, and never touch a session table.
package recovery

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/mailer"
	"github.com/monarq/account-api/internal/register"
	"github.com/monarq/account-api/internal/store"
)

// ForgotPasswordMessage is returned for every non-error forgot-password
// request, whether or not the email has an account. Keeping the two paths
// byte-identical is what makes the endpoint enumeration safe.
const ForgotPasswordMessage = "Check your email for a password reset link."

// ResetPasswordMessage confirms a completed reset.
const ResetPasswordMessage = "Your password has been updated. Please sign in again."

// DefaultResetTTL bounds how long an emailed reset link stays usable.
const DefaultResetTTL = time.Hour

// ErrResetTokenInvalid covers undecodable reset tokens and signatures that no
// longer match the current hash, which includes links already consumed by a
// successful reset.
var ErrResetTokenInvalid = goerrors.New("Invalid token.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("RESET_TOKEN_INVALID")

// ErrResetTokenExpired is returned when the reset link is past its expiry.
var ErrResetTokenExpired = goerrors.New("This password reset request has expired. Please try again.", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("RESET_TOKEN_EXPIRED")

// AccountSource is the slice of the account repository the flow needs.
type AccountSource interface {
	GetByEmail(ctx context.Context, email string) (*store.Account, error)
}

// CredentialSource reads and rotates credential hashes.
type CredentialSource interface {
	GetByUsername(ctx context.Context, username string) (*store.Credential, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}

// Service runs the two recovery operations.
type Service struct {
	accounts    AccountSource
	credentials CredentialSource
	mailer      mailer.Mailer
	codec       *auth.TokenCodec
	frontendURL string
	resetTTL    time.Duration
	hashCost    int
	logger      auth.Logger
}

// NewService wires the recovery flow. frontendURL is the base the emailed
// reset link points at.
func NewService(accounts AccountSource, credentials CredentialSource, m mailer.Mailer, frontendURL string) *Service {
	return &Service{
		accounts:    accounts,
		credentials: credentials,
		mailer:      m,
		codec:       auth.NewTokenCodec(),
		frontendURL: frontendURL,
		resetTTL:    DefaultResetTTL,
		hashCost:    auth.DefaultCost,
		logger:      auth.NewDefaultLogger("RECOVERY"),
	}
}

// WithCodec replaces the token codec.
func (s *Service) WithCodec(codec *auth.TokenCodec) *Service {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// WithResetTTL overrides the reset link lifetime.
func (s *Service) WithResetTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.resetTTL = ttl
	}
	return s
}

// WithHashCost overrides the bcrypt cost used for replacement passwords.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// WithLogger replaces the service logger.
func (s *Service) WithLogger(logger auth.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ForgotPassword mails a reset link for the account behind email. An unknown
// email still returns nil so the caller answers with the same generic
// success; only malformed input and real faults become errors.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := validation.Validate(email, register.EmailRules...); err != nil {
		return goerrors.New(err.Error(), goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("forgot password for unknown email", "email", email)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	credential, err := s.credentials.GetByUsername(ctx, account.Username)
	if err != nil {
		// an account without a credential row is a data integrity fault,
		// never an expected state
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	token, err := s.codec.Sign(
		auth.Identity{Username: account.Username},
		[]byte(credential.PasswordHash),
		s.resetTTL,
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign reset token")
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(ctx, account.Email, account.Username, resetURL); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send reset email")
	}

	s.logger.Info("password reset link sent", "username", account.Username)

	return nil
}

// ResetPassword verifies the emailed token against the subject's current hash
// and rotates the credential. The rotation itself is what invalidates the
// used link and every other outstanding token for the subject.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.Validate(newPassword, register.PasswordRules...); err != nil {
		return goerrors.New(err.Error(), goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	claims := s.codec.DecodeUnsafe(token)
	if claims == nil || claims.Username == "" {
		return ErrResetTokenInvalid
	}

	credential, err := s.credentials.GetByUsername(ctx, claims.Username)
	if err != nil {
		// a decodable token naming a subject we cannot load is either a
		// deleted account or a storage fault; the token alone proves
		// nothing, so this stays a server error
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	if _, err := s.codec.Verify(token, []byte(credential.PasswordHash)); err != nil {
		if auth.IsTokenExpired(err) {
			return ErrResetTokenExpired
		}
		return ErrResetTokenInvalid
	}

	hash, err := auth.HashPasswordCost(newPassword, s.hashCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := s.credentials.UpdatePasswordHash(ctx, claims.Username, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update credential")
	}

	s.logger.Info("password rotated", "username", claims.Username)

	return nil
}

// Package register creates new accounts: field validation, duplicate checks,
// and the transactional account + credential insert.
package register

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/store"
)

// ErrUsernameTaken is returned when the requested username already has an
// account.
var ErrUsernameTaken = goerrors.New("Username already exists.", goerrors.CategoryConflict).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("USERNAME_TAKEN")

// ErrEmailTaken is returned when the requested email already has an account.
var ErrEmailTaken = goerrors.New("Email already exists.", goerrors.CategoryConflict).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("EMAIL_TAKEN")

// Payload carries the registration input.
type Payload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks each field against the account constraints. Fields are
// validated one at a time so the client gets the rule's exact message rather
// than an ozzo field map.
func (p Payload) Validate() error {
	checks := []struct {
		value string
		rules []validation.Rule
	}{
		{p.Username, UsernameRules},
		{p.Email, EmailRules},
		{p.Password, PasswordRules},
	}

	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return goerrors.New(err.Error(), goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest)
		}
	}

	return nil
}

// Service registers accounts against the store.
type Service struct {
	repo     store.Manager
	hashCost int
	logger   auth.Logger
}

// NewService builds a registration service with the default bcrypt cost.
func NewService(repo store.Manager) *Service {
	return &Service{
		repo:     repo,
		hashCost: auth.DefaultCost,
		logger:   auth.NewDefaultLogger("REGISTER"),
	}
}

// WithLogger replaces the service logger.
func (s *Service) WithLogger(logger auth.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithHashCost overrides the bcrypt cost used for new credentials.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// Register validates the payload, rejects duplicates, and creates the account
// plus its credential in a single transaction. New accounts always get the
// user role.
func (s *Service) Register(ctx context.Context, p Payload) (*store.Account, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, p); err != nil {
		return nil, err
	}

	hash, err := auth.HashPasswordCost(p.Password, s.hashCost)
	if err != nil {
		s.logger.Error("register: failed to hash password", "username", p.Username, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account := &store.Account{
		Username: p.Username,
		Email:    p.Email,
		Role:     auth.RoleUser,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if account, err = s.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
		}

		credential := &store.Credential{
			Username:     account.Username,
			PasswordHash: hash,
		}

		if _, err = s.repo.Credentials().CreateTx(ctx, tx, credential); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create credential")
		}

		return nil
	})

	if err != nil {
		s.logger.Error("register: transaction failed", "username", p.Username, "error", err)

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	s.logger.Info("register: account created", "username", account.Username)

	return account, nil
}

// checkAvailable rejects usernames and emails that already have an account.
// A unique constraint in the store still backs this up inside the insert
// transaction.
func (s *Service) checkAvailable(ctx context.Context, p Payload) error {
	if _, err := s.repo.Accounts().GetByUsername(ctx, p.Username); err == nil {
		return ErrUsernameTaken
	} else if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
	}

	if _, err := s.repo.Accounts().GetByEmail(ctx, p.Email); err == nil {
		return ErrEmailTaken
	} else if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}

	return nil
}

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monarq/account-api/internal/auth"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) LoginRow(ctx context.Context, username string) (*auth.LoginRow, error) {
	args := m.Called(ctx, username)
	if row := args.Get(0); row != nil {
		return row.(*auth.LoginRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func storedRow(t *testing.T, password string) *auth.LoginRow {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.LoginRow{
		Username:     "frodobaggins",
		Email:        "frodo.baggins@gmail.com",
		Role:         auth.RoleUser,
		PasswordHash: hash,
	}
}

func TestVerifyAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return identity", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("LoginRow", mock.Anything, "frodobaggins").
			Return(storedRow(t, "correctPassword1"), nil)

		svc := auth.NewService(store, nil, time.Hour)

		account, err := svc.VerifyAccount(ctx, "frodobaggins", "correctPassword1")
		require.NoError(t, err)

		assert.Equal(t, "frodobaggins", account.Identity.Username)
		assert.Equal(t, "frodo.baggins@gmail.com", account.Identity.Email)
		assert.Equal(t, auth.RoleUser, account.Identity.Role)

		store.AssertExpectations(t)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("LoginRow", mock.Anything, "nosuchuser1").
			Return(nil, repository.NewRecordNotFound())
		store.On("LoginRow", mock.Anything, "frodobaggins").
			Return(storedRow(t, "correctPassword1"), nil)

		svc := auth.NewService(store, nil, time.Hour)

		_, unknownErr := svc.VerifyAccount(ctx, "nosuchuser1", "whatever123")
		_, wrongPassErr := svc.VerifyAccount(ctx, "frodobaggins", "wrongPassword1")

		assert.Equal(t, auth.ErrInvalidCredentials, unknownErr)
		assert.Equal(t, auth.ErrInvalidCredentials, wrongPassErr)
		assert.EqualError(t, unknownErr, wrongPassErr.Error())
	})

	t.Run("store failure is not a credential error", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("LoginRow", mock.Anything, "frodobaggins").
			Return(nil, assert.AnError)

		svc := auth.NewService(store, nil, time.Hour)

		_, err := svc.VerifyAccount(ctx, "frodobaggins", "correctPassword1")
		require.Error(t, err)
		assert.NotEqual(t, auth.ErrInvalidCredentials, err)
	})
}

func TestIssueAndVerifyToken(t *testing.T) {
	ctx := context.Background()

	row := storedRow(t, "correctPassword1")
	store := &MockCredentialStore{}
	store.On("LoginRow", mock.Anything, "frodobaggins").Return(row, nil)

	svc := auth.NewService(store, nil, time.Hour)

	account, err := svc.VerifyAccount(ctx, "frodobaggins", "correctPassword1")
	require.NoError(t, err)

	token, err := svc.IssueToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, account.Identity, claims.Identity())
}

func TestVerifyTokenAfterPasswordRotation(t *testing.T) {
	ctx := context.Background()

	row := storedRow(t, "originalPassword1")
	store := &MockCredentialStore{}
	store.On("LoginRow", mock.Anything, "frodobaggins").Return(row, nil)

	svc := auth.NewService(store, nil, time.Hour)

	account, err := svc.VerifyAccount(ctx, "frodobaggins", "originalPassword1")
	require.NoError(t, err)

	token, err := svc.IssueToken(account)
	require.NoError(t, err)

	// rotate the stored hash; the outstanding token must die with it
	newHash, err := auth.HashPassword("rotatedPassword1")
	require.NoError(t, err)
	row.PasswordHash = newHash

	_, err = svc.VerifyToken(ctx, token)
	assert.Equal(t, auth.ErrTokenInvalid, err)
}

func TestVerifyTokenEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		svc := auth.NewService(&MockCredentialStore{}, nil, time.Hour)

		_, err := svc.VerifyToken(ctx, "garbage")
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("token for deleted account", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("LoginRow", mock.Anything, "frodobaggins").
			Return(nil, repository.NewRecordNotFound())

		svc := auth.NewService(store, nil, time.Hour)

		// token signed while the account still existed
		codec := auth.NewTokenCodec()
		token, err := codec.Sign(auth.Identity{Username: "frodobaggins"}, []byte("old-hash"), time.Hour)
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, token)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("expired token", func(t *testing.T) {
		row := storedRow(t, "correctPassword1")
		store := &MockCredentialStore{}
		store.On("LoginRow", mock.Anything, "frodobaggins").Return(row, nil)

		past := time.Now().Add(-2 * time.Hour)
		signer := auth.NewTokenCodec().WithClock(func() time.Time { return past })
		token, err := signer.Sign(auth.Identity{Username: "frodobaggins"}, []byte(row.PasswordHash), time.Hour)
		require.NoError(t, err)

		svc := auth.NewService(store, nil, time.Hour)

		_, err = svc.VerifyToken(ctx, token)
		assert.Equal(t, auth.ErrTokenExpired, err)
	})
}

package register_test

import (
	"context"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/database"
	"github.com/monarq/account-api/internal/register"
	"github.com/monarq/account-api/internal/store"
)

var dbSeq int

func setupManager(t *testing.T) store.Manager {
	t.Helper()

	dbSeq++
	dsn := fmt.Sprintf("file:registertest%d?mode=memory&cache=shared", dbSeq)

	db, err := database.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.CreateSchema(context.Background(), db))

	return store.NewManager(db)
}

func validPayload() register.Payload {
	return register.Payload{
		Username: "frodobaggins",
		Email:    "frodo.baggins@gmail.com",
		Password: "longEnough1",
	}
}

func TestPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*register.Payload)
		wantMsg string
	}{
		{
			name:   "valid payload",
			mutate: func(p *register.Payload) {},
		},
		{
			name:    "missing username",
			mutate:  func(p *register.Payload) { p.Username = "" },
			wantMsg: "Credential information was not provided or was incomplete.",
		},
		{
			name:    "username too short",
			mutate:  func(p *register.Payload) { p.Username = "abc" },
			wantMsg: "Username must be 6 to 16 alphanumeric characters.",
		},
		{
			name:    "username with symbols",
			mutate:  func(p *register.Payload) { p.Username = "frodo_baggins" },
			wantMsg: "Username must be 6 to 16 alphanumeric characters.",
		},
		{
			name:    "non gmail address",
			mutate:  func(p *register.Payload) { p.Email = "frodo@example.com" },
			wantMsg: "Email must be a valid Gmail address.",
		},
		{
			name:    "googlemail domain is accepted",
			mutate:  func(p *register.Payload) { p.Email = "frodo.baggins@googlemail.com" },
		},
		{
			name:    "password too short",
			mutate:  func(p *register.Payload) { p.Password = "short1" },
			wantMsg: "Password must be 8 to 32 characters long.",
		},
		{
			name:    "password too long",
			mutate:  func(p *register.Payload) { p.Password = "thisPasswordIsWayTooLongToBeAccepted1" },
			wantMsg: "Password must be 8 to 32 characters long.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			err := payload.Validate()

			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.EqualError(t, err, tt.wantMsg)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
		})
	}
}

func TestRegisterCreatesAccountAndCredential(t *testing.T) {
	m := setupManager(t)
	svc := register.NewService(m).WithHashCost(4)
	ctx := context.Background()

	account, err := svc.Register(ctx, validPayload())
	require.NoError(t, err)

	assert.Equal(t, "frodobaggins", account.Username)
	assert.Equal(t, auth.RoleUser, account.Role)
	assert.NotZero(t, account.ID)

	credential, err := m.Credentials().GetByUsername(ctx, "frodobaggins")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePasswordAndHash("longEnough1", credential.PasswordHash))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m := setupManager(t)
	svc := register.NewService(m).WithHashCost(4)
	ctx := context.Background()

	_, err := svc.Register(ctx, validPayload())
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		payload := validPayload()
		payload.Email = "other.address@gmail.com"

		_, err := svc.Register(ctx, payload)
		assert.Equal(t, register.ErrUsernameTaken, err)
		assert.EqualError(t, err, "Username already exists.")
	})

	t.Run("duplicate email", func(t *testing.T) {
		payload := validPayload()
		payload.Username = "samwisegamgee"

		_, err := svc.Register(ctx, payload)
		assert.Equal(t, register.ErrEmailTaken, err)
		assert.EqualError(t, err, "Email already exists.")
	})
}

func TestRegisterShortPasswordLeavesStoreUntouched(t *testing.T) {
	m := setupManager(t)
	svc := register.NewService(m).WithHashCost(4)
	ctx := context.Background()

	payload := validPayload()
	payload.Password = "short1"

	_, err := svc.Register(ctx, payload)
	require.Error(t, err)

	_, total, err := m.Accounts().ListPage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

package authware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/middleware/authware"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if claims := args.Get(0); claims != nil {
		return claims.(*auth.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

func claimsFor(username, role string) *auth.Claims {
	return &auth.Claims{
		Username: username,
		Email:    username + "@gmail.com",
		Role:     role,
	}
}

func testApp(verifier authware.TokenVerifier) *fiber.App {
	app := fiber.New()

	guard := authware.Config{Verifier: verifier}

	app.Get("/user/:username", authware.RequireUsername(guard), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"username": authware.UsernameFromCtx(c),
			"role":     authware.ClaimsFromCtx(c).Role,
		})
	})

	app.Get("/admin/users", authware.RequireAdmin(guard), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}

	res, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	payload := map[string]any{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &payload)
	}

	return res, payload
}

func TestRequireUsername(t *testing.T) {
	t.Run("missing header is a bad request", func(t *testing.T) {
		app := testApp(&MockVerifier{})

		res, payload := doRequest(t, app, "/user/frodobaggins", "")

		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "No token was provided.", payload["message"])
	})

	t.Run("header without bearer scheme is a bad request", func(t *testing.T) {
		app := testApp(&MockVerifier{})

		res, payload := doRequest(t, app, "/user/frodobaggins", "Basic abc123")

		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "No token was provided.", payload["message"])
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "bad-token").
			Return(nil, auth.ErrTokenInvalid)

		app := testApp(verifier)

		res, payload := doRequest(t, app, "/user/frodobaggins", "Bearer bad-token")

		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Invalid session detected. This incident will be reported.", payload["message"])
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "stale-token").
			Return(nil, auth.ErrTokenExpired)

		app := testApp(verifier)

		res, payload := doRequest(t, app, "/user/frodobaggins", "Bearer stale-token")

		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Session expired.", payload["message"])
	})

	t.Run("someone else's resource is forbidden", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "good-token").
			Return(claimsFor("frodobaggins", auth.RoleUser), nil)

		app := testApp(verifier)

		res, payload := doRequest(t, app, "/user/samwisegamgee", "Bearer good-token")

		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
		assert.Equal(t, "Access denied.", payload["message"])
	})

	t.Run("own resource passes with canonical casing", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "good-token").
			Return(claimsFor("frodobaggins", auth.RoleUser), nil)

		app := testApp(verifier)

		// the route param uses different casing than the stored username
		res, payload := doRequest(t, app, "/user/FrodoBaggins", "Bearer good-token")

		assert.Equal(t, fiber.StatusOK, res.StatusCode)
		assert.Equal(t, "frodobaggins", payload["username"])
		assert.Equal(t, auth.RoleUser, payload["role"])
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("non-admin role is forbidden", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "user-token").
			Return(claimsFor("frodobaggins", auth.RoleUser), nil)

		app := testApp(verifier)

		res, payload := doRequest(t, app, "/admin/users", "Bearer user-token")

		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
		assert.Equal(t, "Access denied.", payload["message"])
	})

	t.Run("admin role passes", func(t *testing.T) {
		verifier := &MockVerifier{}
		verifier.On("VerifyToken", mock.Anything, "admin-token").
			Return(claimsFor("gandalfthegrey", auth.RoleAdmin), nil)

		app := testApp(verifier)

		res, _ := doRequest(t, app, "/admin/users", "Bearer admin-token")

		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})
}

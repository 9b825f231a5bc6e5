package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/middleware/authware"
	"github.com/monarq/account-api/internal/posts"
	"github.com/monarq/account-api/internal/recovery"
	"github.com/monarq/account-api/internal/register"
	"github.com/monarq/account-api/internal/response"
)

// MsgIncompleteCredentials is returned when a credential-bearing request body
// cannot be parsed or omits required fields.
const MsgIncompleteCredentials = "Credential information was not provided or was incomplete."

var errIncompleteCredentials = goerrors.New(MsgIncompleteCredentials, goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

type authorizePayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyTokenPayload struct {
	Token string `json:"token"`
}

type forgotPasswordPayload struct {
	Email string `json:"email"`
}

type resetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// accountView is the client-facing projection of an account row.
type accountView struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return response.OK(c, "Ok.", nil)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	payload := register.Payload{}
	if err := c.BodyParser(&payload); err != nil {
		return response.Error(c, errIncompleteCredentials)
	}

	account, err := s.register.Register(c.UserContext(), payload)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, "Registration successful.", accountView{
		Username:  account.Username,
		Email:     account.Email,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	})
}

func (s *Server) handleAuthorize(c *fiber.Ctx) error {
	payload := authorizePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return response.Error(c, errIncompleteCredentials)
	}

	if payload.Username == "" || payload.Password == "" {
		return response.Error(c, errIncompleteCredentials)
	}

	account, err := s.auth.VerifyAccount(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := s.auth.IssueToken(account)
	if err != nil {
		s.logger.Error("token issuance failed", "username", account.Identity.Username, "error", err)
		return response.Error(c, err)
	}

	return response.OK(c, "Authorized.", fiber.Map{
		"token": token,
		"user":  account.Identity,
	})
}

func (s *Server) handleVerifyToken(c *fiber.Ctx) error {
	payload := verifyTokenPayload{}
	// the token may arrive in the body or as a bearer header
	_ = c.BodyParser(&payload)
	if payload.Token == "" {
		payload.Token = bearerFromHeader(c)
	}

	if payload.Token == "" {
		return response.Error(c, auth.ErrTokenMissing)
	}

	claims, err := s.auth.VerifyToken(c.UserContext(), payload.Token)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, "Token is valid.", fiber.Map{
		"user":      claims.Identity(),
		"expiresAt": claims.Expires(),
	})
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	username := authware.UsernameFromCtx(c)

	account, err := s.repo.Accounts().GetByUsername(c.UserContext(), username)
	if err != nil {
		// the token just verified against this subject's credential, so a
		// missing account row is an integrity fault, not a 404
		s.logger.Error("profile lookup failed after verified token",
			"username", username, "error", err)
		return response.Error(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account"))
	}

	return response.OK(c, "Ok.", accountView{
		Username:  account.Username,
		Email:     account.Email,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	})
}

func (s *Server) handleForgotPassword(c *fiber.Ctx) error {
	payload := forgotPasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return response.Error(c, errIncompleteCredentials)
	}

	if err := s.recovery.ForgotPassword(c.UserContext(), payload.Email); err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, recovery.ForgotPasswordMessage, nil)
}

func (s *Server) handleResetPassword(c *fiber.Ctx) error {
	payload := resetPasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return response.Error(c, errIncompleteCredentials)
	}

	if err := s.recovery.ResetPassword(c.UserContext(), payload.Token, payload.Password); err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, recovery.ResetPasswordMessage, nil)
}

func (s *Server) handlePosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("itemPerPage", posts.DefaultItemPerPage)

	listing, err := s.posts.List(c.UserContext(), page, perPage)
	if err != nil {
		return response.Error(c, err)
	}

	return response.OK(c, "Ok.", listing)
}

func (s *Server) handleAdminUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("itemPerPage", posts.DefaultItemPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = posts.DefaultItemPerPage
	}
	if perPage > posts.MaxItemPerPage {
		perPage = posts.MaxItemPerPage
	}

	records, total, err := s.repo.Accounts().ListPage(c.UserContext(), page, perPage)
	if err != nil {
		s.logger.Error("account listing failed", "page", page, "error", err)
		return response.Error(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list accounts"))
	}

	items := make([]accountView, 0, len(records))
	for _, record := range records {
		items = append(items, accountView{
			Username:  record.Username,
			Email:     record.Email,
			Role:      record.Role,
			CreatedAt: record.CreatedAt,
		})
	}

	return response.OK(c, "Ok.", fiber.Map{
		"items": items,
		"meta":  posts.NewMeta(page, perPage, total),
	})
}

func bearerFromHeader(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	const scheme = "Bearer "
	if len(header) > len(scheme) && header[:len(scheme)] == scheme {
		return header[len(scheme):]
	}
	return ""
}

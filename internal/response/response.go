// Package response implements the API's uniform envelope: every reply is
// {message, data?} and the status code derives from the error's category when
// no explicit code is set.
package response

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ServerErrorMessage is the only message clients ever see for internal
// faults; the real cause stays in the server logs.
const ServerErrorMessage = "Unexpected server error has occurred."

// Envelope is the uniform response shape.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes the envelope with an explicit status code.
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Message: message, Data: data})
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusOK, message, data)
}

// Error reduces err to its safe client-facing form. Categorized errors keep
// their message and code; anything else is a server fault and collapses to
// the generic 500 message. Callers are expected to have logged the full
// error before reducing it here.
func Error(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, ServerErrorMessage).
			WithCode(goerrors.CodeInternal)
	}

	status := statusFor(richErr)
	message := richErr.Message
	if status >= fiber.StatusInternalServerError {
		message = ServerErrorMessage
	}

	return JSON(c, status, message, nil)
}

// statusFor derives the HTTP status: explicit code first, category second,
// 500 otherwise.
func statusFor(err *goerrors.Error) int {
	if err.Code != 0 {
		return err.Code
	}

	switch err.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryConflict:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

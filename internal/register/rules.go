package register

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Account field constraints. The email pattern mirrors what the client
// enforces: a gmail.com or googlemail.com address with at least six
// characters before the @, optionally dot-separated.
var (
	emailPattern    = regexp.MustCompile(`^[a-z0-9](\.?[a-z0-9]){5,}@g(oogle)?mail\.com$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,16}$`)
)

var (
	// EmailRules validates the account email address.
	EmailRules = []validation.Rule{
		validation.Required.Error("Credential information was not provided or was incomplete."),
		validation.Match(emailPattern).Error("Email must be a valid Gmail address."),
	}

	// UsernameRules validates the account username.
	UsernameRules = []validation.Rule{
		validation.Required.Error("Credential information was not provided or was incomplete."),
		validation.Match(usernamePattern).Error("Username must be 6 to 16 alphanumeric characters."),
	}

	// PasswordRules validates the plaintext password before hashing.
	PasswordRules = []validation.Rule{
		validation.Required.Error("Credential information was not provided or was incomplete."),
		validation.Length(8, 32).Error("Password must be 8 to 32 characters long."),
	}
)

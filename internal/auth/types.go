package auth

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the auth packages need. Arguments
// after the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the verified facts about a subject that get embedded in a
// session token.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CredentialStore is the slice of the persistence layer the authentication
// service needs: the joined account + credential row for a username.
type CredentialStore interface {
	LoginRow(ctx context.Context, username string) (*LoginRow, error)
}

// LoginRow is the joined users/credentials projection used during
// verification. PasswordHash is both the bcrypt hash to compare against and
// the subject's current token-signing secret.
type LoginRow struct {
	Username     string
	Email        string
	Role         string
	PasswordHash string
}

// NewDefaultLogger returns the stdout fallback logger used when no real
// logger is injected. The scope string prefixes every line.
func NewDefaultLogger(scope string) Logger {
	return defLogger{scope: scope}
}

type defLogger struct {
	scope string
}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }

func (d defLogger) print(level, msg string, args []any) {
	scope := d.scope
	if scope == "" {
		scope = "AUTH"
	}
	if len(args) == 0 {
		fmt.Printf("[%s] %s %s\n", level, scope, msg)
		return
	}
	fmt.Printf("[%s] %s %s %v\n", level, scope, msg, args)
}

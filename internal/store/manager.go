package store

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Manager exposes all repositories plus scoped transaction handling. The
// underlying *bun.DB pool is injected once at startup and owned here; every
// query acquires and releases a pooled connection per call.
type Manager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	Credentials() Credentials
	Posts() Posts
}

type mngr struct {
	db          *bun.DB
	accounts    Accounts
	credentials Credentials
	posts       Posts
}

// NewManager wires the repositories over a shared pool.
func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:          db,
		accounts:    NewAccountsRepository(db),
		credentials: NewCredentialsRepository(db),
		posts:       NewPostsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.credentials == nil {
		return errors.New("repository credentials should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) Credentials() Credentials {
	return m.credentials
}

func (m mngr) Posts() Posts {
	return m.posts
}

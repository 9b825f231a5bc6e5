package store

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/monarq/account-api/internal/auth"
)

// Credentials exposes credential reads, the joined login projection, and the
// rotate-hash write used by password reset.
type Credentials interface {
	repository.Repository[*Credential]

	GetByUsername(ctx context.Context, username string) (*Credential, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Credential, error)
	LoginRow(ctx context.Context, username string) (*auth.LoginRow, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
	UpdatePasswordHashTx(ctx context.Context, tx bun.IDB, username, passwordHash string) error
}

type credentials struct {
	repository.Repository[*Credential]
	db *bun.DB
}

var _ Credentials = (*credentials)(nil)
var _ auth.CredentialStore = (*credentials)(nil)

// NewCredentialsRepository builds the credentials repository.
func NewCredentialsRepository(db *bun.DB) Credentials {
	repo := repository.NewRepository[*Credential](db, repository.ModelHandlers[*Credential]{
		NewRecord: func() *Credential { return &Credential{} },
		GetID: func(c *Credential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Credential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &credentials{
		Repository: repo,
		db:         db,
	}
}

func (c *credentials) Create(ctx context.Context, record *Credential, criteria ...repository.InsertCriteria) (*Credential, error) {
	return c.CreateTx(ctx, c.db, record, criteria...)
}

func (c *credentials) CreateTx(ctx context.Context, tx bun.IDB, record *Credential, criteria ...repository.InsertCriteria) (*Credential, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return c.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (c *credentials) GetByUsername(ctx context.Context, username string) (*Credential, error) {
	return c.GetByUsernameTx(ctx, c.db, username)
}

func (c *credentials) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Credential, error) {
	record := &Credential{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"username": username})
		}
		return nil, err
	}

	return record, nil
}

// LoginRow fetches the joined account + credential projection used by the
// authentication service. Only bound parameters reach the WHERE clause.
func (c *credentials) LoginRow(ctx context.Context, username string) (*auth.LoginRow, error) {
	row := &auth.LoginRow{}
	err := c.db.NewSelect().
		ColumnExpr("cred.username AS username").
		ColumnExpr("cred.password_hash AS password_hash").
		ColumnExpr("usr.email AS email").
		ColumnExpr("usr.role AS role").
		TableExpr("credentials AS cred").
		Join("JOIN users AS usr ON usr.username = cred.username").
		Where("cred.username = ?", username).
		Limit(1).
		Scan(ctx, &row.Username, &row.PasswordHash, &row.Email, &row.Role)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"username": username})
		}
		return nil, err
	}

	return row, nil
}

func (c *credentials) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	return c.UpdatePasswordHashTx(ctx, c.db, username, passwordHash)
}

// UpdatePasswordHashTx rotates the stored hash. This single UPDATE is the
// serialization point for concurrent resets; zero affected rows means the
// credential row vanished and is reported as not found.
func (c *credentials) UpdatePasswordHashTx(ctx context.Context, tx bun.IDB, username, passwordHash string) error {
	res, err := tx.NewUpdate().
		Model((*Credential)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.username = ?", username).
		Exec(ctx)

	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"username": username})
	}

	return nil
}

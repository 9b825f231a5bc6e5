// Package database owns the lifecycle of the relational store: an explicit
// connection pool opened at startup and the minimal schema bootstrap.
package database

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/monarq/account-api/internal/store"
)

// Connect opens the pooled database handle for the given DSN.
func Connect(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open database")
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the users, credentials, and posts tables when absent.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*store.Account)(nil),
		(*store.Credential)(nil),
		(*store.Post)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create schema")
		}
	}

	return nil
}

// Package storage opens the client's local SQLite database and brings its
// schema up to date.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/afterlife/internal/client/migrations"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/journal"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/keys"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/afterlife/internal/dbx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Keys     keys.Repository
	Journal  journal.Repository
	Metadata metadata.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens dsn, migrates it and wires the repositories.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return bind(db, db), nil
}

func bind(db *sql.DB, q dbx.DBTX) *Repositories {
	return &Repositories{
		DB:       db,
		Keys:     keys.NewSQLiteRepository(q),
		Journal:  journal.NewSQLiteRepository(q),
		Metadata: metadata.NewSQLiteRepository(q),
	}
}

// Tx runs fn with repositories bound to a single transaction.
func (r *Repositories) Tx(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, q dbx.DBTX) error {
		return fn(ctx, bind(r.DB, q))
	})
}

// ForgetKey deletes the vault key for addr and, if it was the account
// remembered for the next connect, that setting too.
func (r *Repositories) ForgetKey(ctx context.Context, addr common.Address) error {
	return r.Tx(ctx, func(ctx context.Context, tx *Repositories) error {
		if err := tx.Keys.Delete(ctx, addr); err != nil {
			return err
		}
		last, err := tx.Metadata.Get(ctx, metadata.KeyVaultAccount)
		if err != nil {
			return err
		}
		if last == addr.Hex() {
			return tx.Metadata.Delete(ctx, metadata.KeyVaultAccount)
		}
		return nil
	})
}

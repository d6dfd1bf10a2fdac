package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	apperr "github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/dmitrijs2005/afterlife/internal/dbx"
	"github.com/ethereum/go-ethereum/common"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func addrKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func (r *SQLiteRepository) Save(ctx context.Context, k *models.StoredKey) error {
	created := k.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO keys (address, label, salt, verifier, nonce, ciphertext, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			label = excluded.label,
			salt = excluded.salt,
			verifier = excluded.verifier,
			nonce = excluded.nonce,
			ciphertext = excluded.ciphertext
	`, addrKey(k.Address), k.Label, k.Salt, k.Verifier, k.Nonce, k.Ciphertext, created.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save key %s: %w", k.Address.Hex(), err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, addr common.Address) (*models.StoredKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT address, label, salt, verifier, nonce, ciphertext, created_at
		FROM keys WHERE address = ?`, addrKey(addr))

	k, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", addr.Hex(), err)
	}
	return k, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.StoredKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT address, label, salt, verifier, nonce, ciphertext, created_at
		FROM keys ORDER BY created_at, address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var result []models.StoredKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		result = append(result, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate key rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, addr common.Address) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM keys WHERE address = ?`, addrKey(addr))
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", addr.Hex(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(s scanner) (*models.StoredKey, error) {
	var (
		k       models.StoredKey
		address string
		created int64
	)
	if err := s.Scan(&address, &k.Label, &k.Salt, &k.Verifier, &k.Nonce, &k.Ciphertext, &created); err != nil {
		return nil, err
	}
	k.Address = common.HexToAddress(address)
	k.CreatedAt = time.UnixMilli(created)
	return &k, nil
}

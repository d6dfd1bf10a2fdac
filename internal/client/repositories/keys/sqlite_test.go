package keys

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	apperr "github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE keys (
    address    TEXT PRIMARY KEY,
    label      TEXT NOT NULL DEFAULT '',
    salt       BLOB NOT NULL,
    verifier   BLOB NOT NULL,
    nonce      BLOB NOT NULL,
    ciphertext BLOB NOT NULL,
    created_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func sampleKey(addr string, label string) *models.StoredKey {
	return &models.StoredKey{
		Address:    common.HexToAddress(addr),
		Label:      label,
		Salt:       []byte{1},
		Verifier:   []byte{2},
		Nonce:      []byte{3},
		Ciphertext: []byte{4, 5},
		CreatedAt:  time.UnixMilli(1_700_000_000_000),
	}
}

func TestSaveAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	k := sampleKey("0x00000000000000000000000000000000000000a1", "main")
	require.NoError(t, r.Save(ctx, k))

	got, err := r.Get(ctx, k.Address)
	require.NoError(t, err)
	assert.Equal(t, k.Address, got.Address)
	assert.Equal(t, "main", got.Label)
	assert.Equal(t, []byte{4, 5}, got.Ciphertext)
	assert.True(t, k.CreatedAt.Equal(got.CreatedAt))
}

func TestSave_ReplacesExisting(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	k := sampleKey("0x00000000000000000000000000000000000000a1", "old")
	require.NoError(t, r.Save(ctx, k))
	k.Label = "new"
	k.Ciphertext = []byte{9}
	require.NoError(t, r.Save(ctx, k))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Label)
	assert.Equal(t, []byte{9}, list[0].Ciphertext)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, apperr.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	k := sampleKey("0x00000000000000000000000000000000000000a1", "main")
	require.NoError(t, r.Save(ctx, k))
	require.NoError(t, r.Delete(ctx, k.Address))
	assert.ErrorIs(t, r.Delete(ctx, k.Address), apperr.ErrorNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	second := sampleKey("0x00000000000000000000000000000000000000b2", "second")
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, r.Save(ctx, second))
	require.NoError(t, r.Save(ctx, sampleKey("0x00000000000000000000000000000000000000a1", "first")))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Label)
	assert.Equal(t, "second", list[1].Label)
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	err := r.Save(ctx, sampleKey("0x01", "x"))
	assert.ErrorContains(t, err, "failed to save key")

	_, err = r.Get(ctx, common.HexToAddress("0x01"))
	assert.ErrorContains(t, err, "failed to get key")

	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "failed to list keys")

	err = r.Delete(ctx, common.HexToAddress("0x01"))
	assert.ErrorContains(t, err, "failed to delete key")
}

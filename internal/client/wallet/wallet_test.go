package wallet

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	apperr "github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe512961708279f2e3e8a5d4b8e3e0a1"

// ---- fakes ----

type memKeys struct {
	byAddr  map[common.Address]models.StoredKey
	ListErr error
}

func newMemKeys() *memKeys { return &memKeys{byAddr: map[common.Address]models.StoredKey{}} }

func (m *memKeys) Save(_ context.Context, k *models.StoredKey) error {
	m.byAddr[k.Address] = *k
	return nil
}

func (m *memKeys) Get(_ context.Context, addr common.Address) (*models.StoredKey, error) {
	k, ok := m.byAddr[addr]
	if !ok {
		return nil, apperr.ErrorNotFound
	}
	return &k, nil
}

func (m *memKeys) List(_ context.Context) ([]models.StoredKey, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.StoredKey, 0, len(m.byAddr))
	for _, k := range m.byAddr {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memKeys) Delete(_ context.Context, addr common.Address) error {
	if _, ok := m.byAddr[addr]; !ok {
		return apperr.ErrorNotFound
	}
	delete(m.byAddr, addr)
	return nil
}

func passphrase(s string) PassphraseFunc {
	return func(string) ([]byte, error) { return []byte(s), nil }
}

func sampleTx() *types.Transaction {
	to := common.HexToAddress("0xc0ffee")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(11155111),
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})
}

func testAddress(t *testing.T) common.Address {
	t.Helper()
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(priv.PublicKey)
}

// ---- keyWallet ----

func TestKeyWallet_SignsAfterApproval(t *testing.T) {
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	var seenFrom common.Address
	w := newKeyWallet("test", priv, func(_ context.Context, from common.Address, _ *types.Transaction) (bool, error) {
		seenFrom = from
		return true, nil
	})

	chainID := big.NewInt(11155111)
	signed, err := w.SignTx(context.Background(), sampleTx(), chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), sender)
	assert.Equal(t, w.Address(), seenFrom)
	assert.Equal(t, "test", w.Provider())
}

func TestKeyWallet_DeclinedIsUserRejected(t *testing.T) {
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	w := newKeyWallet("test", priv, func(context.Context, common.Address, *types.Transaction) (bool, error) {
		return false, nil
	})

	_, err = w.SignTx(context.Background(), sampleTx(), big.NewInt(1))
	assert.ErrorIs(t, err, contract.ErrUserRejected)
}

func TestKeyWallet_ApprovalError(t *testing.T) {
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	boom := errors.New("stdin closed")
	w := newKeyWallet("test", priv, func(context.Context, common.Address, *types.Transaction) (bool, error) {
		return false, boom
	})

	_, err = w.SignTx(context.Background(), sampleTx(), big.NewInt(1))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, contract.ErrUserRejected)
}

// ---- vault ----

func TestVault_ImportConnectDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemKeys()
	p := &VaultProvider{Keys: repo, Passphrase: passphrase("s3cret")}

	assert.False(t, p.Available(ctx))

	addr, err := p.Import(ctx, "0x"+testKeyHex, "main", []byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, testAddress(t), addr)
	assert.True(t, p.Available(ctx))

	stored := repo.byAddr[addr]
	assert.NotContains(t, string(stored.Ciphertext), testKeyHex)
	assert.Len(t, stored.Salt, 32)

	w, err := p.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, addr, w.Address())
	assert.Equal(t, "vault", w.Provider())

	accounts, err := p.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "main", accounts[0].Label)
	assert.Nil(t, accounts[0].Ciphertext)
	assert.NotNil(t, repo.byAddr[addr].Ciphertext, "Accounts must not strip the stored copy")

	require.NoError(t, p.Keys.Delete(ctx, addr))
	_, err = p.Connect(ctx)
	assert.ErrorIs(t, err, apperr.ErrNoLocalKey)
}

func TestVault_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	repo := newMemKeys()
	p := &VaultProvider{Keys: repo, Passphrase: passphrase("wrong")}

	_, err := p.Import(ctx, testKeyHex, "", []byte("right"))
	require.NoError(t, err)

	_, err = p.Connect(ctx)
	assert.ErrorIs(t, err, apperr.ErrorUnauthorized)
}

func TestVault_SelectedAccountMissing(t *testing.T) {
	p := &VaultProvider{Keys: newMemKeys(), Passphrase: passphrase("x"), Account: common.HexToAddress("0x01")}
	_, err := p.Connect(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNoLocalKey)
}

func TestVault_ImportRejectsGarbage(t *testing.T) {
	p := &VaultProvider{Keys: newMemKeys()}
	_, err := p.Import(context.Background(), "not-a-key", "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestVault_ListErrorMeansUnavailable(t *testing.T) {
	repo := newMemKeys()
	repo.ListErr = errors.New("db down")
	p := &VaultProvider{Keys: repo}
	assert.False(t, p.Available(context.Background()))
}

// ---- keystore ----

func writeKeystore(t *testing.T, dir, pass string) common.Address {
	t.Helper()
	priv, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	key := &keystore.Key{Id: uuid.New(), Address: crypto.PubkeyToAddress(priv.PublicKey), PrivateKey: priv}
	blob, err := keystore.EncryptKey(key, pass, keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UTC--2024-01-01T00-00-00.000000000Z--"+strings.ToLower(key.Address.Hex()[2:])), blob, 0o600))
	return key.Address
}

func TestKeystore_ConnectFromDirectory(t *testing.T) {
	dir := t.TempDir()
	want := writeKeystore(t, dir, "pw")

	var prompt string
	p := &KeystoreProvider{Path: dir, Passphrase: func(pr string) ([]byte, error) {
		prompt = pr
		return []byte("pw"), nil
	}}
	assert.True(t, p.Available(context.Background()))

	w, err := p.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, w.Address())
	assert.Equal(t, "keystore", w.Provider())
	assert.Contains(t, prompt, "UTC--")
}

func TestKeystore_WrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	writeKeystore(t, dir, "pw")

	p := &KeystoreProvider{Path: dir, Passphrase: passphrase("nope")}
	_, err := p.Connect(context.Background())
	assert.ErrorIs(t, err, apperr.ErrorUnauthorized)
}

func TestKeystore_Unavailable(t *testing.T) {
	assert.False(t, (&KeystoreProvider{}).Available(context.Background()))
	assert.False(t, (&KeystoreProvider{Path: t.TempDir()}).Available(context.Background()))
	assert.False(t, (&KeystoreProvider{Path: filepath.Join(t.TempDir(), "missing.json")}).Available(context.Background()))
}

// ---- registry ----

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	repo := newMemKeys()
	vault := &VaultProvider{Keys: repo, Passphrase: passphrase("pw")}
	ks := &KeystoreProvider{}
	r := NewRegistry(ks, vault)

	assert.Equal(t, []string{"keystore", "vault"}, r.Names())
	assert.Empty(t, r.Available(ctx))

	_, err := vault.Import(ctx, testKeyHex, "", []byte("pw"))
	require.NoError(t, err)
	avail := r.Available(ctx)
	require.Len(t, avail, 1)
	assert.Equal(t, "vault", avail[0].Name())

	got, err := r.Get("vault")
	require.NoError(t, err)
	assert.Same(t, vault, got)

	_, err = r.Get("ledger")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

package wallet

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/keys"
	"github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/dmitrijs2005/afterlife/internal/cryptox"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

// VaultProvider keeps private keys in the local database, sealed under a key
// derived from a passphrase.
type VaultProvider struct {
	Keys       keys.Repository
	Passphrase PassphraseFunc
	Approve    Approver

	// Account picks the stored key to unlock. Zero means the oldest one.
	Account ethcommon.Address
}

func (p *VaultProvider) Name() string { return "vault" }

func (p *VaultProvider) Available(ctx context.Context) bool {
	list, err := p.Keys.List(ctx)
	return err == nil && len(list) > 0
}

func (p *VaultProvider) Connect(ctx context.Context) (Wallet, error) {
	stored, err := p.pick(ctx)
	if err != nil {
		return nil, err
	}

	pass, err := p.Passphrase(fmt.Sprintf("Vault passphrase for %s: ", stored.Address.Hex()))
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pass)

	secret := cryptox.DeriveKey(pass, stored.Salt)
	defer common.WipeByteArray(secret)

	if subtle.ConstantTimeCompare(stored.Verifier, cryptox.MakeVerifier(secret)) == 0 {
		return nil, common.ErrorUnauthorized
	}

	raw, err := cryptox.Open(stored.Ciphertext, stored.Nonce, secret)
	if err != nil {
		return nil, fmt.Errorf("open vault key: %w", err)
	}
	defer common.WipeByteArray(raw)

	priv, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return newKeyWallet(p.Name(), priv, p.Approve), nil
}

func (p *VaultProvider) pick(ctx context.Context) (*models.StoredKey, error) {
	if p.Account != (ethcommon.Address{}) {
		k, err := p.Keys.Get(ctx, p.Account)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoLocalKey
		}
		return k, err
	}

	list, err := p.Keys.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrNoLocalKey
	}
	return &list[0], nil
}

// Import seals a hex private key under passphrase and stores it.
func (p *VaultProvider) Import(ctx context.Context, hexKey, label string, passphrase []byte) (ethcommon.Address, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	raw := crypto.FromECDSA(priv)
	defer common.WipeByteArray(raw)

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	secret := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(secret)

	ciphertext, nonce, err := cryptox.Seal(raw, secret)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("seal key: %w", err)
	}

	addr := crypto.PubkeyToAddress(priv.PublicKey)
	err = p.Keys.Save(ctx, &models.StoredKey{
		Address:    addr,
		Label:      label,
		Salt:       salt,
		Verifier:   cryptox.MakeVerifier(secret),
		Nonce:      nonce,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return ethcommon.Address{}, err
	}
	return addr, nil
}

// Accounts lists the stored keys without their sealed material.
func (p *VaultProvider) Accounts(ctx context.Context) ([]models.StoredKey, error) {
	list, err := p.Keys.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Salt, list[i].Verifier, list[i].Nonce, list[i].Ciphertext = nil, nil, nil, nil
	}
	return list, nil
}

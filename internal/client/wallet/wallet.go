// Package wallet provides the accounts that sign contract writes. A Provider
// unlocks an account and hands back a Wallet; the Wallet asks the user to
// approve every transaction before signing it.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrUnknownProvider = errors.New("unknown wallet provider")

// Wallet is a connected account.
type Wallet interface {
	contract.Signer
	Provider() string
}

type Provider interface {
	Name() string
	// Available reports whether Connect has anything to unlock.
	Available(ctx context.Context) bool
	Connect(ctx context.Context) (Wallet, error)
}

// PassphraseFunc reads a secret from the user.
type PassphraseFunc func(prompt string) ([]byte, error)

// Approver shows tx to the user and reports whether it may be signed.
type Approver func(ctx context.Context, from common.Address, tx *types.Transaction) (bool, error)

// keyWallet signs with a private key held in memory for the session.
type keyWallet struct {
	provider string
	key      *ecdsa.PrivateKey
	address  common.Address
	approve  Approver
}

func newKeyWallet(provider string, key *ecdsa.PrivateKey, approve Approver) *keyWallet {
	return &keyWallet{
		provider: provider,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		approve:  approve,
	}
}

func (w *keyWallet) Address() common.Address { return w.address }

func (w *keyWallet) Provider() string { return w.provider }

// SignTx returns contract.ErrUserRejected when the user declines.
func (w *keyWallet) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if w.approve != nil {
		ok, err := w.approve(ctx, w.address, tx)
		if err != nil {
			return nil, fmt.Errorf("approval: %w", err)
		}
		if !ok {
			return nil, contract.ErrUserRejected
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
}

// Registry lists the providers in the order they were registered.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Get(name string) (Provider, error) {
	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// Available returns the providers that currently have an account to unlock.
func (r *Registry) Available(ctx context.Context) []Provider {
	var out []Provider
	for _, p := range r.providers {
		if p.Available(ctx) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

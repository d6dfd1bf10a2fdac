// Package keys stores sealed private keys for the local vault wallet.
package keys

import (
	"context"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/ethereum/go-ethereum/common"
)

type Repository interface {
	// Save inserts the key or replaces the one stored for the same address.
	Save(ctx context.Context, k *models.StoredKey) error

	// Get returns common.ErrorNotFound when nothing is stored for addr.
	Get(ctx context.Context, addr common.Address) (*models.StoredKey, error)

	// List returns every stored key, oldest first.
	List(ctx context.Context) ([]models.StoredKey, error)

	// Delete returns common.ErrorNotFound when nothing was removed.
	Delete(ctx context.Context, addr common.Address) error
}

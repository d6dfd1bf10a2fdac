// Package metadata stores small settings that outlive a session, such as
// the wallet the user connected with last time.
package metadata

import "context"

const (
	KeyProvider     = "wallet.provider"
	KeyVaultAccount = "vault.account"
)

type Repository interface {
	// Get returns "" for a key that was never set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

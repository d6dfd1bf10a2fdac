package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// StoredKey is a private key kept in the local vault, sealed under a key
// derived from the user's passphrase.
type StoredKey struct {
	Address    common.Address
	Label      string
	Salt       []byte
	Verifier   []byte
	Nonce      []byte
	Ciphertext []byte
	CreatedAt  time.Time
}

// JournalEntry is the latest recorded state of one write.
type JournalEntry struct {
	ID        string
	Action    string
	Hash      string
	Phase     string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// KeystoreProvider unlocks a go-ethereum JSON key file. Path may name the
// file itself or a keystore directory, in which case the first UTC-- file
// is used.
type KeystoreProvider struct {
	Path       string
	Passphrase PassphraseFunc
	Approve    Approver
}

func (p *KeystoreProvider) Name() string { return "keystore" }

func (p *KeystoreProvider) Available(ctx context.Context) bool {
	_, err := p.keyFile()
	return err == nil
}

func (p *KeystoreProvider) Connect(ctx context.Context) (Wallet, error) {
	file, err := p.keyFile()
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	pass, err := p.Passphrase(fmt.Sprintf("Passphrase for %s: ", filepath.Base(file)))
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pass)

	key, err := keystore.DecryptKey(blob, string(pass))
	if errors.Is(err, keystore.ErrDecrypt) {
		return nil, common.ErrorUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return newKeyWallet(p.Name(), key.PrivateKey, p.Approve), nil
}

func (p *KeystoreProvider) keyFile() (string, error) {
	if p.Path == "" {
		return "", common.ErrorNotFound
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return p.Path, nil
	}

	entries, err := os.ReadDir(p.Path)
	if err != nil {
		return "", err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "UTC--") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return "", common.ErrorNotFound
	}
	sort.Strings(files)
	return filepath.Join(p.Path, files[0]), nil
}

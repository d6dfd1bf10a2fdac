package cli

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/afterlife/internal/client/view"
	appcommon "github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

var ErrPassphraseMismatch = errors.New("passphrases do not match")

func (a *App) passphrase(prompt string) ([]byte, error) {
	return getPassword(a.out, prompt)
}

// approve shows what is about to be signed and asks the user.
func (a *App) approve(ctx context.Context, from common.Address, tx *types.Transaction) (bool, error) {
	method := "unknown"
	if parsed, err := contract.ABI(); err == nil && len(tx.Data()) >= 4 {
		if m, err := parsed.MethodById(tx.Data()[:4]); err == nil {
			method = m.Name
		}
	}
	maxFee := new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas()), tx.GasFeeCap())

	fmt.Fprintf(a.out, "Signature request for %s\n", from.Hex())
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Function:\t%s\n", method)
	if tx.To() != nil {
		fmt.Fprintf(tw, "  Contract:\t%s\n", tx.To().Hex())
	}
	fmt.Fprintf(tw, "  Value:\t%s ETH\n", view.FormatEther(tx.Value()))
	fmt.Fprintf(tw, "  Max fee:\t%s ETH\n", view.FormatEther(maxFee))
	fmt.Fprintf(tw, "  Nonce:\t%d\n", tx.Nonce())
	_ = tw.Flush()

	return confirm(a.reader, "Sign this transaction?", a.out)
}

// Connect picks a wallet provider, unlocks it and loads the will.
func (a *App) Connect(ctx context.Context) error {
	if a.isConnected() {
		return fmt.Errorf("already connected, disconnect first")
	}

	avail := a.wallets.Available(ctx)
	if len(avail) == 0 {
		printlnFn("No wallet available. Use 'import' to add a key to the local vault, or start with -k <keystore>.")
		return nil
	}

	p := avail[0]
	if len(avail) > 1 {
		names := make([]string, len(avail))
		for i, pr := range avail {
			names[i] = pr.Name()
		}
		last := a.pref(ctx, metadata.KeyProvider)
		prompt := fmt.Sprintf("Choose wallet %v", names)
		if last != "" {
			prompt += fmt.Sprintf(" (Enter for %s)", last)
		}
		choice, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if choice == "" {
			choice = last
		}
		if p, err = a.wallets.Get(choice); err != nil {
			return err
		}
	}

	if p.Name() == a.vault.Name() {
		if err := a.pickVaultAccount(ctx); err != nil {
			return err
		}
	}

	w, err := p.Connect(ctx)
	if errors.Is(err, appcommon.ErrorUnauthorized) {
		return fmt.Errorf("wrong passphrase")
	}
	if err != nil {
		return err
	}

	if err := a.session.Connect(ctx, w); err != nil {
		return err
	}
	a.remember(ctx, metadata.KeyProvider, p.Name())
	if p.Name() == a.vault.Name() {
		a.remember(ctx, metadata.KeyVaultAccount, w.Address().Hex())
	}
	printlnFn("Connected", w.Address().Hex(), "via", w.Provider())
	return a.Status(ctx)
}

// pref reads a saved setting. A read failure only costs the default.
func (a *App) pref(ctx context.Context, key string) string {
	v, err := a.prefs.Get(ctx, key)
	if err != nil {
		a.log.Warn(ctx, "failed to read setting", "key", key, "error", err)
	}
	return v
}

func (a *App) remember(ctx context.Context, key, value string) {
	if err := a.prefs.Set(ctx, key, value); err != nil {
		a.log.Warn(ctx, "failed to save setting", "key", key, "error", err)
	}
}

// pickVaultAccount asks which stored key to unlock when there is more than one.
func (a *App) pickVaultAccount(ctx context.Context) error {
	list, err := a.vault.Accounts(ctx)
	if err != nil {
		return err
	}
	a.vault.Account = common.Address{}
	if len(list) < 2 {
		return nil
	}
	last := -1
	if saved := a.pref(ctx, metadata.KeyVaultAccount); saved != "" {
		for i, k := range list {
			if k.Address.Hex() == saved {
				last = i
			}
		}
	}
	a.printAccounts(list)
	k, err := a.chooseIndexOr("Account number", len(list), last)
	if err != nil {
		return err
	}
	a.vault.Account = list[k].Address
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	if !a.isConnected() {
		printlnFn("Not connected")
		return nil
	}
	if a.session.Busy() {
		return errRefreshing
	}
	a.session.Disconnect(ctx)
	printlnFn("Disconnected")
	return nil
}

// Import seals a private key into the local vault.
func (a *App) Import(ctx context.Context) error {
	key, err := getPassword(a.out, "Private key (hex): ")
	if err != nil {
		return err
	}
	defer appcommon.WipeByteArray(key)

	label, err := getSimpleText(a.reader, "Label (optional)", a.out)
	if err != nil {
		return err
	}

	pass, err := getPassword(a.out, "New vault passphrase: ")
	if err != nil {
		return err
	}
	defer appcommon.WipeByteArray(pass)
	again, err := getPassword(a.out, "Repeat passphrase: ")
	if err != nil {
		return err
	}
	defer appcommon.WipeByteArray(again)
	if string(pass) != string(again) {
		return ErrPassphraseMismatch
	}

	addr, err := a.vault.Import(ctx, string(key), label, pass)
	if err != nil {
		return err
	}
	printlnFn("Stored key for", addr.Hex())
	return nil
}

func (a *App) Accounts(ctx context.Context) error {
	list, err := a.vault.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("The local vault is empty.")
		return nil
	}
	a.printAccounts(list)
	return nil
}

// Forget removes a key from the local vault.
func (a *App) Forget(ctx context.Context) error {
	list, err := a.vault.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("The local vault is empty.")
		return nil
	}
	a.printAccounts(list)
	k, err := a.chooseIndex("Account number to forget", len(list))
	if err != nil {
		return err
	}
	addr := list[k].Address

	if current, err := a.session.Account(); err == nil && current == addr {
		return fmt.Errorf("%s is connected, disconnect first", addr.Hex())
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Remove %s from the vault?", addr.Hex()), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.store.ForgetKey(ctx, addr); err != nil {
		return err
	}
	printlnFn("Removed", addr.Hex())
	return nil
}

func (a *App) printAccounts(list []models.StoredKey) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tADDRESS\tLABEL\tADDED")
	for i, k := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, k.Address.Hex(), k.Label, k.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

// chooseIndex reads a 1-based number and returns it 0-based.
func (a *App) chooseIndex(prompt string, n int) (int, error) {
	return a.chooseIndexOr(prompt, n, -1)
}

// chooseIndexOr is chooseIndex where an empty answer picks def, if def >= 0.
func (a *App) chooseIndexOr(prompt string, n, def int) (int, error) {
	prompt = fmt.Sprintf("%s (1-%d)", prompt, n)
	if def >= 0 {
		prompt += fmt.Sprintf(" (Enter for %d)", def+1)
	}
	text, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	if text == "" && def >= 0 {
		return def, nil
	}
	k, err := strconv.Atoi(text)
	if err != nil || k < 1 || k > n {
		return 0, models.NewValidationError("index", fmt.Sprintf("Please enter a number between 1 and %d", n))
	}
	return k - 1, nil
}

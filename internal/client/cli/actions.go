package cli

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/forms"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/session"
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
	"github.com/dmitrijs2005/afterlife/internal/client/view"
)

// feeTimeout bounds the advisory fee estimate shown before signing.
const feeTimeout = 2 * time.Second

// The REPL runs one command at a time, so a busy slot here means the
// background refresh holds it.
var errRefreshing = errors.New("the dashboard is refreshing, try again in a moment")

// Setup chooses the display name of a new user.
func (a *App) Setup(ctx context.Context) error {
	if a.screen() != session.NewUserSetup {
		return session.ErrWrongScreen
	}
	printlnFn("Welcome to AfterLife! Choose the name your nominees will see.")
	name, err := a.readName()
	if err != nil {
		return err
	}
	if err := a.write(ctx, txflow.ActionSetup, contract.ResetName(name)); err != nil {
		return err
	}
	if a.screen() == session.Dashboard {
		return a.Status(ctx)
	}
	return nil
}

func (a *App) Rename(ctx context.Context) error {
	if _, err := a.unlocked(); err != nil {
		return err
	}
	name, err := a.readName()
	if err != nil {
		return err
	}
	return a.write(ctx, txflow.ActionRename, contract.ResetName(name))
}

func (a *App) readName() (string, error) {
	text, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return "", err
	}
	return forms.ParseName(text)
}

func (a *App) Deposit(ctx context.Context) error {
	if _, err := a.unlocked(); err != nil {
		return err
	}
	balance, err := a.session.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wallet balance: %s ETH\n", view.FormatEther(balance))

	amount, err := a.readAmount("Amount to deposit (ETH)", balance, forms.MsgExceedsBalance)
	if err != nil {
		return err
	}
	return a.write(ctx, txflow.ActionDeposit, contract.Deposit(amount))
}

func (a *App) Withdraw(ctx context.Context) error {
	snap, err := a.unlocked()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deposited: %s ETH\n", view.FormatEther(snap.Balance))

	amount, err := a.readAmount("Amount to withdraw (ETH)", snap.Balance, forms.MsgExceedsDeposit)
	if err != nil {
		return err
	}
	return a.write(ctx, txflow.ActionWithdraw, contract.Withdraw(amount))
}

func (a *App) readAmount(prompt string, limit *big.Int, limitMsg string) (*big.Int, error) {
	text, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	return forms.ParseAmount(text, limit, limitMsg)
}

// Period sets the inactivity period, either from a preset or in days.
func (a *App) Period(ctx context.Context) error {
	snap, err := a.unlocked()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Current inactivity period: %s\n", view.FormatDays(snap.InactivityPeriod, false))
	for i, p := range forms.QuickPicks {
		fmt.Fprintf(a.out, "  %c) %s (%d days)\n", 'a'+i, p.Label, p.Days)
	}

	text, err := getSimpleText(a.reader, fmt.Sprintf("Preset letter or number of days (%d-%d)", forms.MinDays, forms.MaxDays), a.out)
	if err != nil {
		return err
	}
	if len(text) == 1 && text[0] >= 'a' && int(text[0]-'a') < len(forms.QuickPicks) {
		text = fmt.Sprint(forms.QuickPicks[text[0]-'a'].Days)
	}

	seconds, err := forms.ParseDays(text)
	if err != nil {
		return err
	}
	return a.write(ctx, txflow.ActionPeriod, contract.SetInactivityPeriod(new(big.Int).SetUint64(seconds)))
}

// Claim withdraws part or all of an unlocked inheritance.
func (a *App) Claim(ctx context.Context) error {
	snap, err := a.dashboard()
	if err != nil {
		return err
	}
	if len(snap.Inheritances) == 0 {
		printlnFn("No inheritances yet.")
		return nil
	}
	view.Inheritances(a.out, snap.Inheritances)

	k, err := a.chooseIndex("Inheritance number", len(snap.Inheritances))
	if err != nil {
		return err
	}
	in := snap.Inheritances[k]
	if in.IsLocked {
		printlnFn("This inheritance unlocks in", view.FormatDays(in.TimeUntilUnlock, true))
		return nil
	}

	amount, err := a.readAmount(
		fmt.Sprintf("Amount to claim from %s (max %s ETH)", in.DepositorName, view.FormatEther(in.AbsoluteShareAmount)),
		in.AbsoluteShareAmount, forms.MsgExceedsInheritance)
	if err != nil {
		return err
	}
	return a.write(ctx, txflow.ActionClaim, contract.ClaimInheritance(in.DepositorAddress, amount))
}

// CheckIn proves liveness. Failures are notified; running it again retries.
func (a *App) CheckIn(ctx context.Context) error {
	if _, err := a.dashboard(); err != nil {
		return err
	}
	_, err := a.session.CheckIn(ctx)
	if errors.Is(err, session.ErrCheckInDisabled) {
		if a.session.Busy() {
			return errRefreshing
		}
		return errors.New("your account is inactive and can no longer check in")
	}
	return err
}

// write runs call through a fresh dialog for action.
func (a *App) write(ctx context.Context, action txflow.Action, call contract.WriteCall) error {
	s, err := a.session.Open(action, nil)
	if errors.Is(err, txflow.ErrBusy) {
		return errRefreshing
	}
	if err != nil {
		return err
	}
	a.showFee(ctx, call)
	return a.submit(ctx, s, call)
}

// submit sends call and, after a failure, offers to try again. Declining
// closes the dialog.
func (a *App) submit(ctx context.Context, s *session.Surface, call contract.WriteCall) error {
	for {
		_, err := s.Submit(ctx, call)
		if err == nil {
			return nil
		}
		if errors.Is(err, txflow.ErrBusy) {
			printlnFn("The dashboard is refreshing.")
			retry, cerr := confirm(a.reader, "Try again?", a.out)
			if cerr != nil || !retry {
				_ = s.Close()
				return errRefreshing
			}
			continue
		}
		var txErr *txflow.TxError
		if !errors.As(err, &txErr) {
			_ = s.Close()
			return err
		}

		retry, cerr := confirm(a.reader, "Try again?", a.out)
		if cerr != nil || !retry {
			_ = s.Close()
			return txErr
		}
		if err := s.Acknowledge(ctx); err != nil {
			_ = s.Close()
			return err
		}
	}
}

func (a *App) showFee(ctx context.Context, call contract.WriteCall) {
	ctx, cancel := context.WithTimeout(ctx, feeTimeout)
	defer cancel()

	fee, err := a.session.EstimateFee(ctx, call)
	if err != nil {
		a.log.Debug(ctx, "fee estimate unavailable", "method", call.Method, "error", err)
		return
	}
	fmt.Fprintf(a.out, "Estimated network fee: %s ETH\n", view.FormatEther(fee))
}

// dashboard returns the snapshot when the dashboard is showing.
func (a *App) dashboard() (*models.UserSnapshot, error) {
	if a.screen() != session.Dashboard {
		if !a.isConnected() {
			return nil, errors.New("not connected, use 'connect'")
		}
		return nil, session.ErrWrongScreen
	}
	snap := a.session.Snapshot()
	if snap == nil {
		return nil, session.ErrWrongScreen
	}
	return snap, nil
}

// unlocked is dashboard for the actions an inactive account loses.
func (a *App) unlocked() (*models.UserSnapshot, error) {
	snap, err := a.dashboard()
	if err != nil {
		return nil, err
	}
	if !snap.IsActive {
		return nil, session.ErrInactive
	}
	return snap, nil
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

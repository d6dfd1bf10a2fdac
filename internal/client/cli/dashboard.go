package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/afterlife/internal/client/session"
	"github.com/dmitrijs2005/afterlife/internal/client/view"
)

const historyLimit = 20

// Status shows the screen the session is on.
func (a *App) Status(ctx context.Context) error {
	switch a.screen() {
	case session.Disconnected:
		printlnFn("Not connected. Use 'connect' to unlock a wallet.")
	case session.Loading:
		printlnFn("Loading...")
	case session.NewUserSetup:
		printlnFn("Welcome! Use 'setup' to choose your name before creating your will.")
	case session.Dashboard:
		snap := a.session.Snapshot()
		view.Will(a.out, snap, a.now())
		if len(snap.Inheritances) > 0 {
			fmt.Fprintf(a.out, "You are a nominee on %d will(s); use 'inheritances' to see them.\n", len(snap.Inheritances))
		}
		if a.session.CanCheckIn() {
			printlnFn("Use 'alive' to check in.")
		}
	}
	return nil
}

// Inheritances lists what the user can claim, optionally sorted by
// unlock, amount, share or name, ascending unless "desc" is given.
func (a *App) Inheritances(ctx context.Context, args []string) error {
	snap, err := a.dashboard()
	if err != nil {
		return err
	}
	key, asc := view.SortByUnlock, true
	if len(args) > 0 {
		key = view.SortKey(lower(args[0]))
	}
	if len(args) > 1 && lower(args[1]) == "desc" {
		asc = false
	}
	view.Inheritances(a.out, view.SortInheritances(snap.Inheritances, key, asc))
	return nil
}

// History lists the most recent writes from the local journal.
func (a *App) History(ctx context.Context) error {
	entries, err := a.journal.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printlnFn("No transactions yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tSTATE\tHASH\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.UpdatedAt.Format("2006-01-02 15:04"), e.Action, e.Phase, e.Hash, e.Error)
	}
	return tw.Flush()
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.Refresh(ctx); err != nil {
		return err
	}
	return a.Status(ctx)
}

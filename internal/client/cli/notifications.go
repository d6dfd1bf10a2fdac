package cli

import (
	"context"
	"fmt"
)

// Notifications lists the live notifications, one per id. "dismiss <id>"
// drops one of them and "clear" drops them all.
func (a *App) Notifications(ctx context.Context, args []string) error {
	if len(args) == 0 {
		live := a.notes.Live()
		if len(live) == 0 {
			printlnFn("No notifications.")
			return nil
		}
		for _, n := range live {
			fmt.Fprintf(a.out, "%-24s [%s] %s\n", n.ID, n.Level, n.Message)
		}
		return nil
	}

	switch args[0] {
	case "clear":
		for _, n := range a.notes.Live() {
			a.notes.Dismiss(n.ID)
		}
		return nil
	case "dismiss":
		if len(args) != 2 {
			return fmt.Errorf("usage: notifications dismiss <id>")
		}
		if _, ok := a.notes.Get(args[1]); !ok {
			return fmt.Errorf("no notification %q", args[1])
		}
		a.notes.Dismiss(args[1])
		return nil
	default:
		return fmt.Errorf("usage: notifications [clear|dismiss <id>]")
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	screen() session.Screen

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Import(ctx context.Context) error
	Accounts(ctx context.Context) error
	Forget(ctx context.Context) error

	Status(ctx context.Context) error
	Setup(ctx context.Context) error
	Deposit(ctx context.Context) error
	Withdraw(ctx context.Context) error
	Nominees(ctx context.Context) error
	Period(ctx context.Context) error
	Rename(ctx context.Context) error
	Inheritances(ctx context.Context, args []string) error
	Claim(ctx context.Context) error
	CheckIn(ctx context.Context) error
	History(ctx context.Context) error
	Refresh(ctx context.Context) error
	Notifications(ctx context.Context, args []string) error
}

const (
	helpDisconnected = "Available commands: connect, import, accounts, forget, notifications, exit"
	helpSetup        = "Available commands: setup, status, notifications, disconnect, exit"
	helpDashboard    = "Available commands: status, deposit, withdraw, nominees, period, rename, alive, " +
		"inheritances [unlock|amount|share|name] [asc|desc], claim, history, refresh, " +
		"notifications [clear|dismiss <id>], disconnect, exit"
)

// runREPL starts a simple read–eval–print loop for the AfterLife CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Which commands are offered depends on the
// screen the session is on. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Errors returned by handlers go through report: failures the user was
// already notified about are not printed twice.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("afterlife %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			switch a.screen() {
			case session.Disconnected:
				printlnFn(helpDisconnected)
			case session.NewUserSetup:
				printlnFn(helpSetup)
			default:
				printlnFn(helpDashboard)
			}

		case "connect":
			report(a.Connect(ctx))
		case "disconnect":
			report(a.Disconnect(ctx))
		case "import":
			report(a.Import(ctx))
		case "accounts":
			report(a.Accounts(ctx))
		case "forget":
			report(a.Forget(ctx))

		case "status", "s":
			report(a.Status(ctx))
		case "setup":
			report(a.Setup(ctx))
		case "deposit":
			report(a.Deposit(ctx))
		case "withdraw":
			report(a.Withdraw(ctx))
		case "nominees":
			report(a.Nominees(ctx))
		case "period":
			report(a.Period(ctx))
		case "rename":
			report(a.Rename(ctx))
		case "inheritances", "inh":
			report(a.Inheritances(ctx, args))
		case "claim":
			report(a.Claim(ctx))
		case "alive", "checkin":
			report(a.CheckIn(ctx))
		case "history":
			report(a.History(ctx))
		case "refresh":
			report(a.Refresh(ctx))
		case "notifications", "n":
			report(a.Notifications(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

// report prints a handler error. Validation problems print their message
// alone; errors carrying a user message were already sent as notifications.
func report(err error) {
	if err == nil {
		return
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		printlnFn(ve.Message)
		return
	}
	var notified interface{ Message() string }
	if errors.As(err, &notified) {
		return
	}
	printlnFn("Error:", err)
}

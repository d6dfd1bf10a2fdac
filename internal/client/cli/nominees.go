package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/nominees"
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
)

const nomineesHelp = "Editor commands: add, rm <n>, set <n> <name|relation|address|share> <value>, show, save, cancel"

var fieldNames = map[string]nominees.Field{
	"name":     nominees.FieldName,
	"relation": nominees.FieldRelation,
	"address":  nominees.FieldAddress,
	"share":    nominees.FieldShare,
}

// Nominees opens the nominee editor, seeded from the current list. The
// dialog stays open until the list is saved or the editor is cancelled.
func (a *App) Nominees(ctx context.Context) error {
	snap, err := a.unlocked()
	if err != nil {
		return err
	}
	owner, err := a.session.Account()
	if err != nil {
		return err
	}

	ed := nominees.NewEditor(owner, snap.Nominees)
	s, err := a.session.Open(txflow.ActionNominees, func() { ed = nominees.NewEditor(owner, nil) })
	if errors.Is(err, txflow.ErrBusy) {
		return errRefreshing
	}
	if err != nil {
		return err
	}

	printlnFn(nomineesHelp)
	a.renderEditor(ed)

	for {
		line, err := getSimpleText(a.reader, "nominees", a.out)
		if err != nil {
			_ = s.Close()
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch lower(parts[0]) {
		case "add":
			if err := ed.Add(); err != nil {
				printlnFn(err.Error())
				continue
			}
			a.renderEditor(ed)

		case "rm", "remove":
			i, ok := rowArg(parts, ed.Len())
			if !ok {
				printlnFn("Usage: rm <n>")
				continue
			}
			_ = ed.Remove(i)
			a.renderEditor(ed)

		case "set":
			i, ok := rowArg(parts, ed.Len())
			if !ok || len(parts) < 3 {
				printlnFn("Usage: set <n> <name|relation|address|share> <value>")
				continue
			}
			f, known := fieldNames[lower(parts[2])]
			if !known {
				printlnFn("Unknown field:", parts[2])
				continue
			}
			_ = ed.Set(i, f, strings.Join(parts[3:], " "))
			a.renderEditor(ed)

		case "show":
			a.renderEditor(ed)

		case "save":
			list, err := ed.Nominees()
			if errors.Is(err, nominees.ErrNotReady) {
				printlnFn("Fix the highlighted fields first.")
				continue
			}
			if err != nil {
				_ = s.Close()
				return err
			}
			return a.submit(ctx, s, contract.UpdateNominees(list))

		case "cancel", "back", "exit":
			return s.Close()

		case "help":
			printlnFn(nomineesHelp)

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}

// rowArg reads the 1-based row number in parts[1].
func rowArg(parts []string, n int) (int, bool) {
	if len(parts) < 2 {
		return 0, false
	}
	k, err := strconv.Atoi(parts[1])
	if err != nil || k < 1 || k > n {
		return 0, false
	}
	return k - 1, true
}

func (a *App) renderEditor(ed *nominees.Editor) {
	rows := ed.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No nominees. Use 'add' to start.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tNAME\tRELATION\tADDRESS\tSHARE %")
		for i, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Name, r.Relation, r.Address, r.Share)
		}
		_ = tw.Flush()

		for i, r := range rows {
			for _, f := range nominees.Fields {
				if msg, ok := r.Errors[f]; ok && msg != "" {
					fmt.Fprintf(a.out, "  row %d %s: %s\n", i+1, f, msg)
				}
			}
		}
	}

	fmt.Fprintf(a.out, "Total: %s%%\n", ed.Total().StringFixed(2))
	if note := ed.Note(); note != "" {
		fmt.Fprintln(a.out, note)
	}
}

package view

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
)

const lockedBanner = `!! Access Locked
You have been marked inactive for longer than your chosen inactivity period.
Your funds are now locked in the protocol. Only your nominees can claim them.
  - You can no longer deposit or withdraw funds.
  - You cannot update nominees or settings.
  - You cannot check in.
  - You can still claim inheritance.`

// Will writes the depositor's side of the dashboard.
func Will(w io.Writer, snap *models.UserSnapshot, now time.Time) {
	fmt.Fprintf(w, "Welcome, %s\n", snap.Name)

	if !snap.IsActive {
		fmt.Fprintln(w, lockedBanner)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Deposited:\t%s ETH\n", FormatEther(snap.Balance))
	fmt.Fprintf(tw, "Last check-in:\t%s\n", SinceCheckIn(snap.LastCheckIn, now))
	fmt.Fprintf(tw, "Inactivity period:\t%s\n", FormatDays(snap.InactivityPeriod, false))
	fmt.Fprintf(tw, "Allocated:\t%s%%\n", FormatPercent(snap.AllocatedHundredths()))
	_ = tw.Flush()

	Nominees(w, snap.Nominees)
}

func Nominees(w io.Writer, list []models.Nominee) {
	if len(list) == 0 {
		fmt.Fprintln(w, "You currently have no nominees.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tRELATION\tADDRESS\tSHARE")
	for i, n := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s%%\n", i+1, n.Name, n.Relation, n.Address.Hex(), FormatPercent(n.ShareHundredths))
	}
	_ = tw.Flush()
}

// Inheritances writes the nominee's side of the dashboard.
func Inheritances(w io.Writer, list []models.Inheritance) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No inheritances yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFROM\tADDRESS\tAMOUNT\tSHARE\tINACTIVITY\tUNLOCKS IN\tSTATUS")
	for i, in := range list {
		status := "Available to Claim"
		if in.IsLocked {
			status = "Locked"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s ETH\t%s%%\t%s\t%s\t%s\n",
			i+1, in.DepositorName, in.DepositorAddress.Hex(), FormatEther(in.AbsoluteShareAmount),
			FormatPercent(in.ShareHundredths), FormatDays(in.InactivityThresholdPeriod, false),
			FormatDays(in.TimeUntilUnlock, true), status)
	}
	_ = tw.Flush()
}

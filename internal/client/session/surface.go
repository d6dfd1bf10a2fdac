package session

import (
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
	appcommon "github.com/dmitrijs2005/afterlife/internal/common"
)

// Surface is an open dialog. It owns its transaction state; closing it, or
// a settled write, frees the session for the next dialog.
type Surface struct {
	*txflow.Orchestrator
	Action txflow.Action
}

// Open opens the dialog for action. The setup dialog exists only for new
// users and its settlement re-runs the first load; every other dialog is a
// dashboard dialog whose settlement refreshes the snapshot.
func (c *Controller) Open(action txflow.Action, clearInput func()) (*Surface, error) {
	if action.Name == txflow.ActionCheckIn.Name {
		return nil, ErrNotDialog
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wallet == nil {
		return nil, appcommon.ErrNotConnected
	}
	if c.surface != nil {
		return nil, ErrSurfaceOpen
	}
	if c.slot.Busy() {
		return nil, txflow.ErrBusy
	}

	setup := action.Name == txflow.ActionSetup.Name
	if setup != (c.screen == NewUserSetup) || (!setup && c.screen != Dashboard) {
		return nil, ErrWrongScreen
	}
	// an inactive will is locked; only incoming inheritances can still be claimed
	if !setup && action.Name != txflow.ActionClaim.Name && c.snap != nil && !c.snap.IsActive {
		return nil, ErrInactive
	}

	s := &Surface{Action: action}
	hooks := txflow.Hooks{
		ClearInput: clearInput,
		Refresh:    c.refresh,
		Close:      func() { c.release(s) },
	}
	if setup {
		hooks.Refresh = c.load
	}

	o, err := c.newOrchestrator(action, c.wallet, hooks)
	if err != nil {
		return nil, err
	}
	s.Orchestrator = o
	c.surface = s
	return s, nil
}

// OpenSurface returns the dialog currently open, if any.
func (c *Controller) OpenSurface() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

func (c *Controller) release(s *Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == s {
		c.surface = nil
	}
}

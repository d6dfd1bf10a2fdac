// Package session decides which screen the user is on, owns the current
// snapshot and hands out the transaction surfaces. All writes share one
// slot, so at most one is in flight across every surface and the refresh
// timer.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/metrics"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/notify"
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
	"github.com/dmitrijs2005/afterlife/internal/client/wallet"
	appcommon "github.com/dmitrijs2005/afterlife/internal/common"
	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultRefreshInterval = 5 * time.Minute

	notifyConnect = "connect"
	notifyRefresh = "refresh"
)

var (
	ErrSurfaceOpen       = errors.New("another dialog is already open")
	ErrWrongScreen       = errors.New("action not available on this screen")
	ErrAlreadyConnected  = errors.New("wallet already connected")
	ErrCheckInDisabled   = errors.New("check-in is not available right now")
	ErrSessionSuperseded = errors.New("session changed while loading")
	ErrNotDialog         = errors.New("action has no dialog")
	ErrInactive          = errors.New("your account is inactive and can no longer change its will")
)

type Screen int

const (
	Disconnected Screen = iota
	Loading
	NewUserSetup
	Dashboard
)

func (s Screen) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Loading:
		return "loading"
	case NewUserSetup:
		return "setup"
	case Dashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// Fetcher produces a snapshot; prev is nil on a first load.
type Fetcher interface {
	Fetch(ctx context.Context, addr common.Address, prev *models.UserSnapshot) (*models.UserSnapshot, error)
}

// Chain is the write side of the gateway plus the advisory queries.
type Chain interface {
	contract.Sender
	contract.FeeEstimator
}

type Options struct {
	Chain    Chain           `validate:"required"`
	Fetcher  Fetcher         `validate:"required"`
	Notifier notify.Notifier `validate:"required"`
	Log      logging.Logger  `validate:"required"`

	RefreshInterval time.Duration `validate:"gte=0"`

	Slot     *txflow.Slot
	Recorder txflow.Recorder
	Metrics  *metrics.Metrics
}

var validate = validator.New()

type Controller struct {
	opts Options
	log  logging.Logger
	slot *txflow.Slot

	mu      sync.Mutex
	gen     uint64
	screen  Screen
	wallet  wallet.Wallet
	snap    *models.UserSnapshot
	surface *Surface
	checkIn *txflow.Orchestrator
}

func New(opts Options) (*Controller, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Slot == nil {
		opts.Slot = txflow.NewSlot()
	}
	return &Controller{
		opts: opts,
		log:  opts.Log.With("component", "session"),
		slot: opts.Slot,
	}, nil
}

func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Snapshot returns a copy of the current snapshot, or nil before the first load.
func (c *Controller) Snapshot() *models.UserSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	return c.snap.Clone()
}

// Account returns the connected address.
func (c *Controller) Account() (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wallet == nil {
		return common.Address{}, appcommon.ErrNotConnected
	}
	return c.wallet.Address(), nil
}

// Busy reports whether a write or a refresh holds the slot.
func (c *Controller) Busy() bool {
	return c.slot.Busy()
}

// Connect binds w and runs the first load. Any load failure disconnects.
func (c *Controller) Connect(ctx context.Context, w wallet.Wallet) error {
	c.mu.Lock()
	if c.screen != Disconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.gen++
	c.wallet = w
	c.screen = Loading
	c.mu.Unlock()

	c.log.Info(ctx, "wallet connected", "address", w.Address().Hex(), "provider", w.Provider())

	if err := c.load(ctx); err != nil {
		c.opts.Notifier.Error(userMessage(err), notifyConnect)
		return err
	}

	checkIn, err := c.newOrchestrator(txflow.ActionCheckIn, w, txflow.Hooks{Refresh: c.refresh})
	if err != nil {
		c.Disconnect(ctx)
		return err
	}
	c.mu.Lock()
	c.checkIn = checkIn
	c.mu.Unlock()
	return nil
}

// Disconnect drops the wallet and all session state.
func (c *Controller) Disconnect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == Disconnected {
		return
	}
	c.gen++
	c.screen = Disconnected
	c.wallet = nil
	c.snap = nil
	c.surface = nil
	c.checkIn = nil
	c.log.Info(ctx, "session closed")
}

// load runs a first-load aggregation. On failure the session is torn down.
func (c *Controller) load(ctx context.Context) error {
	addr, gen, err := c.current()
	if err != nil {
		return err
	}

	snap, err := c.opts.Fetcher.Fetch(ctx, addr, nil)
	if err != nil {
		c.log.Warn(ctx, "load failed, disconnecting", "address", addr.Hex(), "error", err)
		c.disconnectGen(ctx, gen)
		return err
	}
	return c.apply(gen, snap)
}

// refresh re-aggregates with the current snapshot as fallback. A failure
// leaves the session and its snapshot as they were.
func (c *Controller) refresh(ctx context.Context) error {
	addr, gen, err := c.current()
	if err != nil {
		return err
	}
	c.mu.Lock()
	prev := c.snap
	c.mu.Unlock()

	snap, err := c.opts.Fetcher.Fetch(ctx, addr, prev)
	if err != nil {
		c.log.Warn(ctx, "refresh failed", "address", addr.Hex(), "error", err)
		return err
	}
	return c.apply(gen, snap)
}

func (c *Controller) current() (common.Address, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wallet == nil {
		return common.Address{}, 0, appcommon.ErrNotConnected
	}
	return c.wallet.Address(), c.gen, nil
}

// apply replaces the snapshot wholesale and picks the screen from it.
func (c *Controller) apply(gen uint64, snap *models.UserSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return ErrSessionSuperseded
	}
	c.snap = snap
	if snap.IsNewUser {
		c.screen = NewUserSetup
	} else {
		c.screen = Dashboard
	}
	return nil
}

func (c *Controller) disconnectGen(ctx context.Context, gen uint64) {
	c.mu.Lock()
	stale := gen != c.gen
	c.mu.Unlock()
	if !stale {
		c.Disconnect(ctx)
	}
}

// Refresh is a user-requested refresh. It fails with txflow.ErrBusy while a
// write is in flight. Failures are notified and leave the snapshot as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.Screen() != Dashboard {
		return ErrWrongScreen
	}
	if !c.slot.TryAcquire() {
		return txflow.ErrBusy
	}
	defer c.slot.Release()

	err := c.refresh(ctx)
	if err != nil && !errors.Is(err, ErrSessionSuperseded) {
		c.opts.Notifier.Error(userMessage(err), notifyRefresh)
	}
	return err
}

// StartRefresher ticks every RefreshInterval until ctx is done.
func (c *Controller) StartRefresher(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.opts.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.tick(ctx)
			}
		}
	}()
}

// tick refreshes the dashboard. A tick that finds the slot taken is skipped;
// a running tick holds the slot so no write can start under it.
func (c *Controller) tick(ctx context.Context) {
	if c.Screen() != Dashboard {
		return
	}
	if !c.slot.TryAcquire() {
		c.log.Debug(ctx, "refresh skipped, slot busy")
		return
	}
	defer c.slot.Release()

	if err := c.refresh(ctx); err != nil && !errors.Is(err, ErrSessionSuperseded) {
		c.opts.Notifier.Error(userMessage(err), notifyRefresh)
	}
}

// CanCheckIn reports whether the check-in action is enabled.
func (c *Controller) CanCheckIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen == Dashboard && c.snap != nil && c.snap.IsActive && c.checkIn != nil && !c.slot.Busy()
}

// CheckIn sends iAmAlive through the session-wide check-in surface. A
// previous failure is acknowledged first; a settled run is replaced.
func (c *Controller) CheckIn(ctx context.Context) (common.Hash, error) {
	if !c.CanCheckIn() {
		return common.Hash{}, ErrCheckInDisabled
	}
	c.mu.Lock()
	o, w := c.checkIn, c.wallet
	c.mu.Unlock()

	switch o.State().Phase {
	case txflow.Failed:
		if err := o.Acknowledge(ctx); err != nil {
			return common.Hash{}, err
		}
	case txflow.Settled:
		next, err := c.newOrchestrator(txflow.ActionCheckIn, w, txflow.Hooks{Refresh: c.refresh})
		if err != nil {
			return common.Hash{}, err
		}
		c.mu.Lock()
		if c.checkIn == o {
			c.checkIn = next
		}
		c.mu.Unlock()
		o = next
	}
	return o.Submit(ctx, contract.IAmAlive())
}

// Balance returns the wallet's on-chain balance, used as the deposit limit.
func (c *Controller) Balance(ctx context.Context) (*big.Int, error) {
	addr, _, err := c.current()
	if err != nil {
		return nil, err
	}
	return c.opts.Chain.BalanceOf(ctx, addr)
}

// EstimateFee is advisory; callers show it when it arrives and ignore errors.
func (c *Controller) EstimateFee(ctx context.Context, call contract.WriteCall) (*big.Int, error) {
	addr, _, err := c.current()
	if err != nil {
		return nil, err
	}
	return c.opts.Chain.EstimateFee(ctx, addr, call)
}

func (c *Controller) newOrchestrator(action txflow.Action, w wallet.Wallet, hooks txflow.Hooks) (*txflow.Orchestrator, error) {
	return txflow.New(txflow.Options{
		Action:   action,
		Sender:   c.opts.Chain,
		Signer:   w,
		Notifier: c.opts.Notifier,
		Slot:     c.slot,
		Hooks:    hooks,
		Log:      c.opts.Log,
		Recorder: c.opts.Recorder,
		Metrics:  c.opts.Metrics,
	})
}

func userMessage(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}

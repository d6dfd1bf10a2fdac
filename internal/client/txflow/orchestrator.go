// Package txflow drives a contract write through signing, broadcast and
// confirmation, and runs the settlement effects of the surface that issued it.
package txflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/metrics"
	"github.com/dmitrijs2005/afterlife/internal/client/notify"
	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgSign    = "Please sign the transaction"
	msgConfirm = "Waiting for transaction confirmation"

	msgRefreshFailed = "Failed to fetch updated user data"
)

// Hooks are the surface's settlement effects. Any of them may be nil.
type Hooks struct {
	ClearInput func()
	Refresh    func(ctx context.Context) error
	Close      func()
}

// Transition is one recorded step of a write.
type Transition struct {
	ID     uuid.UUID
	Action string
	From   Phase
	To     Phase
	Hash   common.Hash
	Err    error
}

// Recorder persists transitions. Failures are logged, never surfaced.
type Recorder interface {
	Record(ctx context.Context, t Transition) error
}

type Options struct {
	Action   Action
	Sender   contract.Sender `validate:"required"`
	Signer   contract.Signer `validate:"required"`
	Notifier notify.Notifier `validate:"required"`
	Slot     *Slot           `validate:"required"`
	Hooks    Hooks
	Log      logging.Logger `validate:"required"`

	Recorder Recorder
	Metrics  *metrics.Metrics
}

var validate = validator.New()

// Orchestrator owns one surface's transaction state.
type Orchestrator struct {
	opts Options
	log  logging.Logger

	mu    sync.Mutex
	state State
	runID uuid.UUID

	closeOnce sync.Once
}

func New(opts Options) (*Orchestrator, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("txflow options: %w", err)
	}
	return &Orchestrator{
		opts: opts,
		log:  opts.Log.With("action", opts.Action.Name),
	}, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit runs call to settlement. It returns ErrBusy without leaving Idle if
// another write holds the slot, and a *TxError if the write failed.
func (o *Orchestrator) Submit(ctx context.Context, call contract.WriteCall) (common.Hash, error) {
	o.mu.Lock()
	to, err := Next(o.state.Phase, EventSubmit)
	if err != nil {
		o.mu.Unlock()
		return common.Hash{}, err
	}
	if !o.opts.Slot.TryAcquire() {
		o.mu.Unlock()
		return common.Hash{}, ErrBusy
	}
	from := o.state.Phase
	o.runID = uuid.New()
	o.state = State{Phase: to}
	o.mu.Unlock()
	defer o.opts.Slot.Release()

	o.after(ctx, from, to, common.Hash{}, nil)
	id := o.opts.Action.NotifyID
	o.opts.Notifier.Loading(msgSign, id)

	hash, err := o.opts.Sender.Send(ctx, o.opts.Signer, call)
	if err != nil {
		ev := EventSendFailed
		if contract.KindOf(err) == contract.KindUserRejected {
			ev = EventRejected
		}
		return common.Hash{}, o.fail(ctx, ev, common.Hash{}, err)
	}

	if err := o.fire(ctx, EventBroadcast, hash, nil); err != nil {
		return hash, err
	}
	o.opts.Notifier.Loading(msgConfirm, id)

	start := time.Now()
	if err := o.opts.Sender.WaitConfirmed(ctx, hash); err != nil {
		return hash, o.fail(ctx, EventConfirmationError, hash, err)
	}
	o.opts.Metrics.Confirmation(o.opts.Action.Name, time.Since(start))

	if err := o.fire(ctx, EventConfirmed, hash, nil); err != nil {
		return hash, err
	}
	o.settle(ctx)
	return hash, nil
}

// settle runs the success effects in order: notify, clear, refresh, close.
func (o *Orchestrator) settle(ctx context.Context) {
	id := o.opts.Action.NotifyID
	o.opts.Notifier.Success(o.opts.Action.SuccessMessage, id)
	o.opts.Metrics.Transaction(o.opts.Action.Name, Settled.String())

	if o.opts.Hooks.ClearInput != nil {
		o.opts.Hooks.ClearInput()
	}

	if o.opts.Hooks.Refresh != nil {
		if err := o.opts.Hooks.Refresh(ctx); err != nil {
			o.log.Warn(ctx, "refresh after settlement failed", "error", err)
			o.opts.Notifier.Error(refreshMessage(err), id+"-refresh")
		}
	}

	o.closeSurface()
}

func refreshMessage(err error) string {
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return msgRefreshFailed
}

func (o *Orchestrator) fail(ctx context.Context, ev Event, hash common.Hash, cause error) error {
	txErr := Classify(cause)
	if err := o.fire(ctx, ev, hash, txErr); err != nil {
		return err
	}
	o.log.Warn(ctx, "transaction failed", "event", ev.String(), "kind", txErr.Kind.String(), "error", cause)
	o.opts.Notifier.Error(txErr.Message(), o.opts.Action.NotifyID)
	o.opts.Metrics.Transaction(o.opts.Action.Name, txErr.Kind.String())
	return txErr
}

// Acknowledge clears a failure so the surface can retry.
func (o *Orchestrator) Acknowledge(ctx context.Context) error {
	return o.fire(ctx, EventAcknowledge, common.Hash{}, nil)
}

// Close dismisses the surface. It runs the close hook at most once over the
// orchestrator's life, whether triggered here or by settlement.
func (o *Orchestrator) Close() error {
	if o.State().Phase.InFlight() {
		return ErrInFlight
	}
	o.closeSurface()
	return nil
}

func (o *Orchestrator) closeSurface() {
	o.closeOnce.Do(func() {
		if o.opts.Hooks.Close != nil {
			o.opts.Hooks.Close()
		}
	})
}

func (o *Orchestrator) fire(ctx context.Context, ev Event, hash common.Hash, txErr *TxError) error {
	o.mu.Lock()
	from := o.state.Phase
	to, err := Next(from, ev)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	next := State{Phase: to, Hash: o.state.Hash, Err: txErr}
	if hash != (common.Hash{}) {
		next.Hash = hash
	}
	if to == Idle {
		next = State{}
	}
	o.state = next
	o.mu.Unlock()

	var cause error
	if txErr != nil {
		cause = txErr
	}
	o.after(ctx, from, to, next.Hash, cause)
	return nil
}

func (o *Orchestrator) after(ctx context.Context, from, to Phase, hash common.Hash, cause error) {
	o.log.Debug(ctx, "transition", "from", from.String(), "to", to.String())

	if o.opts.Recorder != nil {
		o.mu.Lock()
		id := o.runID
		o.mu.Unlock()
		t := Transition{ID: id, Action: o.opts.Action.Name, From: from, To: to, Hash: hash, Err: cause}
		if err := o.opts.Recorder.Record(ctx, t); err != nil {
			o.log.Warn(ctx, "journal write failed", "error", err)
		}
	}
}

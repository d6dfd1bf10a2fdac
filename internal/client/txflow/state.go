package txflow

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is where a write is in its lifecycle.
type Phase int

const (
	Idle Phase = iota
	AwaitingSignature
	AwaitingConfirmation
	Settled
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingSignature:
		return "awaiting_signature"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Settled:
		return "settled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a write is between submission and settlement.
func (p Phase) InFlight() bool {
	return p == AwaitingSignature || p == AwaitingConfirmation
}

type Event int

const (
	EventSubmit Event = iota
	EventRejected
	EventSendFailed
	EventBroadcast
	EventConfirmed
	EventConfirmationError
	EventAcknowledge
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventRejected:
		return "rejected"
	case EventSendFailed:
		return "send_failed"
	case EventBroadcast:
		return "broadcast"
	case EventConfirmed:
		return "confirmed"
	case EventConfirmationError:
		return "confirmation_error"
	case EventAcknowledge:
		return "acknowledge"
	default:
		return "unknown"
	}
}

var ErrInvalidTransition = errors.New("invalid transition")

// transitions is the whole machine. Anything not listed is rejected.
var transitions = map[Phase]map[Event]Phase{
	Idle: {
		EventSubmit: AwaitingSignature,
	},
	AwaitingSignature: {
		EventRejected:   Failed,
		EventSendFailed: Failed,
		EventBroadcast:  AwaitingConfirmation,
	},
	AwaitingConfirmation: {
		EventConfirmed:         Settled,
		EventConfirmationError: Failed,
	},
	Failed: {
		EventAcknowledge: Idle,
	},
}

// Next returns the phase reached from p on e.
func Next(p Phase, e Event) (Phase, error) {
	to, ok := transitions[p][e]
	if !ok {
		return p, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, p)
	}
	return to, nil
}

// State is a surface's view of its write. Hash is set from broadcast on;
// Err only in Failed.
type State struct {
	Phase Phase
	Hash  common.Hash
	Err   *TxError
}

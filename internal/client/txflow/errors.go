package txflow

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
)

// ErrBusy is returned when another write already holds the slot.
var ErrBusy = errors.New("another transaction is in progress")

// ErrInFlight is returned when a surface is closed mid-transaction.
var ErrInFlight = errors.New("transaction in flight")

type TxKind int

const (
	Generic TxKind = iota
	UserRejected
	InsufficientFunds
	GasEstimationFailed
)

func (k TxKind) String() string {
	switch k {
	case UserRejected:
		return "user_rejected"
	case InsufficientFunds:
		return "insufficient_funds"
	case GasEstimationFailed:
		return "gas_estimation_failed"
	default:
		return "generic"
	}
}

// eip1193UserRejected is the provider error code for a declined request.
const eip1193UserRejected = 4001

// TxError is a classified write failure.
type TxError struct {
	Kind TxKind
	Err  error
}

// Message is the text shown to the user.
func (e *TxError) Message() string {
	switch e.Kind {
	case UserRejected:
		return "Transaction cancelled"
	case InsufficientFunds:
		return "Insufficient funds for gas"
	case GasEstimationFailed:
		return "Gas estimation failed"
	default:
		return "Transaction failed"
	}
}

func (e *TxError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *TxError) Unwrap() error { return e.Err }

type coded interface {
	ErrorCode() int
}

// Classify maps a wallet or gateway error onto a TxKind. Structured signals
// are checked before message text.
func Classify(err error) *TxError {
	if err == nil {
		return nil
	}
	var te *TxError
	if errors.As(err, &te) {
		return te
	}

	if errors.Is(err, contract.ErrUserRejected) || contract.KindOf(err) == contract.KindUserRejected {
		return &TxError{Kind: UserRejected, Err: err}
	}
	var c coded
	if errors.As(err, &c) && c.ErrorCode() == eip1193UserRejected {
		return &TxError{Kind: UserRejected, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rejected"), strings.Contains(msg, "denied"):
		return &TxError{Kind: UserRejected, Err: err}
	case strings.Contains(msg, "insufficient funds"):
		return &TxError{Kind: InsufficientFunds, Err: err}
	case contract.KindOf(err) == contract.KindGasEstimationFailed,
		strings.Contains(msg, "gas") && strings.Contains(msg, "exceeds allowance"):
		return &TxError{Kind: GasEstimationFailed, Err: err}
	}
	return &TxError{Kind: Generic, Err: err}
}

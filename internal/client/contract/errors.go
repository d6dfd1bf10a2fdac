package contract

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// Kind tags why a gateway call failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindReverted
	KindNetworkError
	KindTimeout
	KindUserRejected
	KindGasEstimationFailed
)

func (k Kind) String() string {
	switch k {
	case KindReverted:
		return "reverted"
	case KindNetworkError:
		return "network error"
	case KindTimeout:
		return "timeout"
	case KindUserRejected:
		return "user rejected"
	case KindGasEstimationFailed:
		return "gas estimation failed"
	default:
		return "unknown"
	}
}

var (
	// ErrUserRejected is returned by signers when the user declines to sign.
	// The wording follows the EIP-1193 provider message.
	ErrUserRejected = errors.New("user rejected the request")

	ErrTxReverted       = errors.New("transaction reverted")
	ErrNoSigner         = errors.New("no signer")
	ErrUnexpectedOutput = errors.New("unexpected output shape")
)

// Error wraps a failed gateway call with its operation and cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// rpcRevertCode is the JSON-RPC error code geth uses for execution reverts.
const rpcRevertCode = 3

// classifyReadErr maps a per-call or transport error to a read Kind.
func classifyReadErr(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	var re rpc.Error
	if errors.As(err, &re) && re.ErrorCode() == rpcRevertCode {
		return KindReverted
	}
	if strings.Contains(strings.ToLower(err.Error()), "revert") {
		return KindReverted
	}
	return KindNetworkError
}

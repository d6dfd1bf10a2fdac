package txflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/stretchr/testify/assert"
)

type providerErr struct{ code int }

func (e providerErr) Error() string  { return "provider error" }
func (e providerErr) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind TxKind
		msg  string
	}{
		{"sentinel", fmt.Errorf("sign: %w", contract.ErrUserRejected), UserRejected, "Transaction cancelled"},
		{"eip1193 code", providerErr{code: 4001}, UserRejected, "Transaction cancelled"},
		{"other code", providerErr{code: -32000}, Generic, "Transaction failed"},
		{"rejected text", errors.New("User rejected the request."), UserRejected, "Transaction cancelled"},
		{"denied text", errors.New("User denied transaction signature"), UserRejected, "Transaction cancelled"},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), InsufficientFunds, "Insufficient funds for gas"},
		{"gas allowance text", errors.New("gas required exceeds allowance (30000000)"), GasEstimationFailed, "Gas estimation failed"},
		{"gateway gas kind", &contract.Error{Op: "deposit", Kind: contract.KindGasEstimationFailed, Err: errors.New("execution reverted")}, GasEstimationFailed, "Gas estimation failed"},
		{"insufficient during estimation", &contract.Error{Op: "deposit", Kind: contract.KindGasEstimationFailed, Err: errors.New("insufficient funds for transfer")}, InsufficientFunds, "Insufficient funds for gas"},
		{"reverted receipt", &contract.Error{Op: "confirm", Kind: contract.KindReverted, Err: contract.ErrTxReverted}, Generic, "Transaction failed"},
		{"anything else", errors.New("nonce too low"), Generic, "Transaction failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.msg, got.Message())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_NilAndIdempotent(t *testing.T) {
	assert.Nil(t, Classify(nil))

	first := Classify(errors.New("User denied"))
	assert.Same(t, first, Classify(fmt.Errorf("again: %w", first)))
}

func TestSlot(t *testing.T) {
	s := NewSlot()
	assert.False(t, s.Busy())
	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())
	assert.True(t, s.Busy())
	s.Release()
	s.Release()
	assert.False(t, s.Busy())
	assert.True(t, s.TryAcquire())
}

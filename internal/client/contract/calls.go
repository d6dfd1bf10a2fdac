package contract

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/ethereum/go-ethereum/common"
)

// WriteCall is one state-changing contract invocation. Build it with the
// constructors below so the argument order always matches the ABI.
type WriteCall struct {
	Method string
	Args   []any
	// Value is the wei amount attached to the call; nil for non-payable ones.
	Value *big.Int
}

// nomineeTuple mirrors StateVariables.Nominee. Field names are matched
// against the ABI component names when packing and unpacking.
type nomineeTuple struct {
	Name           string
	Relation       string
	NomineeAddress common.Address
	SharePercent   *big.Int
}

// inheritanceTuple mirrors StateVariables.IncomingInheritance.
type inheritanceTuple struct {
	DepositorName             string
	DepositorAddress          common.Address
	SharePercent              *big.Int
	AbsoluteShareAmount       *big.Int
	InactivityThresholdPeriod *big.Int
	TimeUntilUnlock           *big.Int
	IsLocked                  bool
}

func Deposit(amount *big.Int) WriteCall {
	return WriteCall{Method: MethodDeposit, Value: amount}
}

func Withdraw(amount *big.Int) WriteCall {
	return WriteCall{Method: MethodWithdraw, Args: []any{amount}}
}

func ResetName(name string) WriteCall {
	return WriteCall{Method: MethodResetName, Args: []any{name}}
}

func SetInactivityPeriod(seconds *big.Int) WriteCall {
	return WriteCall{Method: MethodSetInactivityPeriod, Args: []any{seconds}}
}

// UpdateNominees replaces the whole on-chain nominee list.
func UpdateNominees(list []models.Nominee) WriteCall {
	tuples := make([]nomineeTuple, len(list))
	for i, n := range list {
		tuples[i] = nomineeTuple{
			Name:           n.Name,
			Relation:       n.Relation,
			NomineeAddress: n.Address,
			SharePercent:   new(big.Int).SetUint64(n.ShareHundredths),
		}
	}
	return WriteCall{Method: MethodUpdateNominees, Args: []any{tuples}}
}

func ClaimInheritance(from common.Address, amount *big.Int) WriteCall {
	return WriteCall{Method: MethodClaimInheritance, Args: []any{from, amount}}
}

func IAmAlive() WriteCall {
	return WriteCall{Method: MethodIAmAlive}
}

// Pack ABI-encodes the call data.
func (c WriteCall) Pack() ([]byte, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack(c.Method, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", c.Method, err)
	}
	return data, nil
}

func (c WriteCall) value() *big.Int {
	if c.Value == nil {
		return new(big.Int)
	}
	return c.Value
}

package contract

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ReadResult is the outcome of one read in a batch. Value holds the typed
// result when Err is nil:
//
//	ReadIsNewUser, ReadIsActive           bool
//	ReadName                              string
//	ReadTotalDeposit                      *big.Int
//	ReadLastCheckIn, ReadInactivityPeriod uint64
//	ReadNominees                          []models.Nominee
//	ReadInheritances                      []models.Inheritance
type ReadResult struct {
	Func  ReadFunc
	Value any
	Err   error
}

// packReadCall encodes a view call taking the user address.
func packReadCall(parsed abi.ABI, fn ReadFunc, user common.Address) ([]byte, error) {
	return parsed.Pack(fn.Method(), user)
}

// decodeRead unpacks raw eth_call output into the typed value for fn.
func decodeRead(parsed abi.ABI, fn ReadFunc, raw []byte) (any, error) {
	out, err := parsed.Unpack(fn.Method(), raw)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedOutput, fn, len(out))
	}

	switch fn {
	case ReadIsNewUser, ReadIsActive:
		v, ok := out[0].(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedOutput, fn)
		}
		return v, nil

	case ReadName:
		v, ok := out[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedOutput, fn)
		}
		return v, nil

	case ReadTotalDeposit:
		v, ok := out[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedOutput, fn)
		}
		return v, nil

	case ReadLastCheckIn, ReadInactivityPeriod:
		v, ok := out[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedOutput, fn)
		}
		return toUint64(fn, v)

	case ReadNominees:
		tuples := *abi.ConvertType(out[0], new([]nomineeTuple)).(*[]nomineeTuple)
		list := make([]models.Nominee, 0, len(tuples))
		for _, t := range tuples {
			share, err := toUint64(fn, t.SharePercent)
			if err != nil {
				return nil, err
			}
			list = append(list, models.Nominee{
				Name:            t.Name,
				Relation:        t.Relation,
				Address:         t.NomineeAddress,
				ShareHundredths: share,
			})
		}
		return list, nil

	case ReadInheritances:
		tuples := *abi.ConvertType(out[0], new([]inheritanceTuple)).(*[]inheritanceTuple)
		list := make([]models.Inheritance, 0, len(tuples))
		for _, t := range tuples {
			in := models.Inheritance{
				DepositorName:       t.DepositorName,
				DepositorAddress:    t.DepositorAddress,
				AbsoluteShareAmount: t.AbsoluteShareAmount,
				IsLocked:            t.IsLocked,
			}
			if in.ShareHundredths, err = toUint64(fn, t.SharePercent); err != nil {
				return nil, err
			}
			if in.InactivityThresholdPeriod, err = toUint64(fn, t.InactivityThresholdPeriod); err != nil {
				return nil, err
			}
			if in.TimeUntilUnlock, err = toUint64(fn, t.TimeUntilUnlock); err != nil {
				return nil, err
			}
			list = append(list, in)
		}
		return list, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnexpectedOutput, fn)
}

func toUint64(fn ReadFunc, v *big.Int) (uint64, error) {
	if v == nil || !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s value out of range", ErrUnexpectedOutput, fn)
	}
	return v.Uint64(), nil
}

// Package snapshot turns one batch of contract reads into a UserSnapshot,
// deciding per field whether a failed read is fatal, defaulted, or filled
// from the previous snapshot.
package snapshot

import (
	"context"
	"errors"
	"math/big"

	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/metrics"
	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum/common"
)

var errMissingResult = errors.New("no result for read")

type Aggregator struct {
	reader  contract.BatchReader
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewAggregator(reader contract.BatchReader, log logging.Logger, m *metrics.Metrics) *Aggregator {
	return &Aggregator{reader: reader, log: log.With("component", "snapshot"), metrics: m}
}

// Fetch reads everything for addr. prev is nil on first load; on refresh it
// supplies the values of fields whose reads failed.
func (a *Aggregator) Fetch(ctx context.Context, addr common.Address, prev *models.UserSnapshot) (*models.UserSnapshot, error) {
	mode := "refresh"
	if prev == nil {
		mode = "first"
	}

	results, err := a.reader.ReadBatch(ctx, addr)
	if err != nil {
		a.metrics.Aggregation(mode, Unreachable.String())
		a.log.Warn(ctx, "batch read failed", "address", addr.Hex(), "error", err)
		return nil, &AggregationError{Kind: Unreachable, Err: err}
	}

	snap, degraded, err := merge(results, prev)
	if err != nil {
		var ae *AggregationError
		if errors.As(err, &ae) {
			a.metrics.Aggregation(mode, ae.Kind.String())
		}
		a.log.Warn(ctx, "aggregation failed", "address", addr.Hex(), "mode", mode, "error", err)
		return nil, err
	}

	for _, fn := range degraded {
		a.metrics.Degraded(fn.String())
		a.log.Debug(ctx, "field degraded", "field", fn.String(), "mode", mode)
	}
	a.metrics.Aggregation(mode, "ok")
	return snap, nil
}

// Merge applies the reconciliation rules to one batch. It never mutates prev.
func Merge(results []contract.ReadResult, prev *models.UserSnapshot) (*models.UserSnapshot, error) {
	snap, _, err := merge(results, prev)
	return snap, err
}

func merge(results []contract.ReadResult, prev *models.UserSnapshot) (*models.UserSnapshot, []contract.ReadFunc, error) {
	if len(results) == 0 {
		return nil, nil, &AggregationError{Kind: Unreachable}
	}

	byFunc := make(map[contract.ReadFunc]contract.ReadResult, len(results))
	for _, r := range results {
		byFunc[r.Func] = r
	}
	get := func(fn contract.ReadFunc) (any, error) {
		r, ok := byFunc[fn]
		if !ok {
			return nil, errMissingResult
		}
		return r.Value, r.Err
	}

	v, err := get(contract.ReadIsNewUser)
	isNew, ok := v.(bool)
	if err != nil || !ok {
		return nil, nil, &AggregationError{Kind: StatusUnknown, Err: err}
	}
	if isNew {
		return &models.UserSnapshot{IsNewUser: true}, nil, nil
	}

	v, err = get(contract.ReadName)
	name, ok := v.(string)
	if err != nil || !ok {
		return nil, nil, &AggregationError{Kind: ProfileUnavailable, Err: err}
	}

	var base models.UserSnapshot
	if prev != nil {
		base = *prev.Clone()
	}
	if base.Balance == nil {
		base.Balance = new(big.Int)
	}

	snap := &models.UserSnapshot{Name: name}
	var degraded []contract.ReadFunc

	fill := func(fn contract.ReadFunc, set func(any) bool) {
		v, err := get(fn)
		if err == nil && set(v) {
			return
		}
		degraded = append(degraded, fn)
	}

	snap.IsActive = base.IsActive
	fill(contract.ReadIsActive, func(v any) bool {
		b, ok := v.(bool)
		if ok {
			snap.IsActive = b
		}
		return ok
	})

	snap.Balance = base.Balance
	fill(contract.ReadTotalDeposit, func(v any) bool {
		b, ok := v.(*big.Int)
		if ok && b != nil {
			snap.Balance = new(big.Int).Set(b)
			return true
		}
		return false
	})

	snap.Nominees = base.Nominees
	fill(contract.ReadNominees, func(v any) bool {
		n, ok := v.([]models.Nominee)
		if ok {
			snap.Nominees = n
		}
		return ok
	})

	snap.LastCheckIn = base.LastCheckIn
	fill(contract.ReadLastCheckIn, func(v any) bool {
		n, ok := v.(uint64)
		if ok {
			snap.LastCheckIn = n
		}
		return ok
	})

	snap.InactivityPeriod = base.InactivityPeriod
	fill(contract.ReadInactivityPeriod, func(v any) bool {
		n, ok := v.(uint64)
		if ok {
			snap.InactivityPeriod = n
		}
		return ok
	})

	snap.Inheritances = base.Inheritances
	fill(contract.ReadInheritances, func(v any) bool {
		in, ok := v.([]models.Inheritance)
		if ok {
			snap.Inheritances = in
		}
		return ok
	})

	return snap, degraded, nil
}

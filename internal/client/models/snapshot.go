// Package models defines the client-side view of a user's will as read from
// the contract.
package models

import (
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// MaxShareHundredths is 100% expressed in hundredths of a percent.
const MaxShareHundredths = 10000

// Nominee is a beneficiary registered by a depositor. ShareHundredths is the
// on-chain share in hundredths of a percent, so 2550 means 25.50%.
type Nominee struct {
	Name            string
	Relation        string
	Address         common.Address
	ShareHundredths uint64
}

// Inheritance is one incoming allocation seen from the nominee's side.
type Inheritance struct {
	DepositorName             string
	DepositorAddress          common.Address
	ShareHundredths           uint64
	AbsoluteShareAmount       *big.Int
	InactivityThresholdPeriod uint64
	TimeUntilUnlock           uint64
	IsLocked                  bool
}

// UserSnapshot is the result of one aggregation cycle.
//
// When IsNewUser is true the remaining fields carry no information and must
// not be read.
type UserSnapshot struct {
	IsNewUser        bool
	Name             string
	IsActive         bool
	Balance          *big.Int
	Nominees         []Nominee
	LastCheckIn      uint64
	InactivityPeriod uint64
	Inheritances     []Inheritance
}

// Clone returns a deep copy, so callers holding a snapshot never observe a
// later replacement.
func (s *UserSnapshot) Clone() *UserSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Balance != nil {
		c.Balance = new(big.Int).Set(s.Balance)
	}
	c.Nominees = slices.Clone(s.Nominees)
	c.Inheritances = make([]Inheritance, len(s.Inheritances))
	for i, in := range s.Inheritances {
		c.Inheritances[i] = in
		if in.AbsoluteShareAmount != nil {
			c.Inheritances[i].AbsoluteShareAmount = new(big.Int).Set(in.AbsoluteShareAmount)
		}
	}
	if s.Inheritances == nil {
		c.Inheritances = nil
	}
	return &c
}

// AllocatedHundredths sums the nominees' shares.
func (s *UserSnapshot) AllocatedHundredths() uint64 {
	var total uint64
	for _, n := range s.Nominees {
		total += n.ShareHundredths
	}
	return total
}

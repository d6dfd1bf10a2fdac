package models

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestUserSnapshot_CloneIsDeep(t *testing.T) {
	orig := &UserSnapshot{
		Name:     "alice",
		IsActive: true,
		Balance:  big.NewInt(42),
		Nominees: []Nominee{{Name: "bob", Relation: "son", Address: common.HexToAddress("0x01"), ShareHundredths: 2550}},
		Inheritances: []Inheritance{{
			DepositorName:       "carol",
			AbsoluteShareAmount: big.NewInt(7),
		}},
	}

	c := orig.Clone()
	c.Balance.SetInt64(1)
	c.Nominees[0].Name = "changed"
	c.Inheritances[0].AbsoluteShareAmount.SetInt64(0)

	assert.Equal(t, int64(42), orig.Balance.Int64())
	assert.Equal(t, "bob", orig.Nominees[0].Name)
	assert.Equal(t, int64(7), orig.Inheritances[0].AbsoluteShareAmount.Int64())
}

func TestUserSnapshot_CloneNil(t *testing.T) {
	var s *UserSnapshot
	assert.Nil(t, s.Clone())
}

func TestUserSnapshot_AllocatedHundredths(t *testing.T) {
	s := &UserSnapshot{Nominees: []Nominee{{ShareHundredths: 2550}, {ShareHundredths: 7450}}}
	assert.Equal(t, uint64(MaxShareHundredths), s.AllocatedHundredths())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("amount", "Amount is required")
	assert.Equal(t, "amount: Amount is required", err.Error())
}

// Package forms parses and validates what the user types into the action
// surfaces. Problems come back as *models.ValidationError and are shown next
// to the input, never as notifications.
package forms

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/shopspring/decimal"
)

const (
	FieldAmount = "amount"
	FieldDays   = "days"
	FieldName   = "name"
)

const (
	MsgAmountRequired = "Amount is required"
	MsgAmountFormat   = "Invalid number format"
	MsgAmountPositive = "Amount must be greater than 0"

	MsgExceedsBalance     = "Amount exceeds wallet balance"
	MsgExceedsDeposit     = "Amount exceeds deposited balance"
	MsgExceedsInheritance = "Amount exceeds available inheritance"
)

// ether amounts: digits, an optional point, at most 18 fractional digits.
var amountRe = regexp.MustCompile(`^\d*\.?\d{0,18}$`)

const etherDecimals = 18

// ParseAmount converts an ether amount to wei and checks it against limit.
// A nil limit disables the upper bound; limitMsg is reported when exceeded.
func ParseAmount(value string, limit *big.Int, limitMsg string) (*big.Int, error) {
	if value == "" {
		return nil, models.NewValidationError(FieldAmount, MsgAmountRequired)
	}
	if value == "." || !amountRe.MatchString(value) {
		return nil, models.NewValidationError(FieldAmount, MsgAmountFormat)
	}

	normalized := value
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	normalized = strings.TrimSuffix(normalized, ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, models.NewValidationError(FieldAmount, MsgAmountFormat)
	}
	if !d.IsPositive() {
		return nil, models.NewValidationError(FieldAmount, MsgAmountPositive)
	}

	wei := d.Shift(etherDecimals).BigInt()
	if limit != nil && wei.Cmp(limit) > 0 {
		return nil, models.NewValidationError(FieldAmount, limitMsg)
	}
	return wei, nil
}

// Package nominees keeps an editable nominee list consistent: every row
// valid on its own and the shares summing to at most 100%.
package nominees

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Field string

const (
	FieldName     Field = "name"
	FieldRelation Field = "relation"
	FieldAddress  Field = "address"
	FieldShare    Field = "sharePercent"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldRelation, FieldAddress, FieldShare}

const (
	MsgName        = "Name must be atleast 2 characters long"
	MsgRelation    = "Relation must be atleast 2 characters long"
	MsgAddress     = "Invalid wallet address"
	MsgOwnAddress  = "Cannot use your own address as nominee"
	MsgShareRange  = "Share must be between 0 and 100 (0 excluded)"
	MsgShareTotal  = "Total share cannot exceed 100%"
	MsgMaxNominees = "Maximum 30 nominees allowed"
)

var hundred = decimal.NewFromInt(100)

// Row is one nominee being edited. Errors holds a message per invalid field.
type Row struct {
	Name     string
	Relation string
	Address  string
	Share    string
	Errors   map[Field]string
}

func (r Row) value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldRelation:
		return r.Relation
	case FieldAddress:
		return r.Address
	case FieldShare:
		return r.Share
	}
	return ""
}

// HasErrors reports whether any field carries a message.
func (r Row) HasErrors() bool {
	for _, msg := range r.Errors {
		if msg != "" {
			return true
		}
	}
	return false
}

// Complete reports whether all four fields are filled in.
func (r Row) Complete() bool {
	for _, f := range Fields {
		if r.value(f) == "" {
			return false
		}
	}
	return true
}

// parseShare returns the share and whether it parsed at all.
func parseShare(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ValidAddress accepts 0x-prefixed 40-hex-digit addresses. Mixed-case input
// must carry a correct EIP-55 checksum.
func ValidAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

// ValidateRow checks rows[index] on its own and against the shares of every
// other row. Only the row at index is judged; earlier rows keep their errors.
func ValidateRow(row Row, index int, rows []Row, owner common.Address) map[Field]string {
	errs := map[Field]string{}

	if utf8.RuneCountInString(strings.TrimSpace(row.Name)) < 2 {
		errs[FieldName] = MsgName
	}
	if utf8.RuneCountInString(strings.TrimSpace(row.Relation)) < 2 {
		errs[FieldRelation] = MsgRelation
	}

	switch {
	case !ValidAddress(row.Address):
		errs[FieldAddress] = MsgAddress
	case common.HexToAddress(row.Address) == owner:
		errs[FieldAddress] = MsgOwnAddress
	}

	share, ok := parseShare(row.Share)
	if !ok || !share.IsPositive() || share.GreaterThan(hundred) {
		errs[FieldShare] = MsgShareRange
	} else {
		others := decimal.Zero
		for i, r := range rows {
			if i == index {
				continue
			}
			if s, ok := parseShare(r.Share); ok {
				others = others.Add(s)
			}
		}
		if share.Add(others).GreaterThan(hundred) {
			errs[FieldShare] = MsgShareTotal
		}
	}

	return errs
}

// TotalShare sums every row's share, counting unparsable ones as zero, and
// rounds to two decimals.
func TotalShare(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if s, ok := parseShare(r.Share); ok {
			total = total.Add(s)
		}
	}
	return total.Round(2)
}

// CanSubmit is true when no row has errors, every row is complete and the
// total does not exceed 100.
func CanSubmit(rows []Row) bool {
	for _, r := range rows {
		if r.HasErrors() || !r.Complete() {
			return false
		}
		if s, ok := parseShare(r.Share); !ok || !s.IsPositive() || s.GreaterThan(hundred) {
			return false
		}
	}
	return !TotalShare(rows).GreaterThan(hundred)
}

// AllocationNote describes the total: a warning below 100, an error above,
// nothing at exactly 100.
func AllocationNote(total decimal.Decimal) string {
	switch {
	case total.IsZero():
		return "Warning: You have not allocated any portion of your deposit. " +
			"Please add nominees to ensure that your funds are appropriately distributed in the event of your inactivity."
	case total.LessThan(hundred):
		return fmt.Sprintf("Warning: Only %s%% of your wealth is allocated. The remaining %s%% will be locked in the contract if you become inactive.",
			total.String(), hundred.Sub(total).StringFixed(2))
	case total.GreaterThan(hundred):
		return "Error: Total allocation exceeds 100%. Please adjust the share percentages."
	}
	return ""
}

package nominees

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const MaxRows = 30

var (
	ErrTooMany      = errors.New(MsgMaxNominees)
	ErrIndex        = errors.New("no such nominee row")
	ErrUnknownField = errors.New("unknown field")
	ErrNotReady     = errors.New("nominee list has errors")
)

// Editor is the edit buffer behind the nominee management surface. It is
// seeded from the snapshot and discarded when the surface closes.
type Editor struct {
	owner common.Address
	rows  []Row
}

func NewEditor(owner common.Address, current []models.Nominee) *Editor {
	e := &Editor{owner: owner, rows: make([]Row, 0, len(current))}
	for _, n := range current {
		e.rows = append(e.rows, Row{
			Name:     n.Name,
			Relation: n.Relation,
			Address:  n.Address.Hex(),
			Share:    FormatHundredths(n.ShareHundredths),
		})
	}
	return e
}

// FormatHundredths renders 2550 as "25.50".
func FormatHundredths(h uint64) string {
	return decimal.New(int64(h), -2).StringFixed(2)
}

// ToHundredths converts a share such as "25.5" to 2550.
func ToHundredths(share string) (uint64, error) {
	d, ok := parseShare(share)
	if !ok || d.IsNegative() {
		return 0, fmt.Errorf("invalid share %q", share)
	}
	return uint64(d.Mul(hundred).Round(0).IntPart()), nil
}

// Rows returns a copy of the buffer.
func (e *Editor) Rows() []Row {
	out := make([]Row, len(e.rows))
	for i, r := range e.rows {
		out[i] = r
		if r.Errors != nil {
			out[i].Errors = make(map[Field]string, len(r.Errors))
			for k, v := range r.Errors {
				out[i].Errors[k] = v
			}
		}
	}
	return out
}

func (e *Editor) Len() int { return len(e.rows) }

// Add appends an empty row. The 31st row is refused and nothing changes.
func (e *Editor) Add() error {
	if len(e.rows) >= MaxRows {
		return ErrTooMany
	}
	e.rows = append(e.rows, Row{})
	return nil
}

// Remove drops row i. Rows that were already flagged are checked again, so
// an overflow cleared by the removal stops being reported.
func (e *Editor) Remove(i int) error {
	if i < 0 || i >= len(e.rows) {
		return ErrIndex
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	for j := range e.rows {
		if e.rows[j].HasErrors() {
			e.rows[j].Errors = ValidateRow(e.rows[j], j, e.rows, e.owner)
		}
	}
	return nil
}

// Set writes one field and re-validates that row. Shares are rounded to two
// decimals first; trailing zeros are dropped the way a number input shows them.
func (e *Editor) Set(i int, f Field, value string) error {
	if i < 0 || i >= len(e.rows) {
		return ErrIndex
	}
	r := &e.rows[i]
	switch f {
	case FieldName:
		r.Name = value
	case FieldRelation:
		r.Relation = value
	case FieldAddress:
		r.Address = strings.TrimSpace(value)
	case FieldShare:
		r.Share = normalizeShare(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	r.Errors = ValidateRow(*r, i, e.rows, e.owner)
	return nil
}

func normalizeShare(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	d, ok := parseShare(value)
	if !ok {
		return value
	}
	return d.Round(2).String()
}

func (e *Editor) Total() decimal.Decimal { return TotalShare(e.rows) }

func (e *Editor) CanSubmit() bool { return CanSubmit(e.rows) }

func (e *Editor) Note() string { return AllocationNote(e.Total()) }

// Nominees converts the buffer into the list that replaces the on-chain one.
// Names and relations are trimmed.
func (e *Editor) Nominees() ([]models.Nominee, error) {
	if !e.CanSubmit() {
		return nil, ErrNotReady
	}
	out := make([]models.Nominee, len(e.rows))
	for i, r := range e.rows {
		h, err := ToHundredths(r.Share)
		if err != nil {
			return nil, err
		}
		out[i] = models.Nominee{
			Name:            strings.TrimSpace(r.Name),
			Relation:        strings.TrimSpace(r.Relation),
			Address:         common.HexToAddress(r.Address),
			ShareHundredths: h,
		}
	}
	return out, nil
}

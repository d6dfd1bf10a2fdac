package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
)

type SortKey string

const (
	SortByUnlock SortKey = "unlock"
	SortByAmount SortKey = "amount"
	SortByShare  SortKey = "share"
	SortByName   SortKey = "name"
)

// SortInheritances returns a sorted copy. Unknown keys sort by unlock time.
func SortInheritances(list []models.Inheritance, key SortKey, asc bool) []models.Inheritance {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b models.Inheritance) int {
		var c int
		switch key {
		case SortByAmount:
			c = compareWei(a, b)
		case SortByShare:
			c = cmp.Compare(a.ShareHundredths, b.ShareHundredths)
		case SortByName:
			c = strings.Compare(a.DepositorName, b.DepositorName)
		default:
			c = cmp.Compare(a.TimeUntilUnlock, b.TimeUntilUnlock)
		}
		if !asc {
			c = -c
		}
		return c
	})
	return out
}

func compareWei(a, b models.Inheritance) int {
	switch {
	case a.AbsoluteShareAmount == nil && b.AbsoluteShareAmount == nil:
		return 0
	case a.AbsoluteShareAmount == nil:
		return -1
	case b.AbsoluteShareAmount == nil:
		return 1
	}
	return a.AbsoluteShareAmount.Cmp(b.AbsoluteShareAmount)
}

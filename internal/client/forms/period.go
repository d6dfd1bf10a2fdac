package forms

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
)

const (
	MinDays        = 3
	MaxYears       = 20
	MaxDays        = MaxYears * 365
	SecondsPerDay  = 24 * 60 * 60
	MsgDaysMissing = "Inactivity period is required"
	MsgDaysWhole   = "Please enter a whole number of days"
)

var (
	MsgDaysMin = fmt.Sprintf("Minimum inactivity period is %d days", MinDays)
	MsgDaysMax = fmt.Sprintf("Maximum inactivity period is %d years (%d days)", MaxYears, MaxDays)
)

// QuickPick is a preset inactivity period.
type QuickPick struct {
	Label string
	Days  int
}

var QuickPicks = []QuickPick{
	{"1 Year", 365},
	{"2 Years", 730},
	{"5 Years", 1825},
	{"20 Years", 7300},
}

// ParseDays validates a whole number of days and returns it in seconds.
func ParseDays(value string) (uint64, error) {
	if value == "" {
		return 0, models.NewValidationError(FieldDays, MsgDaysMissing)
	}
	days, err := strconv.Atoi(value)
	if err != nil {
		return 0, models.NewValidationError(FieldDays, MsgDaysWhole)
	}
	if days < MinDays {
		return 0, models.NewValidationError(FieldDays, MsgDaysMin)
	}
	if days > MaxDays {
		return 0, models.NewValidationError(FieldDays, MsgDaysMax)
	}
	return uint64(days) * SecondsPerDay, nil
}

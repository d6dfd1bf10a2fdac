// Package view turns snapshot values into the strings the terminal shows.
package view

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

// FormatEther renders wei as ether without trailing zeros. nil is "0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}

// FormatPercent renders hundredths of a percent as "25.50".
func FormatPercent(hundredths uint64) string {
	return decimal.New(int64(hundredths), -2).StringFixed(2)
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// FormatPeriod renders an elapsed time coarsely. Hours only show below a
// month, minutes only below a day. Days are counted within the current
// 30-day month. Under a minute it is "few moments".
func FormatPeriod(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	years := seconds / secondsPerYear
	months := (seconds % secondsPerYear) / secondsPerMonth
	days := (seconds % secondsPerMonth) / secondsPerDay
	hours := (seconds % secondsPerDay) / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 && years == 0 && months == 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 && years == 0 && months == 0 && days == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	if len(parts) == 0 {
		return "few moments"
	}
	return strings.Join(parts, ", ")
}

// SinceCheckIn renders the time since lastCheckIn, or "Never" when unset.
func SinceCheckIn(lastCheckIn uint64, now time.Time) string {
	if lastCheckIn == 0 {
		return "Never"
	}
	return FormatPeriod(now.Unix()-int64(lastCheckIn)) + " ago"
}

// approxDuration breaks whole days into years, 30-day months and days. Below
// a month there is nothing to add, so it returns "".
func approxDuration(days uint64) string {
	years := days / 365
	rest := days % 365
	months := rest / 30
	remaining := rest % 30

	if years == 0 && months == 0 {
		return ""
	}

	var parts []string
	if years > 0 {
		parts = append(parts, plural(int64(years), "year"))
	}
	if months > 0 {
		parts = append(parts, plural(int64(months), "month"))
	}
	if remaining > 0 {
		parts = append(parts, plural(int64(remaining), "day"))
	}
	return "(~" + strings.Join(parts, ", ") + ")"
}

// FormatDays renders seconds as whole days plus an approximate breakdown.
// With roundUp any partial day counts as a full one.
func FormatDays(seconds uint64, roundUp bool) string {
	days := seconds / secondsPerDay
	if roundUp && seconds%secondsPerDay != 0 {
		days++
	}

	unit := "day"
	if days > 1 {
		unit = "days"
	}
	s := fmt.Sprintf("%d %s", days, unit)
	if approx := approxDuration(days); approx != "" {
		s += " " + approx
	}
	return s
}

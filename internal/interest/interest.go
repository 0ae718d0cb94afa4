// Package interest computes time-based interest. Everything here is a pure
// function of (principal, rate, elapsed time): re-running with the same asOf
// yields the same result, which is what lets callers accrue lazily at read
// time against a stale-but-consistent snapshot.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

type Compounding string

const (
	Simple Compounding = "simple"
	Daily  Compounding = "daily"
)

var (
	one           = decimal.NewFromInt(1)
	bpsDivisor    = decimal.NewFromInt(10000)
	daysPerYear   = decimal.NewFromInt(365)
	secondsPerDay = decimal.NewFromInt(86400)
)

// Accrue returns the interest earned on principal between from and to at
// rateBps per annum, ACT/365. Zero when to is not after from, or when
// principal or rate is not positive. Simple interest is
// principal × rate × elapsedDays/365; daily compounding grows the balance by
// (1 + rate/365) per whole elapsed day with a simple-interest remainder for
// the fractional day.
func Accrue(principal decimal.Decimal, rateBps int64, from, to time.Time, c Compounding) decimal.Decimal {
	if !to.After(from) || principal.Sign() <= 0 || rateBps <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromInt(rateBps).Div(bpsDivisor)
	elapsedSecs := int64(to.Sub(from) / time.Second)
	elapsedDays := decimal.NewFromInt(elapsedSecs).Div(secondsPerDay)

	if c == Daily {
		wholeDays := elapsedSecs / 86400
		daily := rate.Div(daysPerYear)
		grown := principal.Mul(one.Add(daily).Pow(decimal.NewFromInt(wholeDays)))
		frac := elapsedDays.Sub(decimal.NewFromInt(wholeDays))
		return grown.Sub(principal).Add(grown.Mul(daily).Mul(frac))
	}
	return principal.Mul(rate).Mul(elapsedDays).Div(daysPerYear)
}

// Quantize rounds an accrual to the currency's minor unit, half up. Settled
// interest is always quantized so a payoff amount is representable on-ledger.
func Quantize(d decimal.Decimal, minorUnit int32) decimal.Decimal {
	return d.Round(minorUnit)
}

// Package credit derives borrowing capacity from deposited collateral.
package credit

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid collateral input")

var bpsDivisor = decimal.NewFromInt(10000)

// Limit returns the maximum borrowable principal for the given collateral:
// collateral × ltvBps/10000, floored to the currency's minor unit. ltvBps is
// a policy knob (5000 = 50%) so risk tiers can vary it without code changes.
func Limit(collateral decimal.Decimal, ltvBps int64, minorUnit int32) (decimal.Decimal, error) {
	if collateral.Sign() < 0 || ltvBps < 0 {
		return decimal.Decimal{}, ErrInvalidInput
	}
	return collateral.Mul(decimal.NewFromInt(ltvBps)).Div(bpsDivisor).RoundFloor(minorUnit), nil
}

// RequiredCollateral is the inverse of Limit: the collateral that must stay
// locked to secure an outstanding principal, ceiled to the minor unit so the
// position never ends up under-collateralized by a rounding step.
func RequiredCollateral(principal decimal.Decimal, ltvBps int64, minorUnit int32) (decimal.Decimal, error) {
	if principal.Sign() < 0 || ltvBps <= 0 {
		return decimal.Decimal{}, ErrInvalidInput
	}
	return principal.Mul(bpsDivisor).Div(decimal.NewFromInt(ltvBps)).RoundCeil(minorUnit), nil
}

package credit

import (
	"github.com/shopspring/decimal"
)

// MonthlyInstallment computes the fixed EMI that amortizes principal over
// tenureMonths at the given annual interest rate (percent).
//
// A zero rate degenerates to a plain division. Otherwise the compound
// interest formula P*r*(1+r)^n / ((1+r)^n - 1) is applied with r as the
// monthly fractional rate, and the result is rounded to 2 decimal places,
// half away from zero.
//
// tenureMonths >= 1 is a precondition enforced by request validation.
func MonthlyInstallment(principal decimal.Decimal, tenureMonths int, annualRatePercent float64) decimal.Decimal {
	n := decimal.NewFromInt(int64(tenureMonths))

	if annualRatePercent == 0 {
		return principal.Div(n)
	}

	r := decimal.NewFromFloat(annualRatePercent).Div(decimal.NewFromInt(1200))
	compound := decimal.NewFromInt(1).Add(r).Pow(n)

	emi := principal.Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
	return emi.Round(2)
}

package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/credisys/credit-approval/internal/domain"
)

// Score derives a 0-100 credit score from a customer's approved limit and
// loan history. The reference date is passed in so the result is
// deterministic; nothing here reads the wall clock.
func Score(approvedLimit decimal.Decimal, loans []domain.Loan, today time.Time) int {
	sumActive := decimal.Zero
	for _, l := range loans {
		if l.Active(today) {
			sumActive = sumActive.Add(l.LoanAmount)
		}
	}

	// Breaching the approved limit zeroes the score outright.
	if sumActive.GreaterThan(approvedLimit) {
		return 0
	}

	numLoans := len(loans)

	totalTenure := 0
	totalOnTime := 0
	loansThisYear := 0
	approvedVolume := decimal.Zero
	for _, l := range loans {
		totalTenure += l.Tenure
		totalOnTime += l.EMIsPaidOnTime
		if l.DateOfApproval.Year() == today.Year() {
			loansThisYear++
		}
		approvedVolume = approvedVolume.Add(l.LoanAmount)
	}
	if totalTenure == 0 {
		totalTenure = 1
	}

	onTimeRatio := float64(totalOnTime) / float64(totalTenure)
	utilization := approvedVolume.InexactFloat64() / approvedLimit.InexactFloat64()

	score := 0.0
	score += minf(30, onTimeRatio*30)
	score += minf(20, maxf(0, float64(20-numLoans)))
	score += minf(20, float64(loansThisYear*4))
	score += minf(30, maxf(0, 30-utilization*30))

	return int(minf(100, score))
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

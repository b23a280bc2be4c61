package credit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/credisys/credit-approval/internal/credit"
	"github.com/credisys/credit-approval/internal/domain"
)

var testToday = time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)

func activeLoan(amount float64, tenure, onTime int, approved time.Time) domain.Loan {
	return domain.Loan{
		LoanAmount:     decimal.NewFromFloat(amount),
		Tenure:         tenure,
		EMIsPaidOnTime: onTime,
		MonthlyPayment: decimal.NewFromFloat(amount / float64(tenure)),
		DateOfApproval: approved,
		EndDate:        approved.AddDate(0, tenure, 0),
	}
}

func TestScore_NoHistoryIsFifty(t *testing.T) {
	// 0 punctuality + 20 count + 0 recent + 30 utilization
	score := credit.Score(decimal.NewFromInt(2160000), nil, testToday)
	assert.Equal(t, 50, score)
}

func TestScore_LimitBreachShortCircuits(t *testing.T) {
	limit := decimal.NewFromInt(100000)
	loans := []domain.Loan{
		// perfect repayment history, still zeroed by the breach
		activeLoan(150000, 12, 12, testToday.AddDate(0, -1, 0)),
	}
	assert.Equal(t, 0, credit.Score(limit, loans, testToday))
}

func TestScore_GoodHistoryScoresHigh(t *testing.T) {
	limit := decimal.NewFromInt(2160000)
	loans := []domain.Loan{
		activeLoan(100000, 12, 12, testToday.AddDate(0, -2, 0)),
	}

	// 30 punctuality + 19 count + 4 recent + ~28.6 utilization, truncated
	assert.Equal(t, 81, credit.Score(limit, loans, testToday))
}

func TestScore_OldInactiveLoanDropsRecentActivity(t *testing.T) {
	limit := decimal.NewFromInt(2160000)
	ended := testToday.AddDate(-2, 0, 0)
	loans := []domain.Loan{
		activeLoan(100000, 12, 12, ended),
	}

	assert.Equal(t, 77, credit.Score(limit, loans, testToday))
}

func TestScore_ManyLoansErodeCountTerm(t *testing.T) {
	limit := decimal.NewFromInt(10000000)
	var loans []domain.Loan
	for range 25 {
		loans = append(loans, activeLoan(10000, 12, 12, testToday.AddDate(-1, -1, 0)))
	}

	// count term bottoms out at 0 instead of going negative
	got := credit.Score(limit, loans, testToday)
	assert.GreaterOrEqual(t, got, 0)
	assert.LessOrEqual(t, got, 100)
	// 30 punctuality + 0 count + 0 recent + ~29.25 utilization
	assert.Equal(t, 59, got)
}

func TestScore_AlwaysWithinRange(t *testing.T) {
	limits := []decimal.Decimal{
		decimal.NewFromInt(100000),
		decimal.NewFromInt(2500000),
		decimal.NewFromInt(100000000),
	}
	histories := [][]domain.Loan{
		nil,
		{activeLoan(50000, 6, 0, testToday)},
		{activeLoan(2400000, 36, 36, testToday.AddDate(0, -6, 0)), activeLoan(90000, 12, 3, testToday)},
	}

	for _, limit := range limits {
		for _, loans := range histories {
			got := credit.Score(limit, loans, testToday)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

package credit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/credisys/credit-approval/internal/credit"
)

func TestMonthlyInstallment_ZeroRate(t *testing.T) {
	// rate 0 must be a plain division of principal by tenure
	cases := []struct {
		principal float64
		tenure    int
	}{
		{100000, 12},
		{50000, 10},
		{999.99, 3},
	}

	for _, tc := range cases {
		got := credit.MonthlyInstallment(decimal.NewFromFloat(tc.principal), tc.tenure, 0)
		want := decimal.NewFromFloat(tc.principal).Div(decimal.NewFromInt(int64(tc.tenure)))
		assert.True(t, got.Equal(want), "principal=%v tenure=%d: got %s want %s", tc.principal, tc.tenure, got, want)
	}
}

func TestMonthlyInstallment_CompoundFormula(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		tenure    int
		rate      float64
		want      string
	}{
		{"12 months at 18%", 100000, 12, 18, "9168"},
		{"24 months at 15%", 500000, 24, 15, "24243.32"},
		{"12 months at 12%", 100000, 12, 12, "8884.88"},
		{"10 months at 16%", 50000, 10, 16, "5373.95"},
		{"36 months at 12.5%", 200000, 36, 12.5, "6690.73"},
		{"6 months at 10%", 120000, 6, 10, "20587.37"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := credit.MonthlyInstallment(decimal.NewFromFloat(tc.principal), tc.tenure, tc.rate)
			want, err := decimal.NewFromString(tc.want)
			assert.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestMonthlyInstallment_MonotonicInRate(t *testing.T) {
	principal := decimal.NewFromInt(250000)
	tenure := 18

	prev := credit.MonthlyInstallment(principal, tenure, 0)
	for _, rate := range []float64{1, 5, 10, 12, 16, 20, 30} {
		cur := credit.MonthlyInstallment(principal, tenure, rate)
		assert.True(t, cur.GreaterThanOrEqual(prev), "EMI decreased from %s to %s at rate %v", prev, cur, rate)
		prev = cur
	}
}

func TestMonthlyInstallment_MonotonicInTenure(t *testing.T) {
	principal := decimal.NewFromInt(250000)
	rate := 14.0

	prev := credit.MonthlyInstallment(principal, 1, rate)
	for tenure := 2; tenure <= 48; tenure++ {
		cur := credit.MonthlyInstallment(principal, tenure, rate)
		assert.True(t, cur.LessThanOrEqual(prev), "EMI increased from %s to %s at tenure %d", prev, cur, tenure)
		prev = cur
	}
}

package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

type Role string

const (
	AdminRole   Role = "admin"
	PartnerRole Role = "partner"
)

type Customer struct {
	ID            uint64
	FirstName     string
	LastName      string
	Age           *int
	PhoneNumber   string
	MonthlySalary decimal.Decimal
	ApprovedLimit decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Loans []Loan
}

type Loan struct {
	ID             uint64
	CustomerID     uint64
	LoanAmount     decimal.Decimal
	Tenure         int
	InterestRate   float64
	MonthlyPayment decimal.Decimal
	EMIsPaidOnTime int
	DateOfApproval time.Time
	EndDate        time.Time
}

// Active reports whether the loan is still running as of the reference date.
func (l Loan) Active(today time.Time) bool {
	return !l.EndDate.Before(truncateToDate(today))
}

// RepaymentsLeft is the number of EMIs still owed on the loan.
func (l Loan) RepaymentsLeft() int {
	left := l.Tenure - l.EMIsPaidOnTime
	if left < 0 {
		return 0
	}
	return left
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type JwtCustomClaims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

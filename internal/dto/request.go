package dto

import (
	"github.com/shopspring/decimal"

	"github.com/credisys/credit-approval/internal/credit"
	"github.com/credisys/credit-approval/internal/domain"
)

type Register struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Age           *int    `json:"age,omitempty" validate:"omitempty,gte=18,lte=120"`
	PhoneNumber   string  `json:"phone_number" validate:"required,min=7,max=20"`
	MonthlyIncome float64 `json:"monthly_income" validate:"required,gt=0"`
}

type CheckEligibility struct {
	CustomerID   uint64  `json:"customer_id" validate:"required"`
	LoanAmount   float64 `json:"loan_amount" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	Tenure       int     `json:"tenure" validate:"required,gte=1"`
}

type CreateLoan struct {
	CustomerID   uint64  `json:"customer_id" validate:"required"`
	LoanAmount   float64 `json:"loan_amount" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	Tenure       int     `json:"tenure" validate:"required,gte=1"`
}

type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CustomerRow is one row of a customer spreadsheet import.
type CustomerRow struct {
	CustomerID    uint64
	FirstName     string
	LastName      string
	Age           *int
	PhoneNumber   string
	MonthlySalary float64
	ApprovedLimit float64
}

// LoanRow is one row of a loan spreadsheet import.
type LoanRow struct {
	CustomerID     uint64
	LoanID         uint64
	LoanAmount     float64
	Tenure         int
	InterestRate   float64
	MonthlyPayment float64
	EMIsPaidOnTime int
	DateOfApproval string
	EndDate        string
}

// --- Mapping --- //

func RegisterToEntity(req Register) *domain.Customer {
	salary := decimal.NewFromFloat(req.MonthlyIncome)
	return &domain.Customer{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Age:           req.Age,
		PhoneNumber:   req.PhoneNumber,
		MonthlySalary: salary,
		ApprovedLimit: credit.ApprovedLimitFromSalary(salary),
	}
}

func (r CheckEligibility) ToLoanRequest() credit.LoanRequest {
	return credit.LoanRequest{
		Amount:       decimal.NewFromFloat(r.LoanAmount),
		AnnualRate:   r.InterestRate,
		TenureMonths: r.Tenure,
	}
}

func (r CreateLoan) ToLoanRequest() credit.LoanRequest {
	return credit.LoanRequest{
		Amount:       decimal.NewFromFloat(r.LoanAmount),
		AnnualRate:   r.InterestRate,
		TenureMonths: r.Tenure,
	}
}

package dto

import (
	"fmt"

	"github.com/credisys/credit-approval/internal/credit"
	"github.com/credisys/credit-approval/internal/domain"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type CustomerResponse struct {
	CustomerID    uint64  `json:"customer_id"`
	Name          string  `json:"name"`
	Age           *int    `json:"age,omitempty"`
	MonthlyIncome float64 `json:"monthly_income"`
	ApprovedLimit float64 `json:"approved_limit"`
	PhoneNumber   string  `json:"phone_number"`
}

type EligibilityResponse struct {
	CustomerID            uint64  `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
}

type CreateLoanResponse struct {
	LoanID             *uint64 `json:"loan_id"`
	CustomerID         uint64  `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

type CustomerSummary struct {
	ID          uint64 `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         *int   `json:"age,omitempty"`
}

type LoanDetailResponse struct {
	LoanID             uint64          `json:"loan_id"`
	Customer           CustomerSummary `json:"customer"`
	LoanAmount         float64         `json:"loan_amount"`
	InterestRate       float64         `json:"interest_rate"`
	MonthlyInstallment float64         `json:"monthly_installment"`
	Tenure             int             `json:"tenure"`
}

type CustomerLoanItem struct {
	LoanID             uint64  `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

type IngestSummary struct {
	Upserted int      `json:"upserted"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// --- Mapping --- //

func CustomerToResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:    c.ID,
		Name:          fmt.Sprintf("%s %s", c.FirstName, c.LastName),
		Age:           c.Age,
		MonthlyIncome: c.MonthlySalary.InexactFloat64(),
		ApprovedLimit: c.ApprovedLimit.InexactFloat64(),
		PhoneNumber:   c.PhoneNumber,
	}
}

func DecisionToEligibilityResponse(customerID uint64, tenure int, d credit.Decision) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            customerID,
		Approval:              d.Approved,
		InterestRate:          d.RequestedRate,
		CorrectedInterestRate: d.CorrectedRate,
		Tenure:                tenure,
		MonthlyInstallment:    d.Installment.InexactFloat64(),
	}
}

func LoanToDetailResponse(l *domain.Loan, c *domain.Customer) LoanDetailResponse {
	return LoanDetailResponse{
		LoanID: l.ID,
		Customer: CustomerSummary{
			ID:          c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Age:         c.Age,
		},
		LoanAmount:         l.LoanAmount.InexactFloat64(),
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyPayment.InexactFloat64(),
		Tenure:             l.Tenure,
	}
}

func LoansToItems(loans []domain.Loan) []CustomerLoanItem {
	items := make([]CustomerLoanItem, len(loans))
	for i, l := range loans {
		items[i] = CustomerLoanItem{
			LoanID:             l.ID,
			LoanAmount:         l.LoanAmount.InexactFloat64(),
			InterestRate:       l.InterestRate,
			MonthlyInstallment: l.MonthlyPayment.InexactFloat64(),
			RepaymentsLeft:     l.RepaymentsLeft(),
		}
	}
	return items
}

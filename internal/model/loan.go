package model

import (
	"github.com/credisys/credit-approval/internal/domain"
)

func LoanFromEntity(data *domain.Loan) Loan {
	return Loan{
		ID:             data.ID,
		CustomerID:     data.CustomerID,
		LoanAmount:     data.LoanAmount,
		Tenure:         data.Tenure,
		InterestRate:   data.InterestRate,
		MonthlyPayment: data.MonthlyPayment,
		EMIsPaidOnTime: data.EMIsPaidOnTime,
		DateOfApproval: data.DateOfApproval,
		EndDate:        data.EndDate,
	}
}

func LoanToEntity(data Loan) *domain.Loan {
	return &domain.Loan{
		ID:             data.ID,
		CustomerID:     data.CustomerID,
		LoanAmount:     data.LoanAmount,
		Tenure:         data.Tenure,
		InterestRate:   data.InterestRate,
		MonthlyPayment: data.MonthlyPayment,
		EMIsPaidOnTime: data.EMIsPaidOnTime,
		DateOfApproval: data.DateOfApproval,
		EndDate:        data.EndDate,
	}
}

func LoansToEntity(data []Loan) []domain.Loan {
	responses := make([]domain.Loan, len(data))
	for i, l := range data {
		responses[i] = *LoanToEntity(l)
	}

	return responses
}

package service

import (
	"context"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
)

type RegistrationService interface {
	Register(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error)
}

type LoanService interface {
	// CheckEligibility runs the decision procedure read-only; rejections are
	// outcomes, not errors.
	CheckEligibility(ctx context.Context, req dto.CheckEligibility) (*dto.EligibilityResponse, error)
	// CreateLoan runs the decision in commit mode and persists the loan on
	// approval, inside a transaction with the customer row locked.
	CreateLoan(ctx context.Context, req dto.CreateLoan) (*dto.CreateLoanResponse, error)
	GetLoan(ctx context.Context, loanID uint64) (*dto.LoanDetailResponse, error)
	ListCustomerLoans(ctx context.Context, customerID uint64) ([]dto.CustomerLoanItem, error)
}

type IngestService interface {
	IngestCustomers(ctx context.Context, rows []dto.CustomerRow) (*dto.IngestSummary, error)
	IngestLoans(ctx context.Context, rows []dto.LoanRow) (*dto.IngestSummary, error)
}

type AuthService interface {
	Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error)
}

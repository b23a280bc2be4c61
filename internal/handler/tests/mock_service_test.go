package handler_test

import (
	"context"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
)

type MockRegistrationService struct {
	MockRegisterResult    *domain.Customer
	MockGetCustomerResult *domain.Customer
	MockError             error
}

func (m *MockRegistrationService) Register(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockRegisterResult, nil
}

func (m *MockRegistrationService) GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockGetCustomerResult, nil
}

type MockLoanService struct {
	MockCheckEligibilityResult  *dto.EligibilityResponse
	MockCreateLoanResult        *dto.CreateLoanResponse
	MockGetLoanResult           *dto.LoanDetailResponse
	MockListCustomerLoansResult []dto.CustomerLoanItem
	MockError                   error
}

func (m *MockLoanService) CheckEligibility(ctx context.Context, req dto.CheckEligibility) (*dto.EligibilityResponse, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCheckEligibilityResult, nil
}

func (m *MockLoanService) CreateLoan(ctx context.Context, req dto.CreateLoan) (*dto.CreateLoanResponse, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCreateLoanResult, nil
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID uint64) (*dto.LoanDetailResponse, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockGetLoanResult, nil
}

func (m *MockLoanService) ListCustomerLoans(ctx context.Context, customerID uint64) ([]dto.CustomerLoanItem, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockListCustomerLoansResult, nil
}

type MockIngestService struct {
	MockIngestCustomersResult *dto.IngestSummary
	MockIngestLoansResult     *dto.IngestSummary
	MockError                 error
}

func (m *MockIngestService) IngestCustomers(ctx context.Context, rows []dto.CustomerRow) (*dto.IngestSummary, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockIngestCustomersResult, nil
}

func (m *MockIngestService) IngestLoans(ctx context.Context, rows []dto.LoanRow) (*dto.IngestSummary, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockIngestLoansResult, nil
}

type MockAuthService struct {
	MockLoginResult *dto.LoginResponse
	MockError       error
}

func (m *MockAuthService) Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockLoginResult, nil
}

package repository

import (
	"context"

	"github.com/credisys/credit-approval/internal/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	FindByID(ctx context.Context, id uint64) (*domain.Customer, error)
	// FindByIDWithLock reads the customer row under SELECT ... FOR UPDATE and
	// must be called inside a transaction.
	FindByIDWithLock(ctx context.Context, id uint64) (*domain.Customer, error)
	UpsertBatch(ctx context.Context, customers []domain.Customer) (int, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	FindByID(ctx context.Context, id uint64) (*domain.Loan, error)
	FindByCustomerID(ctx context.Context, customerID uint64) ([]domain.Loan, error)
	UpsertBatch(ctx context.Context, loans []domain.Loan) (int, error)
}

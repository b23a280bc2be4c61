package loansrv

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/credisys/credit-approval/internal/credit"
	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/repository"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	loanrepo "github.com/credisys/credit-approval/internal/repository/loan"
	"github.com/credisys/credit-approval/internal/service"
	"github.com/credisys/credit-approval/pkg/common"
)

type loanService struct {
	db                 *gorm.DB
	customerRepository repository.CustomerRepository
	loanRepository     repository.LoanRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	operationDuration    metric.Float64Histogram
	operationCount       metric.Int64Counter
	errorCount           metric.Int64Counter
	eligibilitiesChecked metric.Int64Counter
	loansApproved        metric.Int64Counter
	loansRejected        metric.Int64Counter

	now func() time.Time
}

func NewLoanService(
	db *gorm.DB,
	customerRepository repository.CustomerRepository,
	loanRepository repository.LoanRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.LoanService {
	operationDuration, _ := meter.Float64Histogram(
		"service.operation.duration",
		metric.WithDescription("Duration of service operations"),
		metric.WithUnit("ms"),
	)
	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)
	errorCount, _ := meter.Int64Counter(
		"service.error.count",
		metric.WithDescription("Number of service errors"),
		metric.WithUnit("{error}"),
	)
	eligibilitiesChecked, _ := meter.Int64Counter(
		"service.eligibilities.checked",
		metric.WithDescription("Number of eligibility checks performed"),
		metric.WithUnit("{check}"),
	)
	loansApproved, _ := meter.Int64Counter(
		"service.loans.approved",
		metric.WithDescription("Number of loans approved and created"),
		metric.WithUnit("{loan}"),
	)
	loansRejected, _ := meter.Int64Counter(
		"service.loans.rejected",
		metric.WithDescription("Number of loan requests rejected"),
		metric.WithUnit("{loan}"),
	)

	return &loanService{
		db:                 db,
		customerRepository: customerRepository,
		loanRepository:     loanRepository,

		meter:  meter,
		tracer: tracer,
		log:    log,

		operationDuration:    operationDuration,
		operationCount:       operationCount,
		errorCount:           errorCount,
		eligibilitiesChecked: eligibilitiesChecked,
		loansApproved:        loansApproved,
		loansRejected:        loansRejected,

		now: time.Now,
	}
}

func reasonMessage(reason credit.Reason) string {
	switch reason {
	case credit.ReasonApproved:
		return "Loan approved successfully."
	case credit.ReasonEMIBurdenExceeded:
		return "Total EMIs exceed 50% of monthly salary."
	case credit.ReasonRateBelowTier:
		return "Requested interest rate is below the minimum for this credit score."
	case credit.ReasonScoreTooLow:
		return "Credit score too low for loan approval."
	case credit.ReasonLimitExceeded:
		return "Requested amount exceeds the approved credit limit."
	default:
		return "Loan not approved due to credit rating or limits."
	}
}

// CheckEligibility implements service.LoanService.
func (s *loanService) CheckEligibility(ctx context.Context, req dto.CheckEligibility) (*dto.EligibilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CheckEligibility")
	defer span.End()

	start := time.Now()
	s.operationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "check_eligibility"),
		attribute.String("service", "loan"),
	))
	span.SetAttributes(
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.LoanAmount),
		attribute.Int("loan.tenure", req.Tenure),
	)

	cust, err := s.customerRepository.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, s.recordError(ctx, span, start, "check_eligibility", "customer_lookup_error", err)
	}
	if cust == nil {
		return nil, s.recordError(ctx, span, start, "check_eligibility", "customer_not_found", common.ErrCustomerNotFound)
	}

	loans, err := s.loanRepository.FindByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, s.recordError(ctx, span, start, "check_eligibility", "loan_lookup_error", err)
	}

	// Read-only variant: a limit breach also zeroes the reported score.
	decision := credit.Decide(cust, loans, req.ToLoanRequest(), credit.DecideOptions{
		ZeroScoreOnLimitBreach: true,
	}, s.now().UTC())

	s.eligibilitiesChecked.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("approved", decision.Approved),
		attribute.String("reason", string(decision.Reason)),
	))
	duration := float64(time.Since(start).Milliseconds())
	s.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "check_eligibility"),
		attribute.String("status", "success"),
	))
	s.log.Info("Eligibility checked",
		zap.Uint64("customer_id", req.CustomerID),
		zap.Bool("approved", decision.Approved),
		zap.Int("credit_score", decision.Score),
		zap.String("reason", string(decision.Reason)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)
	span.SetAttributes(
		attribute.Bool("decision.approved", decision.Approved),
		attribute.Int("decision.score", decision.Score),
	)

	resp := dto.DecisionToEligibilityResponse(req.CustomerID, req.Tenure, decision)
	return &resp, nil
}

// CreateLoan implements service.LoanService. The snapshot read and the loan
// insert happen inside one transaction with the customer row locked, so two
// concurrent creations for the same customer serialize against the limit
// gate instead of both passing on a stale snapshot.
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoan) (*dto.CreateLoanResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateLoan")
	defer span.End()

	start := time.Now()
	s.operationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "create_loan"),
		attribute.String("service", "loan"),
	))
	span.SetAttributes(
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.LoanAmount),
		attribute.Int("loan.tenure", req.Tenure),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "transaction_begin_error",
			fmt.Errorf("failed to begin transaction: %w", tx.Error))
	}
	defer tx.Rollback()

	customerTx := customerrepo.NewCustomerRepository(tx, s.meter, s.tracer, s.log)
	cust, err := customerTx.FindByIDWithLock(ctx, req.CustomerID)
	if err != nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "customer_lookup_error", err)
	}
	if cust == nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "customer_not_found", common.ErrCustomerNotFound)
	}

	loanTx := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)
	loans, err := loanTx.FindByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "loan_lookup_error", err)
	}

	today := s.now().UTC()
	decision := credit.Decide(cust, loans, req.ToLoanRequest(), credit.DecideOptions{
		Commit: true,
	}, today)

	span.SetAttributes(
		attribute.Bool("decision.approved", decision.Approved),
		attribute.Int("decision.score", decision.Score),
		attribute.String("decision.reason", string(decision.Reason)),
	)

	if !decision.Approved {
		s.loansRejected.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", string(decision.Reason)),
		))
		duration := float64(time.Since(start).Milliseconds())
		s.operationDuration.Record(ctx, duration, metric.WithAttributes(
			attribute.String("operation", "create_loan"),
			attribute.String("status", "success"),
		))
		s.log.Info("Loan request rejected",
			zap.Uint64("customer_id", req.CustomerID),
			zap.Int("credit_score", decision.Score),
			zap.String("reason", string(decision.Reason)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)

		return &dto.CreateLoanResponse{
			LoanID:             nil,
			CustomerID:         req.CustomerID,
			LoanApproved:       false,
			Message:            reasonMessage(decision.Reason),
			MonthlyInstallment: decision.Installment.InexactFloat64(),
		}, nil
	}

	newLoan := &domain.Loan{
		CustomerID:     cust.ID,
		LoanAmount:     decimal.NewFromFloat(req.LoanAmount),
		Tenure:         req.Tenure,
		InterestRate:   decision.CorrectedRate,
		MonthlyPayment: decision.Installment,
		EMIsPaidOnTime: 0,
		DateOfApproval: today,
		EndDate:        today.AddDate(0, req.Tenure, 0),
	}

	created, err := loanTx.Create(ctx, newLoan)
	if err != nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "loan_insert_error",
			fmt.Errorf("failed to create loan record: %w", err))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, s.recordError(ctx, span, start, "create_loan", "transaction_commit_error",
			fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.loansApproved.Add(ctx, 1)
	duration := float64(time.Since(start).Milliseconds())
	s.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "create_loan"),
		attribute.String("status", "success"),
	))
	s.log.Info("Loan created",
		zap.Uint64("loan_id", created.ID),
		zap.Uint64("customer_id", cust.ID),
		zap.Float64("corrected_rate", decision.CorrectedRate),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)
	span.SetAttributes(attribute.Int64("loan.id", int64(created.ID)))

	return &dto.CreateLoanResponse{
		LoanID:             &created.ID,
		CustomerID:         cust.ID,
		LoanApproved:       true,
		Message:            reasonMessage(credit.ReasonApproved),
		MonthlyInstallment: decision.Installment.InexactFloat64(),
	}, nil
}

// GetLoan implements service.LoanService.
func (s *loanService) GetLoan(ctx context.Context, loanID uint64) (*dto.LoanDetailResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetLoan")
	defer span.End()

	span.SetAttributes(attribute.Int64("loan.id", int64(loanID)))

	loan, err := s.loanRepository.FindByID(ctx, loanID)
	if err != nil {
		span.SetStatus(codes.Error, "Error finding loan")
		span.RecordError(err)
		return nil, err
	}
	if loan == nil {
		return nil, common.ErrLoanNotFound
	}

	cust, err := s.customerRepository.FindByID(ctx, loan.CustomerID)
	if err != nil {
		span.SetStatus(codes.Error, "Error finding loan owner")
		span.RecordError(err)
		return nil, err
	}
	if cust == nil {
		// loan row without its owner means the snapshot raced a cascade delete
		return nil, common.ErrCustomerNotFound
	}

	resp := dto.LoanToDetailResponse(loan, cust)
	return &resp, nil
}

// ListCustomerLoans implements service.LoanService.
func (s *loanService) ListCustomerLoans(ctx context.Context, customerID uint64) ([]dto.CustomerLoanItem, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCustomerLoans")
	defer span.End()

	span.SetAttributes(attribute.Int64("customer.id", int64(customerID)))

	cust, err := s.customerRepository.FindByID(ctx, customerID)
	if err != nil {
		span.SetStatus(codes.Error, "Error finding customer")
		span.RecordError(err)
		return nil, err
	}
	if cust == nil {
		return nil, common.ErrCustomerNotFound
	}

	loans, err := s.loanRepository.FindByCustomerID(ctx, customerID)
	if err != nil {
		span.SetStatus(codes.Error, "Error listing loans")
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("loans.count", len(loans)))
	return dto.LoansToItems(loans), nil
}

func (s *loanService) recordError(
	ctx context.Context, span trace.Span, start time.Time,
	operation, errorType string, err error,
) error {
	span.SetStatus(codes.Error, errorType)
	span.RecordError(err)
	s.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("service", "loan"),
		attribute.String("error_type", errorType),
	))
	duration := float64(time.Since(start).Milliseconds())
	s.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", "error"),
	))
	s.log.Error("Loan service operation failed",
		zap.String("operation", operation),
		zap.String("error_type", errorType),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.Error(err),
	)
	return err
}

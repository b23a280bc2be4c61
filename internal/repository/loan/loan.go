package loanrepo

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/model"
	"github.com/credisys/credit-approval/internal/repository"
)

type loanRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	queryDuration metric.Float64Histogram
	queryCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	loansCreated  metric.Int64Counter
}

func NewLoanRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.LoanRepository {
	queryDuration, _ := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Duration of database queries"),
		metric.WithUnit("ms"),
	)
	queryCount, _ := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Number of database queries"),
		metric.WithUnit("{query}"),
	)
	errorCount, _ := meter.Int64Counter(
		"db.error.count",
		metric.WithDescription("Number of database errors"),
		metric.WithUnit("{error}"),
	)
	loansCreated, _ := meter.Int64Counter(
		"db.loans.created",
		metric.WithDescription("Number of loan rows inserted"),
		metric.WithUnit("{row}"),
	)

	return &loanRepository{
		db:     db,
		meter:  meter,
		tracer: tracer,
		log:    log,

		queryDuration: queryDuration,
		queryCount:    queryCount,
		errorCount:    errorCount,
		loansCreated:  loansCreated,
	}
}

func (r *loanRepository) record(ctx context.Context, span trace.Span, start time.Time, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, operation+" failed")
		span.RecordError(err)
		r.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "loans"),
		))
	}

	duration := float64(time.Since(start).Milliseconds())
	r.queryDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", "loans"),
		attribute.String("status", status),
	))
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	ctx, span := r.tracer.Start(ctx, "repository.CreateLoan")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "insert"),
		attribute.String("table", "loans"),
	))

	row := model.LoanFromEntity(loan)
	err := r.db.WithContext(ctx).Create(&row).Error
	r.record(ctx, span, start, "insert", err)
	if err != nil {
		r.log.Error("Failed to insert loan",
			zap.Uint64("customer_id", loan.CustomerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	r.loansCreated.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("loan.id", int64(row.ID)))
	return model.LoanToEntity(row), nil
}

func (r *loanRepository) FindByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindLoanByID")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "select"),
		attribute.String("table", "loans"),
	))
	span.SetAttributes(attribute.Int64("loan.id", int64(id)))

	var row model.Loan
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.record(ctx, span, start, "select", nil)
		return nil, nil
	}
	r.record(ctx, span, start, "select", err)
	if err != nil {
		r.log.Error("Failed to find loan by ID",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	return model.LoanToEntity(row), nil
}

func (r *loanRepository) FindByCustomerID(ctx context.Context, customerID uint64) ([]domain.Loan, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindLoansByCustomerID")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "select"),
		attribute.String("table", "loans"),
	))
	span.SetAttributes(attribute.Int64("customer.id", int64(customerID)))

	var rows []model.Loan
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&rows).Error
	r.record(ctx, span, start, "select", err)
	if err != nil {
		r.log.Error("Failed to find loans by customer ID",
			zap.Uint64("customer_id", customerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("loans.count", len(rows)))
	return model.LoansToEntity(rows), nil
}

func (r *loanRepository) UpsertBatch(ctx context.Context, loans []domain.Loan) (int, error) {
	ctx, span := r.tracer.Start(ctx, "repository.UpsertLoans")
	defer span.End()

	if len(loans) == 0 {
		return 0, nil
	}

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "upsert"),
		attribute.String("table", "loans"),
	))
	span.SetAttributes(attribute.Int("batch.size", len(loans)))

	rows := make([]model.Loan, len(loans))
	for i := range loans {
		rows[i] = model.LoanFromEntity(&loans[i])
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	r.record(ctx, span, start, "upsert", err)
	if err != nil {
		r.log.Error("Failed to upsert loan batch",
			zap.Int("batch_size", len(loans)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return 0, err
	}

	return len(rows), nil
}

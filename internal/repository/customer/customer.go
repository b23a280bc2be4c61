package customerrepo

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

type customerRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	queryDuration metric.Float64Histogram
	queryCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	rowsUpserted  metric.Int64Counter
}

func NewCustomerRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.CustomerRepository {
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
	rowsUpserted, _ := meter.Int64Counter(
		"db.customers.upserted",
		metric.WithDescription("Number of customer rows upserted"),
		metric.WithUnit("{row}"),
	)

	return &customerRepository{
		db:     db,
		meter:  meter,
		tracer: tracer,
		log:    log,

		queryDuration: queryDuration,
		queryCount:    queryCount,
		errorCount:    errorCount,
		rowsUpserted:  rowsUpserted,
	}
}

func (r *customerRepository) record(ctx context.Context, span trace.Span, start time.Time, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, operation+" failed")
		span.RecordError(err)
		r.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "customers"),
		))
	}

	duration := float64(time.Since(start).Milliseconds())
	r.queryDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", "customers"),
		attribute.String("status", status),
	))
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "repository.CreateCustomer")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "insert"),
		attribute.String("table", "customers"),
	))

	row := model.CustomerFromEntity(customer)
	err := r.db.WithContext(ctx).Create(&row).Error
	r.record(ctx, span, start, "insert", err)
	if err != nil {
		r.log.Error("Failed to insert customer",
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("customer.id", int64(row.ID)))
	return model.CustomerToEntity(row), nil
}

func (r *customerRepository) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindCustomerByID")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "select"),
		attribute.String("table", "customers"),
	))
	span.SetAttributes(attribute.Int64("customer.id", int64(id)))

	var row model.Customer
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.record(ctx, span, start, "select", nil)
		return nil, nil
	}
	r.record(ctx, span, start, "select", err)
	if err != nil {
		r.log.Error("Failed to find customer by ID",
			zap.Uint64("customer_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	return model.CustomerToEntity(row), nil
}

func (r *customerRepository) FindByIDWithLock(ctx context.Context, id uint64) (*domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindCustomerByIDWithLock")
	defer span.End()

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "select_for_update"),
		attribute.String("table", "customers"),
	))
	span.SetAttributes(attribute.Int64("customer.id", int64(id)))

	var row model.Customer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.record(ctx, span, start, "select_for_update", nil)
		return nil, nil
	}
	r.record(ctx, span, start, "select_for_update", err)
	if err != nil {
		r.log.Error("Failed to lock customer row",
			zap.Uint64("customer_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	return model.CustomerToEntity(row), nil
}

func (r *customerRepository) UpsertBatch(ctx context.Context, customers []domain.Customer) (int, error) {
	ctx, span := r.tracer.Start(ctx, "repository.UpsertCustomers")
	defer span.End()

	if len(customers) == 0 {
		return 0, nil
	}

	start := time.Now()
	r.queryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "upsert"),
		attribute.String("table", "customers"),
	))
	span.SetAttributes(attribute.Int("batch.size", len(customers)))

	rows := make([]model.Customer, len(customers))
	for i := range customers {
		rows[i] = model.CustomerFromEntity(&customers[i])
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	r.record(ctx, span, start, "upsert", err)
	if err != nil {
		r.log.Error("Failed to upsert customer batch",
			zap.Int("batch_size", len(customers)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return 0, err
	}

	r.rowsUpserted.Add(ctx, int64(len(rows)))
	return len(rows), nil
}

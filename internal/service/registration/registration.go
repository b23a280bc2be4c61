package registrationsrv

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/repository"
	"github.com/credisys/credit-approval/internal/service"
	"github.com/credisys/credit-approval/pkg/common"
)

type registrationService struct {
	db                 *gorm.DB
	customerRepository repository.CustomerRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger

	operationDuration   metric.Float64Histogram
	operationCount      metric.Int64Counter
	errorCount          metric.Int64Counter
	customersRegistered metric.Int64Counter
}

func NewRegistrationService(
	db *gorm.DB,
	customerRepository repository.CustomerRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.RegistrationService {
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
	customersRegistered, _ := meter.Int64Counter(
		"service.customers.registered",
		metric.WithDescription("Number of customers registered"),
		metric.WithUnit("{customer}"),
	)

	return &registrationService{
		db:                 db,
		customerRepository: customerRepository,

		meter:  meter,
		tracer: tracer,
		log:    log,

		operationDuration:   operationDuration,
		operationCount:      operationCount,
		errorCount:          errorCount,
		customersRegistered: customersRegistered,
	}
}

// Register persists a new customer. The approved limit is expected to be
// fixed already (36x salary, rounded); it never changes afterwards.
func (s *registrationService) Register(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "service.Register")
	defer span.End()

	start := time.Now()
	s.operationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", "register"),
		attribute.String("service", "registration"),
	))

	created, err := s.customerRepository.Create(ctx, customer)
	duration := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.SetStatus(codes.Error, "Failed to register customer")
		span.RecordError(err)
		s.log.Error("Failed to register customer",
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		s.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "register"),
			attribute.String("service", "registration"),
		))
		s.operationDuration.Record(ctx, duration, metric.WithAttributes(
			attribute.String("operation", "register"),
			attribute.String("status", "error"),
		))
		return nil, err
	}

	s.customersRegistered.Add(ctx, 1)
	s.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "register"),
		attribute.String("status", "success"),
	))
	s.log.Info("Customer registered",
		zap.Uint64("customer_id", created.ID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)
	span.SetAttributes(attribute.Int64("customer.id", int64(created.ID)))

	return created, nil
}

func (s *registrationService) GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCustomer")
	defer span.End()

	span.SetAttributes(attribute.Int64("customer.id", int64(id)))

	cust, err := s.customerRepository.FindByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Error finding customer")
		span.RecordError(err)
		return nil, err
	}
	if cust == nil {
		return nil, common.ErrCustomerNotFound
	}

	return cust, nil
}

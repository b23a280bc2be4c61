package loanhandler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/service"
	"github.com/credisys/credit-approval/pkg/common"
)

type LoanHandler struct {
	loanService     service.LoanService
	validate        *validator.Validate
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
}

func NewLoanHandler(
	loanService service.LoanService,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *LoanHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	requestDuration, err := meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request duration metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	return &LoanHandler{
		loanService:     loanService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
	}
}

func (h *LoanHandler) recordError(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, err error, statusCode int, errorType, message string, fields ...zap.Field) error {
	h.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.String("error_type", errorType),
		attribute.Int("status_code", statusCode),
	))

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.String("error.type", errorType),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)
	span.RecordError(err)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Error(message, logFields...)

	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

func (h *LoanHandler) recordSuccess(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, statusCode int, responseData interface{}, fields ...zap.Field) error {
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("request.duration_ms", duration),
	)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Info("Request completed successfully", logFields...)

	return c.Status(statusCode).JSON(responseData)
}

// CheckEligibility runs the decision procedure without creating a loan.
// Rejections come back as a 200 with approval set to false.
func (h *LoanHandler) CheckEligibility(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.CheckEligibility")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	var req dto.CheckEligibility
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.LoanAmount),
		attribute.Int("loan.tenure", req.Tenure),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := h.loanService.CheckEligibility(serviceCtx, req)
	if err != nil {
		if errors.Is(err, common.ErrCustomerNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "customer_not_found", "Customer not found",
				zap.Uint64("customer_id", req.CustomerID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	span.SetAttributes(attribute.Bool("decision.approved", res.Approval))

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, res,
		zap.Uint64("customer_id", req.CustomerID),
		zap.Bool("approved", res.Approval),
	)
}

// CreateLoan runs the decision procedure and persists the loan on approval.
// A rejection returns 400 with the decision body so callers see the reason.
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.CreateLoan")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	var req dto.CreateLoan
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.LoanAmount),
		attribute.Int("loan.tenure", req.Tenure),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := h.loanService.CreateLoan(serviceCtx, req)
	if err != nil {
		if errors.Is(err, common.ErrCustomerNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "customer_not_found", "Customer not found",
				zap.Uint64("customer_id", req.CustomerID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	span.SetAttributes(attribute.Bool("decision.approved", res.LoanApproved))

	if !res.LoanApproved {
		return h.recordSuccess(ctx, span, c, start, fiber.StatusBadRequest, res,
			zap.Uint64("customer_id", req.CustomerID),
			zap.String("message", res.Message),
		)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusCreated, res,
		zap.Uint64("customer_id", req.CustomerID),
		zap.Uint64("loan_id", *res.LoanID),
	)
}

// ViewLoan returns one loan with its owning customer inlined.
func (h *LoanHandler) ViewLoan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ViewLoan")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	loanID, err := c.ParamsInt("loan_id")
	if err != nil || loanID <= 0 {
		return h.recordError(
			ctx, span, c, start, errors.New("invalid loan id"),
			fiber.StatusBadRequest, "parse_error", "Invalid loan id")
	}

	span.SetAttributes(attribute.Int("loan.id", loanID))

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := h.loanService.GetLoan(serviceCtx, uint64(loanID))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrLoanNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "loan_not_found", "Loan not found", zap.Int("loan_id", loanID))
		case errors.Is(err, common.ErrCustomerNotFound):
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "customer_not_found", "Customer not found", zap.Int("loan_id", loanID))
		default:
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
		}
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, res,
		zap.Int("loan_id", loanID),
	)
}

// ViewCustomerLoans lists every loan for a customer with repayments left.
func (h *LoanHandler) ViewCustomerLoans(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ViewCustomerLoans")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	customerID, err := c.ParamsInt("customer_id")
	if err != nil || customerID <= 0 {
		return h.recordError(
			ctx, span, c, start, errors.New("invalid customer id"),
			fiber.StatusBadRequest, "parse_error", "Invalid customer id")
	}

	span.SetAttributes(attribute.Int("customer.id", customerID))

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := h.loanService.ListCustomerLoans(serviceCtx, uint64(customerID))
	if err != nil {
		if errors.Is(err, common.ErrCustomerNotFound) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusNotFound, "customer_not_found", "Customer not found",
				zap.Int("customer_id", customerID))
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	span.SetAttributes(attribute.Int("loans.count", len(res)))

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, res,
		zap.Int("customer_id", customerID),
		zap.Int("loans", len(res)),
	)
}

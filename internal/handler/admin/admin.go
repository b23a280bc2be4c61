package adminhandler

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
	"github.com/credisys/credit-approval/internal/ingest"
	"github.com/credisys/credit-approval/internal/service"
	"github.com/credisys/credit-approval/pkg/common"
)

type AdminHandler struct {
	authService     service.AuthService
	ingestService   service.IngestService
	validate        *validator.Validate
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
}

func NewAdminHandler(
	authService service.AuthService,
	ingestService service.IngestService,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *AdminHandler {
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

	return &AdminHandler{
		authService:     authService,
		ingestService:   ingestService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
	}
}

func (h *AdminHandler) recordError(
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

func (h *AdminHandler) recordSuccess(
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

// Login exchanges admin credentials for a bearer token.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.Login")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	var req dto.Login
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

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := h.authService.Login(serviceCtx, req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return h.recordError(
				ctx, span, c, start, err,
				fiber.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		}
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, res,
		zap.String("username", req.Username),
	)
}

// IngestCustomers accepts a customer spreadsheet as a multipart "file" field
// and upserts its rows.
func (h *AdminHandler) IngestCustomers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.IngestCustomers")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Missing file upload", zap.Error(err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot open uploaded file", zap.Error(err))
	}
	defer file.Close()

	rows, err := ingest.ReadCustomerRows(file)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "sheet_error", "Cannot parse workbook", zap.Error(err))
	}

	span.SetAttributes(
		attribute.String("upload.filename", fileHeader.Filename),
		attribute.Int("rows.count", len(rows)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	summary, err := h.ingestService.IngestCustomers(serviceCtx, rows)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, summary,
		zap.String("filename", fileHeader.Filename),
		zap.Int("upserted", summary.Upserted),
		zap.Int("skipped", summary.Skipped),
	)
}

// IngestLoans accepts a loan spreadsheet as a multipart "file" field and
// upserts its rows.
func (h *AdminHandler) IngestLoans(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.IngestLoans")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Missing file upload", zap.Error(err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot open uploaded file", zap.Error(err))
	}
	defer file.Close()

	rows, err := ingest.ReadLoanRows(file)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "sheet_error", "Cannot parse workbook", zap.Error(err))
	}

	span.SetAttributes(
		attribute.String("upload.filename", fileHeader.Filename),
		attribute.Int("rows.count", len(rows)),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	summary, err := h.ingestService.IngestLoans(serviceCtx, rows)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error", zap.Error(err))
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, summary,
		zap.String("filename", fileHeader.Filename),
		zap.Int("upserted", summary.Upserted),
		zap.Int("skipped", summary.Skipped),
	)
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OtelMiddleware records HTTP server telemetry for every Fiber request.
type OtelMiddleware struct {
	meter                     metric.Meter
	tracer                    trace.Tracer
	httpRequestCounter        metric.Int64Counter
	httpRequestDuration       metric.Float64Histogram
	httpResponseStatusCounter metric.Int64Counter
	httpRequestSize           metric.Int64Histogram
	httpResponseSize          metric.Int64Histogram
	httpActiveRequests        metric.Int64UpDownCounter
	propagator                propagation.TextMapPropagator
}

func NewOtelMiddleware() *OtelMiddleware {
	meter := otel.GetMeterProvider().Meter("fiber-middleware")
	tracer := otel.GetTracerProvider().Tracer("fiber-middleware")

	httpRequestCounter, _ := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)

	httpRequestDuration, _ := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"),
	)

	httpResponseStatusCounter, _ := meter.Int64Counter(
		"http.server.response.status",
		metric.WithDescription("HTTP response status codes"),
		metric.WithUnit("{status}"),
	)

	httpRequestSize, _ := meter.Int64Histogram(
		"http.server.request.size",
		metric.WithDescription("Size of HTTP requests"),
		metric.WithUnit("bytes"),
	)

	httpResponseSize, _ := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP responses"),
		metric.WithUnit("bytes"),
	)

	httpActiveRequests, _ := meter.Int64UpDownCounter(
		"http.server.active.requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)

	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		propagator = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}

	return &OtelMiddleware{
		meter:                     meter,
		tracer:                    tracer,
		httpRequestCounter:        httpRequestCounter,
		httpRequestDuration:       httpRequestDuration,
		httpResponseStatusCounter: httpResponseStatusCounter,
		httpRequestSize:           httpRequestSize,
		httpResponseSize:          httpResponseSize,
		httpActiveRequests:        httpActiveRequests,
		propagator:                propagator,
	}
}

func (m *OtelMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := m.propagator.Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))

		path := c.Path()
		method := c.Method()

		spanName := fmt.Sprintf("%s %s", method, path)
		ctx, span := m.tracer.Start(ctx, spanName,
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", path),
				attribute.String("http.scheme", "http"),
				attribute.String("http.host", c.Hostname()),
				attribute.String("http.user_agent", string(c.Request().Header.UserAgent())),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		c.Locals("otel-context", ctx)
		c.SetUserContext(ctx)

		reqContentLength := int64(len(c.Request().Body()))
		m.httpRequestSize.Record(ctx, reqContentLength,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
			),
		)

		m.httpActiveRequests.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
			),
		)

		zap.L().Info("HTTP request started",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", c.IP()),
			zap.Int("content_length", int(reqContentLength)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)

		startTime := time.Now()

		m.httpRequestCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
			),
		)

		err := c.Next()

		duration := float64(time.Since(startTime).Milliseconds())
		status := c.Response().StatusCode()

		m.httpRequestDuration.Record(ctx, duration,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
				attribute.Int("http.status_code", status),
			),
		)

		m.httpResponseStatusCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
				attribute.Int("http.status_code", status),
			),
		)

		resContentLength := int64(len(c.Response().Body()))
		m.httpResponseSize.Record(ctx, resContentLength,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
				attribute.Int("http.status_code", status),
			),
		)

		m.httpActiveRequests.Add(ctx, -1,
			metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", path),
			),
		)

		if status >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
			span.SetAttributes(attribute.String("error.message", fmt.Sprintf("HTTP Error %d", status)))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		zap.L().Info("HTTP request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Float64("duration_ms", duration),
			zap.Int64("response_size", resContentLength),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)

		return err
	}
}

package router

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/credisys/credit-approval/config"
	mysqldb "github.com/credisys/credit-approval/infra/mysql"
	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/middleware"
	"github.com/credisys/credit-approval/pkg/ratelimiter"
	"github.com/credisys/credit-approval/pkg/telemetry"
	"github.com/credisys/credit-approval/presenter"
)

func NewRouter(
	presenter presenter.Presenter,
	db *gorm.DB,
	rdb *redis.Client,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
	limiter *ratelimiter.RateLimiter,
) *fiber.App {

	jwtAuth := middleware.NewJWTAuthMiddleware(cfg.JWT_SECRET_KEY)
	requireAdmin := middleware.RequireRole(domain.AdminRole)
	idempotency := middleware.NewIdempotencyMiddleware(rdb, cfg.IDEMPOTENCY_TTL)

	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorCustomHandler(tel.Log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5000",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Idempotency-Key",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${ip} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(otelfiber.Middleware(
		otelfiber.WithTracerProvider(tel.TracerProvider),
		otelfiber.WithPropagators(otel.GetTextMapPropagator()),
	))

	if cfg.REQUESTS_METRIC {
		zap.L().Info("Enabling HTTP request metrics middleware")
		app.Use(middleware.NewOtelMiddleware().Handle())
	} else {
		zap.L().Info("HTTP request metrics middleware is disabled")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := mysqldb.Ping(db, c.Context()); err != nil {
			zap.L().Error("Health check failed: database ping error", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"service":     cfg.SERVICE_NAME,
			"version":     cfg.SERVICE_VERSION,
			"environment": cfg.ENVIRONMENT,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api/v1")

	api.Use(limiter.RateLimitMiddleware())

	api.Post("/register", presenter.RegistrationPresenter.Register)
	api.Get("/customers/:customer_id", presenter.RegistrationPresenter.GetCustomer)

	api.Post("/check-eligibility", presenter.LoanPresenter.CheckEligibility)
	api.Post("/create-loan", idempotency, presenter.LoanPresenter.CreateLoan)
	api.Get("/view-loan/:loan_id", presenter.LoanPresenter.ViewLoan)
	api.Get("/view-loans/:customer_id", presenter.LoanPresenter.ViewCustomerLoans)

	authAPI := api.Group("/auth")
	{
		authAPI.Post("/login", presenter.AdminPresenter.Login)
	}

	adminAPI := api.Group("/admin", jwtAuth, requireAdmin)
	{
		adminAPI.Post("/ingest/customers", presenter.AdminPresenter.IngestCustomers)
		adminAPI.Post("/ingest/loans", presenter.AdminPresenter.IngestLoans)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Resource not found",
			"path":    c.Path(),
		})
	})

	return app
}

func ErrorCustomHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		log.Error("Request error occured",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Int("status_code", code),
		)

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
			"code":    code,
		})
	}
}

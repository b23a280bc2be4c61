package presenter

import (
	"gorm.io/gorm"

	"github.com/credisys/credit-approval/config"
	adminhandler "github.com/credisys/credit-approval/internal/handler/admin"
	loanhandler "github.com/credisys/credit-approval/internal/handler/loan"
	registrationhandler "github.com/credisys/credit-approval/internal/handler/registration"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	loanrepo "github.com/credisys/credit-approval/internal/repository/loan"
	authsrv "github.com/credisys/credit-approval/internal/service/auth"
	ingestsrv "github.com/credisys/credit-approval/internal/service/ingest"
	loansrv "github.com/credisys/credit-approval/internal/service/loan"
	registrationsrv "github.com/credisys/credit-approval/internal/service/registration"
	"github.com/credisys/credit-approval/pkg/telemetry"
)

type Presenter struct {
	RegistrationPresenter *registrationhandler.RegistrationHandler
	LoanPresenter         *loanhandler.LoanHandler
	AdminPresenter        *adminhandler.AdminHandler
}

func NewPresenter(
	db *gorm.DB,
	cfg *config.Config,
	tel *telemetry.OpenTelemetry,
) Presenter {
	// Repository
	customerRepositoryMeter := tel.MeterProvider.Meter("customer-repository-meter")
	customerRepositoryTracer := tel.TracerProvider.Tracer("customer-repository-tracer")
	customerRepository := customerrepo.NewCustomerRepository(
		db,
		customerRepositoryMeter,
		customerRepositoryTracer,
		tel.Log,
	)

	loanRepositoryMeter := tel.MeterProvider.Meter("loan-repository-meter")
	loanRepositoryTracer := tel.TracerProvider.Tracer("loan-repository-tracer")
	loanRepository := loanrepo.NewLoanRepository(
		db,
		loanRepositoryMeter,
		loanRepositoryTracer,
		tel.Log,
	)

	// Service
	registrationServiceMeter := tel.MeterProvider.Meter("registration-service-meter")
	registrationServiceTracer := tel.TracerProvider.Tracer("registration-service-trace")
	registrationService := registrationsrv.NewRegistrationService(
		db,
		customerRepository,
		registrationServiceMeter,
		registrationServiceTracer,
		tel.Log,
	)

	loanServiceMeter := tel.MeterProvider.Meter("loan-service-meter")
	loanServiceTracer := tel.TracerProvider.Tracer("loan-service-trace")
	loanService := loansrv.NewLoanService(
		db,
		customerRepository,
		loanRepository,
		loanServiceMeter,
		loanServiceTracer,
		tel.Log,
	)

	ingestServiceMeter := tel.MeterProvider.Meter("ingest-service-meter")
	ingestServiceTracer := tel.TracerProvider.Tracer("ingest-service-trace")
	ingestService := ingestsrv.NewIngestService(
		customerRepository,
		loanRepository,
		ingestServiceMeter,
		ingestServiceTracer,
		tel.Log,
	)

	authServiceMeter := tel.MeterProvider.Meter("auth-service-meter")
	authServiceTracer := tel.TracerProvider.Tracer("auth-service-trace")
	authService := authsrv.NewAuthService(
		cfg.ADMIN_USERNAME,
		cfg.ADMIN_PASSWORD_HASH,
		cfg.JWT_SECRET_KEY,
		authServiceMeter,
		authServiceTracer,
		tel.Log,
	)

	// Handler
	registrationHandlerMeter := tel.MeterProvider.Meter("registration-handler-meter")
	registrationHandlerTracer := tel.TracerProvider.Tracer("registration-handler-trace")
	registrationHandler := registrationhandler.NewRegistrationHandler(
		registrationService,
		registrationHandlerMeter,
		registrationHandlerTracer,
		tel.Log,
	)

	loanHandlerMeter := tel.MeterProvider.Meter("loan-handler-meter")
	loanHandlerTracer := tel.TracerProvider.Tracer("loan-handler-trace")
	loanHandler := loanhandler.NewLoanHandler(
		loanService,
		loanHandlerMeter,
		loanHandlerTracer,
		tel.Log,
	)

	adminHandlerMeter := tel.MeterProvider.Meter("admin-handler-meter")
	adminHandlerTracer := tel.TracerProvider.Tracer("admin-handler-trace")
	adminHandler := adminhandler.NewAdminHandler(
		authService,
		ingestService,
		adminHandlerMeter,
		adminHandlerTracer,
		tel.Log,
	)

	return Presenter{
		RegistrationPresenter: registrationHandler,
		LoanPresenter:         loanHandler,
		AdminPresenter:        adminHandler,
	}
}

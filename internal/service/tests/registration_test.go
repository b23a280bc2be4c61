package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/model"
	"github.com/credisys/credit-approval/internal/repository"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	"github.com/credisys/credit-approval/internal/service"
	registrationsrv "github.com/credisys/credit-approval/internal/service/registration"
	"github.com/credisys/credit-approval/pkg/common"
)

const registrationTestDBName = "credit_approval_registration_test"

type RegistrationServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context

	registrationService service.RegistrationService
	customerRepository  repository.CustomerRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *RegistrationServiceTestSuite) SetupSuite() {
	db, err := sql.Open("mysql", adminDSN())
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", registrationTestDBName))
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", registrationTestDBName))
	suite.Require().NoError(err)

	db.Close()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		common.GetEnv("MYSQL_USER", "root"),
		common.GetEnv("MYSQL_PASSWORD", "rootpassword123"),
		common.GetEnv("MYSQL_HOST", "127.0.0.1"),
		common.GetEnv("MYSQL_PORT", "3306"),
		registrationTestDBName,
	)

	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	suite.db = gormDB
	suite.ctx = context.Background()

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-registration-service-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-registration-service-meter")

	err = model.AutoMigrate(suite.db)
	suite.Require().NoError(err)

	suite.customerRepository = customerrepo.NewCustomerRepository(suite.db, suite.meter, suite.tracer, suite.log)
	suite.registrationService = registrationsrv.NewRegistrationService(
		suite.db,
		suite.customerRepository,
		suite.meter,
		suite.tracer,
		suite.log,
	)
}

func (suite *RegistrationServiceTestSuite) TearDownSuite() {
	db, err := sql.Open("mysql", adminDSN())
	if err == nil {
		db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", registrationTestDBName))
		db.Close()
	}
}

func (suite *RegistrationServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM loans")
	suite.db.Exec("DELETE FROM customers")
}

func (suite *RegistrationServiceTestSuite) TestRegister_DerivesApprovedLimit() {
	age := 28
	entity := dto.RegisterToEntity(dto.Register{
		FirstName:     "Aarav",
		LastName:      "Sharma",
		Age:           &age,
		PhoneNumber:   "9123456789",
		MonthlyIncome: 60000,
	})

	created, err := suite.registrationService.Register(suite.ctx, entity)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotZero(created.ID)
	// 36 * 60000 = 2160000, rounded to the nearest lakh
	suite.True(created.ApprovedLimit.Equal(decimal.NewFromInt(2200000)),
		"got %s", created.ApprovedLimit)
}

func (suite *RegistrationServiceTestSuite) TestGetCustomer_Success() {
	entity := dto.RegisterToEntity(dto.Register{
		FirstName:     "Diya",
		LastName:      "Patel",
		PhoneNumber:   "9988776655",
		MonthlyIncome: 72500,
	})
	created, err := suite.registrationService.Register(suite.ctx, entity)
	suite.Require().NoError(err)

	found, err := suite.registrationService.GetCustomer(suite.ctx, created.ID)

	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal("Diya", found.FirstName)
}

func (suite *RegistrationServiceTestSuite) TestGetCustomer_NotFound() {
	found, err := suite.registrationService.GetCustomer(suite.ctx, 987654)

	suite.Nil(found)
	suite.True(errors.Is(err, common.ErrCustomerNotFound))
}

func TestRegistrationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceTestSuite))
}

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/model"
	"github.com/credisys/credit-approval/internal/repository"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	"github.com/credisys/credit-approval/pkg/common"
)

const testDBName = "credit_approval_test"

func adminDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
		common.GetEnv("MYSQL_USER", "root"),
		common.GetEnv("MYSQL_PASSWORD", "rootpassword123"),
		common.GetEnv("MYSQL_HOST", "127.0.0.1"),
		common.GetEnv("MYSQL_PORT", "3306"),
	)
}

func testDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		common.GetEnv("MYSQL_USER", "root"),
		common.GetEnv("MYSQL_PASSWORD", "rootpassword123"),
		common.GetEnv("MYSQL_HOST", "127.0.0.1"),
		common.GetEnv("MYSQL_PORT", "3306"),
		testDBName,
	)
}

type CustomerRepositoryTestSuite struct {
	suite.Suite
	db                 *gorm.DB
	ctx                context.Context
	customerRepository repository.CustomerRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *CustomerRepositoryTestSuite) SetupSuite() {
	db, err := sql.Open("mysql", adminDSN())
	require.NoError(suite.T(), err)

	_, err = db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
	require.NoError(suite.T(), err)

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName))
	require.NoError(suite.T(), err)

	db.Close()

	gormDB, err := gorm.Open(mysql.Open(testDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)

	suite.db = gormDB
	suite.ctx = context.Background()

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-customer-repository-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-customer-repository-meter")

	err = model.AutoMigrate(suite.db)
	require.NoError(suite.T(), err)

	suite.customerRepository = customerrepo.NewCustomerRepository(suite.db, suite.meter, suite.tracer, suite.log)
}

func (suite *CustomerRepositoryTestSuite) TearDownSuite() {
	db, err := sql.Open("mysql", adminDSN())
	if err == nil {
		db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
		db.Close()
	}
}

func (suite *CustomerRepositoryTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM loans")
	suite.db.Exec("DELETE FROM customers")
}

func (suite *CustomerRepositoryTestSuite) TestCreate_Success() {
	age := 29
	customer := domain.Customer{
		FirstName:     "Aarav",
		LastName:      "Sharma",
		Age:           &age,
		PhoneNumber:   "9123456789",
		MonthlySalary: decimal.NewFromInt(50000),
		ApprovedLimit: decimal.NewFromInt(1800000),
	}

	created, err := suite.customerRepository.Create(suite.ctx, &customer)

	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), created)
	assert.NotZero(suite.T(), created.ID)

	var saved model.Customer
	err = suite.db.First(&saved, created.ID).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Aarav", saved.FirstName)
	assert.True(suite.T(), saved.ApprovedLimit.Equal(decimal.NewFromInt(1800000)))
}

func (suite *CustomerRepositoryTestSuite) TestFindByID_Found() {
	created, err := suite.customerRepository.Create(suite.ctx, &domain.Customer{
		FirstName:     "Diya",
		LastName:      "Patel",
		PhoneNumber:   "9988776655",
		MonthlySalary: decimal.NewFromInt(72500),
		ApprovedLimit: decimal.NewFromInt(2600000),
	})
	require.NoError(suite.T(), err)

	found, err := suite.customerRepository.FindByID(suite.ctx, created.ID)

	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), found)
	assert.Equal(suite.T(), created.ID, found.ID)
	assert.Equal(suite.T(), "Diya", found.FirstName)
	assert.True(suite.T(), found.MonthlySalary.Equal(decimal.NewFromInt(72500)))
}

func (suite *CustomerRepositoryTestSuite) TestFindByID_NotFound() {
	found, err := suite.customerRepository.FindByID(suite.ctx, 999999)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), found)
}

func (suite *CustomerRepositoryTestSuite) TestFindByIDWithLock_Found() {
	created, err := suite.customerRepository.Create(suite.ctx, &domain.Customer{
		FirstName:     "Rohan",
		LastName:      "Gupta",
		PhoneNumber:   "9555512345",
		MonthlySalary: decimal.NewFromInt(91000),
		ApprovedLimit: decimal.NewFromInt(3300000),
	})
	require.NoError(suite.T(), err)

	tx := suite.db.Begin()
	require.NoError(suite.T(), tx.Error)
	defer tx.Rollback()

	lockedRepo := customerrepo.NewCustomerRepository(tx, suite.meter, suite.tracer, suite.log)
	found, err := lockedRepo.FindByIDWithLock(suite.ctx, created.ID)

	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), found)
	assert.Equal(suite.T(), created.ID, found.ID)
}

func (suite *CustomerRepositoryTestSuite) TestUpsertBatch_InsertAndUpdate() {
	batch := []domain.Customer{
		{
			ID:            1,
			FirstName:     "Aarav",
			LastName:      "Sharma",
			PhoneNumber:   "9123456789",
			MonthlySalary: decimal.NewFromInt(50000),
			ApprovedLimit: decimal.NewFromInt(1800000),
		},
		{
			ID:            2,
			FirstName:     "Diya",
			LastName:      "Patel",
			PhoneNumber:   "9988776655",
			MonthlySalary: decimal.NewFromInt(72500),
			ApprovedLimit: decimal.NewFromInt(2600000),
		},
	}

	n, err := suite.customerRepository.UpsertBatch(suite.ctx, batch)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, n)

	// second pass updates in place without duplicating
	batch[0].FirstName = "Aarav Kumar"
	_, err = suite.customerRepository.UpsertBatch(suite.ctx, batch)
	assert.NoError(suite.T(), err)

	var count int64
	suite.db.Model(&model.Customer{}).Count(&count)
	assert.Equal(suite.T(), int64(2), count)

	updated, err := suite.customerRepository.FindByID(suite.ctx, 1)
	assert.NoError(suite.T(), err)
	require.NotNil(suite.T(), updated)
	assert.Equal(suite.T(), "Aarav Kumar", updated.FirstName)
}

func TestCustomerRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerRepositoryTestSuite))
}

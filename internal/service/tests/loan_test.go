package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

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

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/model"
	"github.com/credisys/credit-approval/internal/repository"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	loanrepo "github.com/credisys/credit-approval/internal/repository/loan"
	"github.com/credisys/credit-approval/internal/service"
	loansrv "github.com/credisys/credit-approval/internal/service/loan"
	"github.com/credisys/credit-approval/pkg/common"
)

const testDBName = "credit_approval_service_test"

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

type LoanServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context

	loanService        service.LoanService
	customerRepository repository.CustomerRepository
	loanRepository     repository.LoanRepository

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *LoanServiceTestSuite) SetupSuite() {
	db, err := sql.Open("mysql", adminDSN())
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
	suite.Require().NoError(err)

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName))
	suite.Require().NoError(err)

	db.Close()

	gormDB, err := gorm.Open(mysql.Open(testDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	suite.db = gormDB
	suite.ctx = context.Background()

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-loan-service-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-loan-service-meter")

	err = model.AutoMigrate(suite.db)
	suite.Require().NoError(err)

	suite.customerRepository = customerrepo.NewCustomerRepository(suite.db, suite.meter, suite.tracer, suite.log)
	suite.loanRepository = loanrepo.NewLoanRepository(suite.db, suite.meter, suite.tracer, suite.log)
	suite.loanService = loansrv.NewLoanService(
		suite.db,
		suite.customerRepository,
		suite.loanRepository,
		suite.meter,
		suite.tracer,
		suite.log,
	)
}

func (suite *LoanServiceTestSuite) TearDownSuite() {
	db, err := sql.Open("mysql", adminDSN())
	if err == nil {
		db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", testDBName))
		db.Close()
	}
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM loans")
	suite.db.Exec("DELETE FROM customers")
}

func (suite *LoanServiceTestSuite) seedCustomer(salary int64, limit int64) *domain.Customer {
	created, err := suite.customerRepository.Create(suite.ctx, &domain.Customer{
		FirstName:     "Aarav",
		LastName:      "Sharma",
		PhoneNumber:   "9123456789",
		MonthlySalary: decimal.NewFromInt(salary),
		ApprovedLimit: decimal.NewFromInt(limit),
	})
	suite.Require().NoError(err)
	return created
}

func (suite *LoanServiceTestSuite) TestCheckEligibility_NewCustomerApproved() {
	cust := suite.seedCustomer(60000, 2160000)

	res, err := suite.loanService.CheckEligibility(suite.ctx, dto.CheckEligibility{
		CustomerID:   cust.ID,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.True(res.Approval)
	suite.Equal(cust.ID, res.CustomerID)
	suite.InDelta(15, res.InterestRate, 0.0001)
	suite.InDelta(15, res.CorrectedInterestRate, 0.0001)
	suite.Greater(res.MonthlyInstallment, 0.0)
}

func (suite *LoanServiceTestSuite) TestCheckEligibility_CustomerNotFound() {
	res, err := suite.loanService.CheckEligibility(suite.ctx, dto.CheckEligibility{
		CustomerID:   987654,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})

	suite.Nil(res)
	suite.True(errors.Is(err, common.ErrCustomerNotFound))
}

func (suite *LoanServiceTestSuite) TestCheckEligibility_LimitBreachReportsZeroScore() {
	cust := suite.seedCustomer(70000, 2520000)

	// active loan close to the limit, so any real request overflows it
	approval := time.Now().UTC().AddDate(-1, 0, 0)
	_, err := suite.loanRepository.Create(suite.ctx, &domain.Loan{
		CustomerID:     cust.ID,
		LoanAmount:     decimal.NewFromInt(2500000),
		Tenure:         120,
		InterestRate:   13,
		MonthlyPayment: decimal.NewFromInt(25000),
		EMIsPaidOnTime: 12,
		DateOfApproval: approval,
		EndDate:        approval.AddDate(0, 120, 0),
	})
	suite.Require().NoError(err)

	res, err := suite.loanService.CheckEligibility(suite.ctx, dto.CheckEligibility{
		CustomerID:   cust.ID,
		LoanAmount:   50000,
		InterestRate: 15,
		Tenure:       12,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.False(res.Approval)
}

func (suite *LoanServiceTestSuite) TestCreateLoan_ApprovedPersistsLoan() {
	cust := suite.seedCustomer(60000, 2160000)

	res, err := suite.loanService.CreateLoan(suite.ctx, dto.CreateLoan{
		CustomerID:   cust.ID,
		LoanAmount:   100000,
		InterestRate: 18,
		Tenure:       12,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.True(res.LoanApproved)
	suite.Require().NotNil(res.LoanID)
	suite.Greater(res.MonthlyInstallment, 0.0)

	saved, err := suite.loanRepository.FindByID(suite.ctx, *res.LoanID)
	suite.Require().NoError(err)
	suite.Require().NotNil(saved)
	suite.Equal(cust.ID, saved.CustomerID)
	suite.Equal(12, saved.Tenure)
	suite.InDelta(18, saved.InterestRate, 0.0001)
	suite.Equal(0, saved.EMIsPaidOnTime)

	// end date tracks the tenure from today
	wantEnd := saved.DateOfApproval.AddDate(0, 12, 0)
	suite.WithinDuration(wantEnd, saved.EndDate, 24*time.Hour)
}

func (suite *LoanServiceTestSuite) TestCreateLoan_RejectedLeavesNoRow() {
	cust := suite.seedCustomer(70000, 2520000)

	approval := time.Now().UTC().AddDate(-1, 0, 0)
	_, err := suite.loanRepository.Create(suite.ctx, &domain.Loan{
		CustomerID:     cust.ID,
		LoanAmount:     decimal.NewFromInt(2500000),
		Tenure:         120,
		InterestRate:   13,
		MonthlyPayment: decimal.NewFromInt(25000),
		EMIsPaidOnTime: 12,
		DateOfApproval: approval,
		EndDate:        approval.AddDate(0, 120, 0),
	})
	suite.Require().NoError(err)

	res, err := suite.loanService.CreateLoan(suite.ctx, dto.CreateLoan{
		CustomerID:   cust.ID,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.False(res.LoanApproved)
	suite.Nil(res.LoanID)
	suite.NotEmpty(res.Message)

	var count int64
	suite.db.Model(&model.Loan{}).Where("customer_id = ?", cust.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *LoanServiceTestSuite) TestCreateLoan_CustomerNotFound() {
	res, err := suite.loanService.CreateLoan(suite.ctx, dto.CreateLoan{
		CustomerID:   987654,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})

	suite.Nil(res)
	suite.True(errors.Is(err, common.ErrCustomerNotFound))
}

func (suite *LoanServiceTestSuite) TestGetLoan_Success() {
	cust := suite.seedCustomer(60000, 2160000)

	created, err := suite.loanService.CreateLoan(suite.ctx, dto.CreateLoan{
		CustomerID:   cust.ID,
		LoanAmount:   100000,
		InterestRate: 18,
		Tenure:       12,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(created.LoanID)

	res, err := suite.loanService.GetLoan(suite.ctx, *created.LoanID)

	suite.Require().NoError(err)
	suite.Require().NotNil(res)
	suite.Equal(*created.LoanID, res.LoanID)
	suite.Equal(cust.ID, res.Customer.ID)
	suite.Equal("Aarav", res.Customer.FirstName)
	suite.Equal(12, res.Tenure)
}

func (suite *LoanServiceTestSuite) TestGetLoan_NotFound() {
	res, err := suite.loanService.GetLoan(suite.ctx, 424242)

	suite.Nil(res)
	suite.True(errors.Is(err, common.ErrLoanNotFound))
}

func (suite *LoanServiceTestSuite) TestListCustomerLoans_ReportsRepaymentsLeft() {
	cust := suite.seedCustomer(60000, 2160000)

	approval := time.Now().UTC().AddDate(0, -6, 0)
	_, err := suite.loanRepository.Create(suite.ctx, &domain.Loan{
		CustomerID:     cust.ID,
		LoanAmount:     decimal.NewFromInt(120000),
		Tenure:         24,
		InterestRate:   14,
		MonthlyPayment: decimal.NewFromInt(5000),
		EMIsPaidOnTime: 6,
		DateOfApproval: approval,
		EndDate:        approval.AddDate(0, 24, 0),
	})
	suite.Require().NoError(err)

	res, err := suite.loanService.ListCustomerLoans(suite.ctx, cust.ID)

	suite.Require().NoError(err)
	suite.Require().Len(res, 1)
	suite.Equal(18, res[0].RepaymentsLeft)
}

func (suite *LoanServiceTestSuite) TestListCustomerLoans_CustomerNotFound() {
	res, err := suite.loanService.ListCustomerLoans(suite.ctx, 987654)

	suite.Nil(res)
	suite.True(errors.Is(err, common.ErrCustomerNotFound))
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"go.opentelemetry.io/otel/metric"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	noop_trace "go.opentelemetry.io/otel/trace/noop"

	"go.uber.org/zap"

	"github.com/credisys/credit-approval/internal/dto"
	loanhandler "github.com/credisys/credit-approval/internal/handler/loan"
	"github.com/credisys/credit-approval/pkg/common"
)

type LoanHandlerTestSuite struct {
	suite.Suite
	app             *fiber.App
	handler         *loanhandler.LoanHandler
	mockLoanService *MockLoanService

	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

func (suite *LoanHandlerTestSuite) SetupTest() {
	suite.mockLoanService = &MockLoanService{}

	suite.log = zap.NewNop()
	noopTracerProvider := noop_trace.NewTracerProvider()
	suite.tracer = noopTracerProvider.Tracer("test-loan-handler-tracer")
	noopMeterProvider := noop_metric.NewMeterProvider()
	suite.meter = noopMeterProvider.Meter("test-loan-handler-meter")

	suite.handler = loanhandler.NewLoanHandler(
		suite.mockLoanService,
		suite.meter,
		suite.tracer,
		suite.log,
	)

	app := fiber.New()
	app.Post("/check-eligibility", suite.handler.CheckEligibility)
	app.Post("/create-loan", suite.handler.CreateLoan)
	app.Get("/view-loan/:loan_id", suite.handler.ViewLoan)
	app.Get("/view-loans/:customer_id", suite.handler.ViewCustomerLoans)
	suite.app = app
}

func (suite *LoanHandlerTestSuite) postJSON(path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	assert.NoError(suite.T(), err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	return resp
}

func (suite *LoanHandlerTestSuite) TestCheckEligibility_Success() {
	suite.mockLoanService.MockCheckEligibilityResult = &dto.EligibilityResponse{
		CustomerID:            1,
		Approval:              true,
		InterestRate:          15,
		CorrectedInterestRate: 15,
		Tenure:                12,
		MonthlyInstallment:    9025.83,
	}

	resp := suite.postJSON("/check-eligibility", dto.CheckEligibility{
		CustomerID:   1,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.EligibilityResponse
	json.NewDecoder(resp.Body).Decode(&body)
	assert.True(suite.T(), body.Approval)
	assert.Equal(suite.T(), uint64(1), body.CustomerID)
}

func (suite *LoanHandlerTestSuite) TestCheckEligibility_ValidationFailure() {
	resp := suite.postJSON("/check-eligibility", map[string]any{
		"customer_id": 1,
		"loan_amount": 100000,
		// tenure missing
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestCheckEligibility_CustomerNotFound() {
	suite.mockLoanService.MockError = common.ErrCustomerNotFound

	resp := suite.postJSON("/check-eligibility", dto.CheckEligibility{
		CustomerID:   42,
		LoanAmount:   100000,
		InterestRate: 15,
		Tenure:       12,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_Approved() {
	loanID := uint64(7)
	suite.mockLoanService.MockCreateLoanResult = &dto.CreateLoanResponse{
		LoanID:             &loanID,
		CustomerID:         1,
		LoanApproved:       true,
		Message:            "Loan approved successfully.",
		MonthlyInstallment: 9168,
	}

	resp := suite.postJSON("/create-loan", dto.CreateLoan{
		CustomerID:   1,
		LoanAmount:   100000,
		InterestRate: 18,
		Tenure:       12,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	var body dto.CreateLoanResponse
	json.NewDecoder(resp.Body).Decode(&body)
	assert.True(suite.T(), body.LoanApproved)
	assert.NotNil(suite.T(), body.LoanID)
	assert.Equal(suite.T(), loanID, *body.LoanID)
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_RejectedReturnsBadRequest() {
	suite.mockLoanService.MockCreateLoanResult = &dto.CreateLoanResponse{
		LoanID:             nil,
		CustomerID:         1,
		LoanApproved:       false,
		Message:            "Credit score too low for loan approval.",
		MonthlyInstallment: 9168,
	}

	resp := suite.postJSON("/create-loan", dto.CreateLoan{
		CustomerID:   1,
		LoanAmount:   100000,
		InterestRate: 18,
		Tenure:       12,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)

	var body dto.CreateLoanResponse
	json.NewDecoder(resp.Body).Decode(&body)
	assert.False(suite.T(), body.LoanApproved)
	assert.Nil(suite.T(), body.LoanID)
	assert.NotEmpty(suite.T(), body.Message)
}

func (suite *LoanHandlerTestSuite) TestCreateLoan_CustomerNotFound() {
	suite.mockLoanService.MockError = common.ErrCustomerNotFound

	resp := suite.postJSON("/create-loan", dto.CreateLoan{
		CustomerID:   42,
		LoanAmount:   100000,
		InterestRate: 18,
		Tenure:       12,
	})
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestViewLoan_Success() {
	suite.mockLoanService.MockGetLoanResult = &dto.LoanDetailResponse{
		LoanID: 7,
		Customer: dto.CustomerSummary{
			ID:          1,
			FirstName:   "Aarav",
			LastName:    "Sharma",
			PhoneNumber: "9123456789",
		},
		LoanAmount:         100000,
		InterestRate:       18,
		MonthlyInstallment: 9168,
		Tenure:             12,
	}

	req := httptest.NewRequest(http.MethodGet, "/view-loan/7", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body dto.LoanDetailResponse
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(suite.T(), uint64(7), body.LoanID)
	assert.Equal(suite.T(), "Aarav", body.Customer.FirstName)
}

func (suite *LoanHandlerTestSuite) TestViewLoan_NotFound() {
	suite.mockLoanService.MockError = common.ErrLoanNotFound

	req := httptest.NewRequest(http.MethodGet, "/view-loan/424242", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestViewLoan_InvalidID() {
	req := httptest.NewRequest(http.MethodGet, "/view-loan/abc", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *LoanHandlerTestSuite) TestViewCustomerLoans_Success() {
	suite.mockLoanService.MockListCustomerLoansResult = []dto.CustomerLoanItem{
		{LoanID: 7, LoanAmount: 100000, InterestRate: 18, MonthlyInstallment: 9168, RepaymentsLeft: 9},
		{LoanID: 8, LoanAmount: 200000, InterestRate: 14, MonthlyInstallment: 9500, RepaymentsLeft: 20},
	}

	req := httptest.NewRequest(http.MethodGet, "/view-loans/1", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var body []dto.CustomerLoanItem
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Len(suite.T(), body, 2)
	assert.Equal(suite.T(), 9, body[0].RepaymentsLeft)
}

func (suite *LoanHandlerTestSuite) TestViewCustomerLoans_CustomerNotFound() {
	suite.mockLoanService.MockError = common.ErrCustomerNotFound

	req := httptest.NewRequest(http.MethodGet, "/view-loans/42", nil)
	resp, err := suite.app.Test(req)
	assert.NoError(suite.T(), err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func TestLoanHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LoanHandlerTestSuite))
}

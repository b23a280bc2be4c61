package ingestsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/repository"
	"github.com/credisys/credit-approval/internal/service"
)

const dateLayout = "2006-01-02"

type ingestService struct {
	customerRepository repository.CustomerRepository
	loanRepository     repository.LoanRepository

	tracer trace.Tracer
	log    *zap.Logger

	rowsUpserted metric.Int64Counter
	rowsSkipped  metric.Int64Counter
}

func NewIngestService(
	customerRepository repository.CustomerRepository,
	loanRepository repository.LoanRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.IngestService {
	rowsUpserted, _ := meter.Int64Counter(
		"ingest.rows.upserted",
		metric.WithDescription("Number of spreadsheet rows upserted"),
		metric.WithUnit("{row}"),
	)
	rowsSkipped, _ := meter.Int64Counter(
		"ingest.rows.skipped",
		metric.WithDescription("Number of spreadsheet rows skipped"),
		metric.WithUnit("{row}"),
	)

	return &ingestService{
		customerRepository: customerRepository,
		loanRepository:     loanRepository,
		tracer:             tracer,
		log:                log,
		rowsUpserted:       rowsUpserted,
		rowsSkipped:        rowsSkipped,
	}
}

// IngestCustomers implements service.IngestService. Rows keep their
// spreadsheet ids so re-running an import updates rather than duplicates.
func (s *ingestService) IngestCustomers(ctx context.Context, rows []dto.CustomerRow) (*dto.IngestSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.IngestCustomers")
	defer span.End()

	span.SetAttributes(attribute.Int("rows.count", len(rows)))

	summary := &dto.IngestSummary{}
	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		if row.CustomerID == 0 {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings, "customer row without id skipped")
			continue
		}
		customers = append(customers, domain.Customer{
			ID:            row.CustomerID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Age:           row.Age,
			PhoneNumber:   row.PhoneNumber,
			MonthlySalary: decimal.NewFromFloat(row.MonthlySalary),
			ApprovedLimit: decimal.NewFromFloat(row.ApprovedLimit),
		})
	}

	if len(customers) > 0 {
		n, err := s.customerRepository.UpsertBatch(ctx, customers)
		if err != nil {
			span.SetStatus(codes.Error, "Customer upsert failed")
			span.RecordError(err)
			return nil, fmt.Errorf("failed to upsert customers: %w", err)
		}
		summary.Upserted = n
	}

	s.rowsUpserted.Add(ctx, int64(summary.Upserted), metric.WithAttributes(attribute.String("entity", "customer")))
	s.rowsSkipped.Add(ctx, int64(summary.Skipped), metric.WithAttributes(attribute.String("entity", "customer")))
	s.log.Info("Customer import finished",
		zap.Int("upserted", summary.Upserted),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// IngestLoans implements service.IngestService. Loans referencing an unknown
// customer are skipped with a warning instead of failing the whole batch.
func (s *ingestService) IngestLoans(ctx context.Context, rows []dto.LoanRow) (*dto.IngestSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.IngestLoans")
	defer span.End()

	span.SetAttributes(attribute.Int("rows.count", len(rows)))

	summary := &dto.IngestSummary{}
	known := map[uint64]bool{}

	loans := make([]domain.Loan, 0, len(rows))
	for _, row := range rows {
		if row.LoanID == 0 {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings, "loan row without id skipped")
			continue
		}

		exists, ok := known[row.CustomerID]
		if !ok {
			cust, err := s.customerRepository.FindByID(ctx, row.CustomerID)
			if err != nil {
				span.SetStatus(codes.Error, "Customer lookup failed")
				span.RecordError(err)
				return nil, fmt.Errorf("failed to look up customer %d: %w", row.CustomerID, err)
			}
			exists = cust != nil
			known[row.CustomerID] = exists
		}
		if !exists {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("loan %d skipped: customer %d not found", row.LoanID, row.CustomerID))
			continue
		}

		approval, err := time.Parse(dateLayout, row.DateOfApproval)
		if err != nil {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("loan %d skipped: bad approval date %q", row.LoanID, row.DateOfApproval))
			continue
		}

		end, err := time.Parse(dateLayout, row.EndDate)
		if err != nil {
			// reconstruct from tenure when the sheet left the column blank
			end = approval.AddDate(0, row.Tenure, 0)
		}

		loans = append(loans, domain.Loan{
			ID:             row.LoanID,
			CustomerID:     row.CustomerID,
			LoanAmount:     decimal.NewFromFloat(row.LoanAmount),
			Tenure:         row.Tenure,
			InterestRate:   row.InterestRate,
			MonthlyPayment: decimal.NewFromFloat(row.MonthlyPayment),
			EMIsPaidOnTime: row.EMIsPaidOnTime,
			DateOfApproval: approval,
			EndDate:        end,
		})
	}

	if len(loans) > 0 {
		n, err := s.loanRepository.UpsertBatch(ctx, loans)
		if err != nil {
			span.SetStatus(codes.Error, "Loan upsert failed")
			span.RecordError(err)
			return nil, fmt.Errorf("failed to upsert loans: %w", err)
		}
		summary.Upserted = n
	}

	s.rowsUpserted.Add(ctx, int64(summary.Upserted), metric.WithAttributes(attribute.String("entity", "loan")))
	s.rowsSkipped.Add(ctx, int64(summary.Skipped), metric.WithAttributes(attribute.String("entity", "loan")))
	s.log.Info("Loan import finished",
		zap.Int("upserted", summary.Upserted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("warnings", len(summary.Warnings)),
	)
	return summary, nil
}

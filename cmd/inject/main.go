// Command inject loads the customer and loan spreadsheets into the database
// from the command line, using the same parsing and upsert path as the admin
// ingestion endpoints.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	mysqldb "github.com/credisys/credit-approval/infra/mysql"
	"github.com/credisys/credit-approval/internal/ingest"
	"github.com/credisys/credit-approval/internal/model"
	customerrepo "github.com/credisys/credit-approval/internal/repository/customer"
	loanrepo "github.com/credisys/credit-approval/internal/repository/loan"
	ingestsrv "github.com/credisys/credit-approval/internal/service/ingest"
)

func main() {
	customersPath := flag.String("customers", "", "path to the customer spreadsheet (xlsx)")
	loansPath := flag.String("loans", "", "path to the loan spreadsheet (xlsx)")
	flag.Parse()

	if *customersPath == "" && *loansPath == "" {
		slog.Error("Nothing to do: pass -customers and/or -loans")
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment variables")
	}

	log, err := zap.NewProduction()
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := mysqldb.InitializeDatabase()
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := model.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	meter := metricnoop.NewMeterProvider().Meter("inject")
	tracer := tracenoop.NewTracerProvider().Tracer("inject")

	customerRepository := customerrepo.NewCustomerRepository(db, meter, tracer, log)
	loanRepository := loanrepo.NewLoanRepository(db, meter, tracer, log)
	ingestService := ingestsrv.NewIngestService(customerRepository, loanRepository, meter, tracer, log)

	ctx := context.Background()

	if *customersPath != "" {
		f, err := os.Open(*customersPath)
		if err != nil {
			log.Fatal("Failed to open customer spreadsheet", zap.String("path", *customersPath), zap.Error(err))
		}

		rows, err := ingest.ReadCustomerRows(f)
		f.Close()
		if err != nil {
			log.Fatal("Failed to parse customer spreadsheet", zap.String("path", *customersPath), zap.Error(err))
		}

		summary, err := ingestService.IngestCustomers(ctx, rows)
		if err != nil {
			log.Fatal("Customer import failed", zap.Error(err))
		}
		log.Info("Customer import done",
			zap.Int("upserted", summary.Upserted),
			zap.Int("skipped", summary.Skipped),
		)
		for _, warning := range summary.Warnings {
			log.Warn("Customer import warning", zap.String("warning", warning))
		}
	}

	if *loansPath != "" {
		f, err := os.Open(*loansPath)
		if err != nil {
			log.Fatal("Failed to open loan spreadsheet", zap.String("path", *loansPath), zap.Error(err))
		}

		rows, err := ingest.ReadLoanRows(f)
		f.Close()
		if err != nil {
			log.Fatal("Failed to parse loan spreadsheet", zap.String("path", *loansPath), zap.Error(err))
		}

		summary, err := ingestService.IngestLoans(ctx, rows)
		if err != nil {
			log.Fatal("Loan import failed", zap.Error(err))
		}
		log.Info("Loan import done",
			zap.Int("upserted", summary.Upserted),
			zap.Int("skipped", summary.Skipped),
		)
		for _, warning := range summary.Warnings {
			log.Warn("Loan import warning", zap.String("warning", warning))
		}
	}
}

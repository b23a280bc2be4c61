// Package ingest reads customer and loan spreadsheets into import rows.
// Header names follow the upstream data dumps, matched case-insensitively
// so minor edits to the sheets do not break imports.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/credisys/credit-approval/internal/dto"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/06 15:04",
	"01-02-06",
}

// ReadCustomerRows parses a customer sheet. Blank lines and rows without a
// customer id are dropped.
func ReadCustomerRows(r io.Reader) ([]dto.CustomerRow, error) {
	rows, header, err := openSheet(r)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CustomerRow, 0, len(rows))
	for _, row := range rows {
		id := cellUint(row, header, "customer id")
		if id == 0 {
			continue
		}

		cr := dto.CustomerRow{
			CustomerID:    id,
			FirstName:     cellString(row, header, "first name"),
			LastName:      cellString(row, header, "last name"),
			PhoneNumber:   cellString(row, header, "phone number"),
			MonthlySalary: cellFloat(row, header, "monthly salary"),
			ApprovedLimit: cellFloat(row, header, "approved limit"),
		}
		if age := cellUint(row, header, "age"); age > 0 {
			a := int(age)
			cr.Age = &a
		}
		out = append(out, cr)
	}
	return out, nil
}

// ReadLoanRows parses a loan sheet. Blank lines and rows without a loan id
// are dropped; dates are normalized to YYYY-MM-DD strings.
func ReadLoanRows(r io.Reader) ([]dto.LoanRow, error) {
	rows, header, err := openSheet(r)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LoanRow, 0, len(rows))
	for _, row := range rows {
		id := cellUint(row, header, "loan id")
		if id == 0 {
			continue
		}

		out = append(out, dto.LoanRow{
			LoanID:         id,
			CustomerID:     cellUint(row, header, "customer id"),
			LoanAmount:     cellFloat(row, header, "loan amount"),
			Tenure:         int(cellUint(row, header, "tenure")),
			InterestRate:   cellFloat(row, header, "interest rate"),
			MonthlyPayment: cellFloat(row, header, "monthly payment"),
			EMIsPaidOnTime: int(cellUint(row, header, "emis paid on time")),
			DateOfApproval: cellDate(row, header, "date of approval"),
			EndDate:        cellDate(row, header, "end date"),
		})
	}
	return out, nil
}

// openSheet loads the first worksheet and returns its data rows plus a
// lowercased header name to column index map.
func openSheet(r io.Reader) ([][]string, map[string]int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], header, nil
}

func cellString(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellUint(row []string, header map[string]int, name string) uint64 {
	raw := cellString(row, header, name)
	if raw == "" {
		return 0
	}
	// spreadsheets often render integers as "1.0"
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
		return uint64(f)
	}
	return 0
}

func cellFloat(row []string, header map[string]int, name string) float64 {
	raw := strings.ReplaceAll(cellString(row, header, name), ",", "")
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func cellDate(row []string, header map[string]int, name string) string {
	raw := cellString(row, header, name)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// excel serial date, days since 1899-12-30
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(serial))
		return t.Format("2006-01-02")
	}
	return raw
}

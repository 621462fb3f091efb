package collab

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"finsight/internal/models"
	"finsight/pkg/config"
)

func newTestParser(t *testing.T) *StatementParser {
	t.Helper()
	return NewStatementParser(&config.UploadConfig{
		MaxFileSizeMB:    1,
		AllowedFileTypes: []string{"csv", "xlsx"},
	}, zap.NewNop())
}

func TestParseDebitCreditColumns(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Date,Description,Debit,Credit,Balance,Reference",
		"2025-01-01,SALARY CREDIT,,50000,50000,SAL-01",
		"2025-01-03,BIGBASKET GROCERIES,1800.50,,48199.50,POS-11",
		"2025-01-05,UBER TRIP,420,,47779.50,UPI-22",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txns))
	}

	if txns[0].Type != models.TypeCredit || txns[0].Amount != 50000 {
		t.Errorf("row 0 = %+v, want credit 50000", txns[0])
	}
	if txns[1].Type != models.TypeDebit || txns[1].Amount != 1800.50 {
		t.Errorf("row 1 = %+v, want debit 1800.50", txns[1])
	}
	if txns[1].Balance == nil || *txns[1].Balance != 48199.50 {
		t.Errorf("row 1 balance = %v, want 48199.50", txns[1].Balance)
	}
	if txns[2].Reference != "UPI-22" {
		t.Errorf("row 2 reference = %q, want UPI-22", txns[2].Reference)
	}
}

func TestParseAmountWithTypeColumn(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Date,Narration,Amount,Type",
		"01/02/2025,RENT TRANSFER,22000,DR",
		"05/02/2025,FREELANCE PAYMENT,12000,CR",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if txns[0].Type != models.TypeDebit || txns[0].Amount != 22000 {
		t.Errorf("row 0 = %+v, want debit 22000", txns[0])
	}
	if txns[1].Type != models.TypeCredit {
		t.Errorf("row 1 type = %q, want credit", txns[1].Type)
	}
}

func TestParseSignedAmountFallback(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Date,Description,Amount",
		"2025-03-01,COFFEE SHOP,-250",
		"2025-03-02,CASHBACK,120",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if txns[0].Type != models.TypeDebit || txns[0].Amount != 250 {
		t.Errorf("row 0 = %+v, want debit with positive magnitude 250", txns[0])
	}
	if txns[1].Type != models.TypeCredit || txns[1].Amount != 120 {
		t.Errorf("row 1 = %+v, want credit 120", txns[1])
	}
}

func TestParseCurrencyNotation(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Date,Description,Debit,Credit",
		"2025-01-02,\"AMAZON PURCHASE\",\"₹4,599.00\",",
		"2025-01-04,\"SALARY\",,\"INR 85,000\"",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if txns[0].Amount != 4599 {
		t.Errorf("row 0 amount = %v, want 4599", txns[0].Amount)
	}
	if txns[1].Amount != 85000 {
		t.Errorf("row 1 amount = %v, want 85000", txns[1].Amount)
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Date,Description,Debit,Credit",
		"2025-01-01,VALID ROW,100,",
		"not-a-date,BROKEN DATE,100,",
		"2025-01-03,,100,",
		"2025-01-04,BROKEN AMOUNT,abc,",
		"2025-01-05,ANOTHER VALID,200,",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2 valid rows", len(txns))
	}
	if txns[0].Description != "VALID ROW" || txns[1].Description != "ANOTHER VALID" {
		t.Errorf("unexpected rows: %q, %q", txns[0].Description, txns[1].Description)
	}
}

func TestParsePreambleBeforeHeader(t *testing.T) {
	p := newTestParser(t)
	statement := strings.Join([]string{
		"Account Statement",
		"Account Number: XXXX1234",
		"",
		"Date,Description,Debit,Credit",
		"2025-01-01,VALID ROW,100,",
	}, "\n")

	txns, err := p.Parse(context.Background(), []byte(statement), "statement.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("got %d transactions, want 1", len(txns))
	}
}

func TestParseValidation(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name     string
		content  []byte
		filename string
	}{
		{"unsupported extension", []byte("Date,Description,Amount\n2025-01-01,x,1"), "statement.pdf"},
		{"empty file", []byte{}, "statement.csv"},
		{"oversized file", make([]byte, 2*1024*1024), "statement.csv"},
		{"no header row", []byte("just,some,cells\n1,2,3"), "statement.csv"},
		{"header but no valid rows", []byte("Date,Description,Amount\nbad,,"), "statement.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(context.Background(), tt.content, tt.filename)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

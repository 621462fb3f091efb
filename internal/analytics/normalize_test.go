package analytics

import (
	"testing"

	"finsight/internal/models"
)

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func txn(t *testing.T, date, description string, amount float64, txType models.TransactionType, category string) models.CategorizedTransaction {
	t.Helper()
	return Normalize(models.CategorizedTransaction{
		Transaction: models.Transaction{
			Date:        mustDate(t, date),
			Description: description,
			Amount:      amount,
			Type:        txType,
		},
		Category: category,
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		txType       models.TransactionType
		wantSigned   float64
		wantDebited  float64
		wantCredited float64
	}{
		{"debit becomes negative", 500, models.TypeDebit, -500, 500, 0},
		{"credit stays positive", 1200, models.TypeCredit, 1200, 0, 1200},
		{"negative magnitude debit", -300, models.TypeDebit, -300, 300, 0},
		{"negative magnitude credit", -800, models.TypeCredit, 800, 0, 800},
		{"zero amount debit", 0, models.TypeDebit, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := models.CategorizedTransaction{
				Transaction: models.Transaction{
					Date:        mustDate(t, "2025-01-15"),
					Description: "test",
					Amount:      tt.amount,
					Type:        tt.txType,
				},
			}
			got := Normalize(in)
			if got.SignedAmount != tt.wantSigned {
				t.Errorf("SignedAmount = %v, want %v", got.SignedAmount, tt.wantSigned)
			}
			if got.DebitedAmount != tt.wantDebited {
				t.Errorf("DebitedAmount = %v, want %v", got.DebitedAmount, tt.wantDebited)
			}
			if got.CreditedAmount != tt.wantCredited {
				t.Errorf("CreditedAmount = %v, want %v", got.CreditedAmount, tt.wantCredited)
			}
			if got.Amount != tt.amount {
				t.Errorf("Amount changed: got %v, want %v", got.Amount, tt.amount)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := models.CategorizedTransaction{
		Transaction: models.Transaction{
			Date:        mustDate(t, "2025-03-01"),
			Description: "grocery run",
			Amount:      1499.99,
			Type:        models.TypeDebit,
		},
		Category: "Groceries",
	}

	once := Normalize(in)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("second normalization changed the transaction:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func TestNormalizeMalformedTypePassthrough(t *testing.T) {
	in := models.CategorizedTransaction{
		Transaction: models.Transaction{
			Date:        mustDate(t, "2025-03-01"),
			Description: "unknown",
			Amount:      -42,
			Type:        "transfer",
		},
	}
	got := Normalize(in)
	if got.SignedAmount != -42 {
		t.Errorf("SignedAmount = %v, want passthrough -42", got.SignedAmount)
	}
	if got.DebitedAmount != 0 || got.CreditedAmount != 0 {
		t.Errorf("expected no debit/credit split for malformed type, got %v / %v", got.DebitedAmount, got.CreditedAmount)
	}
}

func TestNormalizeAllPreservesOrderAndFields(t *testing.T) {
	in := []models.CategorizedTransaction{
		{
			Transaction: models.Transaction{Date: mustDate(t, "2025-01-01"), Description: "first", Amount: 10, Type: models.TypeDebit},
			Category:    "Shopping",
			Confidence:  0.9,
			Reasoning:   "keyword match",
		},
		{
			Transaction: models.Transaction{Date: mustDate(t, "2025-01-02"), Description: "second", Amount: 20, Type: models.TypeCredit},
			Category:    "Salary/Income",
		},
	}

	out := NormalizeAll(in)
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	if out[0].Description != "first" || out[1].Description != "second" {
		t.Error("order not preserved")
	}
	if out[0].Category != "Shopping" || out[0].Confidence != 0.9 || out[0].Reasoning != "keyword match" {
		t.Errorf("categorization fields not preserved: %+v", out[0])
	}
	if in[0].SignedAmount != 0 {
		t.Error("input slice was mutated")
	}
}

package analytics

import (
	"math"

	"finsight/internal/models"
)

// Normalize canonicalizes a transaction's amount sign so it agrees with the
// declared type: debit yields a negative SignedAmount, credit a non-negative
// one. The ingested Amount is left untouched so no information is lost.
// Applying Normalize to an already-normalized transaction is a no-op.
// A malformed type is not corrected here; Validate rejects it at ingestion.
func Normalize(t models.CategorizedTransaction) models.CategorizedTransaction {
	magnitude := math.Abs(t.Amount)
	switch t.Type {
	case models.TypeDebit:
		t.SignedAmount = -magnitude
		t.DebitedAmount = magnitude
		t.CreditedAmount = 0
	case models.TypeCredit:
		t.SignedAmount = magnitude
		t.CreditedAmount = magnitude
		t.DebitedAmount = 0
	default:
		t.SignedAmount = t.Amount
	}
	return t
}

// NormalizeAll returns a new slice with every transaction normalized.
func NormalizeAll(txns []models.CategorizedTransaction) []models.CategorizedTransaction {
	normalized := make([]models.CategorizedTransaction, len(txns))
	for i, t := range txns {
		normalized[i] = Normalize(t)
	}
	return normalized
}

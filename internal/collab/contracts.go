// Package collab defines the contracts of the three remote collaborators the
// workflow depends on (statement upload, AI categorization, AI insights) and
// the production adapters implementing them.
package collab

import (
	"context"

	"finsight/internal/models"
)

// Uploader turns a raw statement payload into a transaction list.
type Uploader interface {
	Parse(ctx context.Context, content []byte, filename string) ([]models.Transaction, error)
}

// Categorizer assigns a category to every transaction. Failure is
// recoverable: the workflow synthesizes a fallback categorized set.
type Categorizer interface {
	Categorize(ctx context.Context, txns []models.Transaction) ([]models.CategorizedTransaction, error)
}

// InsightsGenerator produces the structured insights object. Failure must
// not block the workflow from reaching results.
type InsightsGenerator interface {
	Generate(ctx context.Context, txns []models.CategorizedTransaction, summary map[string]models.CategorySummary) (*models.FinancialInsights, error)
}

// ValidationError marks failures detected before any remote call (bad file
// type, oversized payload, empty statement). Handlers map it to a 4xx
// status instead of a transport failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// Uncategorized is the bucket used for transactions without a category,
// both as a display default and as the fallback category when the
// categorization collaborator fails.
const Uncategorized = "Uncategorized"

// CategoryAll is the sentinel that disables category filtering.
const CategoryAll = "all"

// dateLayouts are tried in order when parsing statement dates.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

// Date is a calendar date without a meaningful time component. It accepts
// the date notations commonly found in bank statements.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date format: %q", s)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Transaction is one ledger entry as extracted from a bank statement.
// Amount is the magnitude as it appeared on the statement; Type carries
// the sign semantics (debit decreases net balance, credit increases it).
type Transaction struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Balance     *float64        `json:"balance,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// Validate reports whether the entry is usable. Malformed type is rejected
// here rather than silently coerced downstream.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction has no valid date")
	}
	switch t.Type {
	case TypeDebit, TypeCredit:
	default:
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction amount must be a non-negative magnitude, got %v", t.Amount)
	}
	return nil
}

// CategorizedTransaction is a transaction enriched by the categorization
// collaborator. SignedAmount is the normalized amount whose sign agrees
// with Type; Amount stays untouched for audit.
type CategorizedTransaction struct {
	Transaction
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`

	SignedAmount   float64 `json:"signed_amount"`
	DebitedAmount  float64 `json:"debited_amount"`
	CreditedAmount float64 `json:"credited_amount"`
}

// DisplayCategory returns the category with the default bucket substituted
// when absent.
func (t CategorizedTransaction) DisplayCategory() string {
	if t.Category == "" {
		return Uncategorized
	}
	return t.Category
}

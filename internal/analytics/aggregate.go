package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"finsight/internal/models"
)

// DefaultTopN is the default size for category and expense rankings.
const DefaultTopN = 5

// MonthlyBucket holds income and expense totals for one calendar month.
// Months with no transactions are omitted from the series.
type MonthlyBucket struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// DailyBucket holds the total debit amount for one calendar day.
type DailyBucket struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Total float64 `json:"total"`
}

// CategoryRank is one entry of a top-N category ranking.
type CategoryRank struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Metrics holds session-wide financial figures derived from the
// normalized transaction set.
type Metrics struct {
	TotalIncome    float64  `json:"total_income"`
	TotalSpending  float64  `json:"total_spending"`
	NetSavings     float64  `json:"net_savings"`
	SavingsRate    float64  `json:"savings_rate"`
	CurrentBalance *float64 `json:"current_balance,omitempty"`
	DateRange      string   `json:"date_range"`
}

// CategorySummaries computes spend statistics per category over debit
// transactions. Percentages are shares of total spend, rounded to one
// decimal, and defined as 0 when total spend is zero.
func CategorySummaries(txns []models.CategorizedTransaction) map[string]models.CategorySummary {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	largest := make(map[string]decimal.Decimal)
	grand := decimal.Zero

	for _, t := range txns {
		if t.Type != models.TypeDebit {
			continue
		}
		cat := t.DisplayCategory()
		amount := decimal.NewFromFloat(t.DebitedAmount)
		totals[cat] = totals[cat].Add(amount)
		counts[cat]++
		if amount.GreaterThan(largest[cat]) {
			largest[cat] = amount
		}
		grand = grand.Add(amount)
	}

	summaries := make(map[string]models.CategorySummary, len(totals))
	for cat, total := range totals {
		percentage := decimal.Zero
		if grand.IsPositive() {
			percentage = total.Mul(decimal.NewFromInt(100)).Div(grand).Round(1)
		}
		average := decimal.Zero
		if counts[cat] > 0 {
			average = total.Div(decimal.NewFromInt(int64(counts[cat]))).Round(2)
		}
		summaries[cat] = models.CategorySummary{
			TotalAmount:        total.InexactFloat64(),
			TransactionCount:   counts[cat],
			Percentage:         percentage.InexactFloat64(),
			AverageAmount:      average.InexactFloat64(),
			LargestTransaction: largest[cat].InexactFloat64(),
		}
	}
	return summaries
}

// NetTotals computes signed per-category totals over all transactions:
// credits add, debits subtract.
func NetTotals(txns []models.CategorizedTransaction) map[string]float64 {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		cat := t.DisplayCategory()
		totals[cat] = totals[cat].Add(decimal.NewFromFloat(t.SignedAmount))
	}
	out := make(map[string]float64, len(totals))
	for cat, total := range totals {
		out[cat] = total.InexactFloat64()
	}
	return out
}

// TopCategories ranks categories descending by spend magnitude. Ties keep
// the order in which each category first occurs in the transaction list.
func TopCategories(txns []models.CategorizedTransaction, n int) []CategoryRank {
	if n <= 0 {
		n = DefaultTopN
	}
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, t := range txns {
		if t.Type != models.TypeDebit {
			continue
		}
		cat := t.DisplayCategory()
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] = totals[cat].Add(decimal.NewFromFloat(t.DebitedAmount))
	}

	ranks := make([]CategoryRank, 0, len(order))
	for _, cat := range order {
		ranks = append(ranks, CategoryRank{Category: cat, Amount: totals[cat].InexactFloat64()})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Amount > ranks[j].Amount
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// TopExpenses ranks debit transactions descending by amount. Ties keep the
// original sequence order.
func TopExpenses(txns []models.CategorizedTransaction, n int) []models.CategorizedTransaction {
	if n <= 0 {
		n = DefaultTopN
	}
	var debits []models.CategorizedTransaction
	for _, t := range txns {
		if t.Type == models.TypeDebit {
			debits = append(debits, t)
		}
	}
	sort.SliceStable(debits, func(i, j int) bool {
		return debits[i].DebitedAmount > debits[j].DebitedAmount
	})
	if len(debits) > n {
		debits = debits[:n]
	}
	return debits
}

// MonthlySeries buckets transactions by calendar month, accumulating credit
// sums as income and debit sums as expenses. Months without transactions do
// not appear. The series is sorted ascending by month regardless of input
// order.
func MonthlySeries(txns []models.CategorizedTransaction) []MonthlyBucket {
	income := make(map[string]decimal.Decimal)
	expenses := make(map[string]decimal.Decimal)
	for _, t := range txns {
		key := t.Date.Format("2006-01")
		switch t.Type {
		case models.TypeCredit:
			income[key] = income[key].Add(decimal.NewFromFloat(t.CreditedAmount))
			if _, ok := expenses[key]; !ok {
				expenses[key] = decimal.Zero
			}
		case models.TypeDebit:
			expenses[key] = expenses[key].Add(decimal.NewFromFloat(t.DebitedAmount))
			if _, ok := income[key]; !ok {
				income[key] = decimal.Zero
			}
		}
	}

	buckets := make([]MonthlyBucket, 0, len(income))
	for key := range income {
		buckets = append(buckets, MonthlyBucket{
			Month:    key,
			Income:   income[key].InexactFloat64(),
			Expenses: expenses[key].InexactFloat64(),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// DailySeries buckets debit transactions by calendar day. Days without
// debits do not appear. Sorted ascending by date.
func DailySeries(txns []models.CategorizedTransaction) []DailyBucket {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Type != models.TypeDebit {
			continue
		}
		key := t.Date.Format("2006-01-02")
		totals[key] = totals[key].Add(decimal.NewFromFloat(t.DebitedAmount))
	}

	buckets := make([]DailyBucket, 0, len(totals))
	for key, total := range totals {
		buckets = append(buckets, DailyBucket{Date: key, Total: total.InexactFloat64()})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// ComputeMetrics derives session-wide figures. The current balance is taken
// from the last transaction's carried balance when the source provides one;
// otherwise it falls back to the running sum of signed amounts.
func ComputeMetrics(txns []models.CategorizedTransaction) Metrics {
	income := decimal.Zero
	spending := decimal.Zero
	running := decimal.Zero
	for _, t := range txns {
		income = income.Add(decimal.NewFromFloat(t.CreditedAmount))
		spending = spending.Add(decimal.NewFromFloat(t.DebitedAmount))
		running = running.Add(decimal.NewFromFloat(t.SignedAmount))
	}
	net := income.Sub(spending)

	savingsRate := decimal.Zero
	if income.IsPositive() {
		savingsRate = net.Mul(decimal.NewFromInt(100)).Div(income).Round(1)
	}

	m := Metrics{
		TotalIncome:   income.InexactFloat64(),
		TotalSpending: spending.InexactFloat64(),
		NetSavings:    net.InexactFloat64(),
		SavingsRate:   savingsRate.InexactFloat64(),
		DateRange:     dateRange(txns),
	}
	if len(txns) > 0 {
		if carried := txns[len(txns)-1].Balance; carried != nil {
			balance := *carried
			m.CurrentBalance = &balance
		} else {
			derived := running.InexactFloat64()
			m.CurrentBalance = &derived
		}
	}
	return m
}

func dateRange(txns []models.CategorizedTransaction) string {
	if len(txns) == 0 {
		return "No transactions"
	}
	min, max := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(min.Time) {
			min = t.Date
		}
		if t.Date.After(max.Time) {
			max = t.Date
		}
	}
	return min.String() + " to " + max.String()
}

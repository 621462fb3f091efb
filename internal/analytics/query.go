package analytics

import (
	"math"
	"sort"
	"strings"

	"finsight/internal/models"
)

// DefaultPageSize is used when a query does not specify one.
const DefaultPageSize = 10

type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByAmount      SortKey = "amount"
	SortByDescription SortKey = "description"
	SortByCategory    SortKey = "category"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Query describes one view over the transaction table.
type Query struct {
	Search   string
	Category string
	SortKey  SortKey
	Order    SortOrder
	Page     int
	PageSize int
}

// Page is the result of applying a Query: one page slice plus the total
// filtered count.
type Page struct {
	Transactions []models.CategorizedTransaction `json:"transactions"`
	TotalCount   int                             `json:"total_count"`
	Page         int                             `json:"page"`
	PageSize     int                             `json:"page_size"`
	TotalPages   int                             `json:"total_pages"`
}

// ApplyQuery filters, sorts and paginates a transaction snapshot. Sorting is
// stable: transactions with equal sort keys keep their original order.
func ApplyQuery(txns []models.CategorizedTransaction, q Query) Page {
	filtered := filter(txns, q)
	sortTransactions(filtered, q)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int(math.Ceil(float64(len(filtered)) / float64(pageSize)))

	page := q.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Transactions: filtered[start:end],
		TotalCount:   len(filtered),
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
	}
}

// Categories returns the distinct categories present in the snapshot, in
// first-occurrence order, prefixed with the "all" sentinel.
func Categories(txns []models.CategorizedTransaction) []string {
	seen := make(map[string]bool)
	categories := []string{models.CategoryAll}
	for _, t := range txns {
		cat := t.DisplayCategory()
		if !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
	}
	return categories
}

func filter(txns []models.CategorizedTransaction, q Query) []models.CategorizedTransaction {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := q.Category

	filtered := make([]models.CategorizedTransaction, 0, len(txns))
	for _, t := range txns {
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if category != "" && category != models.CategoryAll && t.DisplayCategory() != category {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

func sortTransactions(txns []models.CategorizedTransaction, q Query) {
	key := q.SortKey
	if key == "" {
		key = SortByDate
	}
	desc := q.Order == OrderDesc

	var less func(a, b models.CategorizedTransaction) bool
	switch key {
	case SortByAmount:
		less = func(a, b models.CategorizedTransaction) bool {
			return math.Abs(a.SignedAmount) < math.Abs(b.SignedAmount)
		}
	case SortByDescription:
		less = func(a, b models.CategorizedTransaction) bool {
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		}
	case SortByCategory:
		less = func(a, b models.CategorizedTransaction) bool {
			return strings.ToLower(a.DisplayCategory()) < strings.ToLower(b.DisplayCategory())
		}
	default:
		less = func(a, b models.CategorizedTransaction) bool {
			return a.Date.Before(b.Date.Time)
		}
	}

	// Stable sort: equal keys retain original sequence order in both
	// ascending and descending direction.
	sort.SliceStable(txns, func(i, j int) bool {
		if desc {
			return less(txns[j], txns[i])
		}
		return less(txns[i], txns[j])
	})
}

package models

// CategorySummary aggregates spending statistics for one category.
// TotalAmount is the unsigned spend magnitude (debits only) so that the
// percentage math stays meaningful; signed net totals are served separately
// by the aggregation engine.
type CategorySummary struct {
	TotalAmount        float64 `json:"total_amount"`
	TransactionCount   int     `json:"transaction_count"`
	Percentage         float64 `json:"percentage"`
	AverageAmount      float64 `json:"average_amount"`
	LargestTransaction float64 `json:"largest_transaction"`
}

// SpendingBehavior summarizes the income/expense balance of the session.
type SpendingBehavior struct {
	TotalSpending    float64 `json:"total_spending"`
	TotalIncome      float64 `json:"total_income"`
	NetSavings       float64 `json:"net_savings"`
	TransactionCount int     `json:"transaction_count"`
	SavingsRate      float64 `json:"savings_rate"`
}

type FinancialHealth struct {
	Status      string `json:"status"`
	SavingsRate string `json:"savings_rate"`
	Note        string `json:"note"`
}

type StatisticalInsights struct {
	IncomeSpendingRatio      float64 `json:"income_spending_ratio"`
	RatioComment             string  `json:"ratio_comment"`
	TopCategoryConcentration float64 `json:"top_category_concentration"`
	ConcentrationComment     string  `json:"concentration_comment"`
	TransactionPattern       string  `json:"transaction_pattern"`
	SavingsAssessment        string  `json:"savings_assessment"`
}

type InsightMetadata struct {
	TotalTransactions int    `json:"total_transactions"`
	AnalysisPeriod    string `json:"analysis_period"`
	GeneratedAt       string `json:"generated_at"`
	ModelUsed         string `json:"model_used,omitempty"`
}

// FinancialInsights is the structured object returned by the insights
// collaborator. Any sub-field may be absent; the presentation layer must
// render partial objects.
type FinancialInsights struct {
	KeyInsights         []string            `json:"key_insights"`
	SpendingBehavior    SpendingBehavior    `json:"spending_behavior"`
	Recommendations     []string            `json:"recommendations"`
	FinancialHealth     FinancialHealth     `json:"financial_health"`
	StatisticalInsights StatisticalInsights `json:"statistical_insights"`
	Metadata            InsightMetadata     `json:"metadata"`
}

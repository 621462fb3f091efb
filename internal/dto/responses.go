// Package dto defines the JSON envelopes served to the presentation layer.
package dto

import (
	"finsight/internal/analytics"
	"finsight/internal/models"
)

type FileInfo struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int    `json:"file_size"`
}

type UploadResponse struct {
	Success           bool                 `json:"success"`
	Message           string               `json:"message"`
	Transactions      []models.Transaction `json:"transactions"`
	TotalTransactions int                  `json:"total_transactions"`
	FileInfo          *FileInfo            `json:"file_info,omitempty"`
}

type CategorizationResponse struct {
	Success                 bool                              `json:"success"`
	Message                 string                            `json:"message"`
	CategorizedTransactions []models.CategorizedTransaction   `json:"categorized_transactions"`
	CategorySummary         map[string]models.CategorySummary `json:"category_summary"`
	TotalAmount             float64                           `json:"total_amount"`
	Warning                 string                            `json:"warning,omitempty"`
}

type InsightsResponse struct {
	Success  bool                      `json:"success"`
	Message  string                    `json:"message"`
	Insights *models.FinancialInsights `json:"insights,omitempty"`
	Warning  string                    `json:"warning,omitempty"`
}

type SessionStatus struct {
	Stage                  string `json:"stage"`
	HasTransactions        bool   `json:"has_transactions"`
	HasCategorizedData     bool   `json:"has_categorized_data"`
	HasInsights            bool   `json:"has_insights"`
	TransactionCount       int    `json:"transaction_count"`
	CategoryCount          int    `json:"category_count"`
	ReadyForCategorization bool   `json:"ready_for_categorization"`
	ReadyForInsights       bool   `json:"ready_for_insights"`
	Busy                   bool   `json:"busy"`
	Error                  string `json:"error,omitempty"`
}

type SessionStatusResponse struct {
	Success bool          `json:"success"`
	Status  SessionStatus `json:"status"`
}

type NewSessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

type ResetSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SupportedFormatsResponse struct {
	Success          bool     `json:"success"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSizeMB    int      `json:"max_file_size_mb"`
}

type CorrectionRequest struct {
	TransactionIndex   int    `json:"transaction_index"`
	CorrectCategory    string `json:"correct_category"`
	CorrectSubcategory string `json:"correct_subcategory,omitempty"`
}

type CorrectionResponse struct {
	Success            bool                              `json:"success"`
	Message            string                            `json:"message"`
	UpdatedTransaction models.CategorizedTransaction     `json:"updated_transaction"`
	CategorySummary    map[string]models.CategorySummary `json:"category_summary"`
}

type TransactionPageResponse struct {
	Success      bool                            `json:"success"`
	Transactions []models.CategorizedTransaction `json:"transactions"`
	TotalCount   int                             `json:"total_count"`
	Page         int                             `json:"page"`
	PageSize     int                             `json:"page_size"`
	TotalPages   int                             `json:"total_pages"`
	Categories   []string                        `json:"categories"`
}

type SummaryResponse struct {
	Success         bool                              `json:"success"`
	CategorySummary map[string]models.CategorySummary `json:"category_summary"`
	NetTotals       map[string]float64                `json:"net_totals"`
	Metrics         analytics.Metrics                 `json:"metrics"`
}

type MonthlyTrendsResponse struct {
	Success bool                      `json:"success"`
	Months  []analytics.MonthlyBucket `json:"months"`
}

type DailySpendingResponse struct {
	Success bool                    `json:"success"`
	Days    []analytics.DailyBucket `json:"days"`
}

type TopCategoriesResponse struct {
	Success    bool                     `json:"success"`
	Categories []analytics.CategoryRank `json:"categories"`
}

type TopExpensesResponse struct {
	Success  bool                            `json:"success"`
	Expenses []models.CategorizedTransaction `json:"expenses"`
}

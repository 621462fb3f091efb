package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"finsight/internal/analytics"
	"finsight/internal/dto"
	"finsight/internal/workflow"
)

// AnalyticsHandler serves derived views over the session's categorized
// transaction set. All endpoints are pure reads over a state snapshot.
type AnalyticsHandler struct {
	sessions *workflow.Manager
	logger   *zap.Logger
}

func NewAnalyticsHandler(sessions *workflow.Manager, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ListTransactions godoc
// @Summary Filtered, sorted, paginated transaction view
// @Tags analytics
// @Produce json
// @Param search query string false "Case-insensitive substring match on description"
// @Param category query string false "Category filter; 'all' disables"
// @Param sort_key query string false "date|amount|description|category" default(date)
// @Param sort_order query string false "asc|desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} dto.TransactionPageResponse
// @Router /api/v1/transactions [get]
func (h *AnalyticsHandler) ListTransactions(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()

	query := analytics.Query{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortKey:  analytics.SortKey(c.Query("sort_key", string(analytics.SortByDate))),
		Order:    analytics.SortOrder(c.Query("sort_order", string(analytics.OrderAsc))),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", analytics.DefaultPageSize),
	}
	page := analytics.ApplyQuery(state.Categorized, query)

	return c.JSON(dto.TransactionPageResponse{
		Success:      true,
		Transactions: page.Transactions,
		TotalCount:   page.TotalCount,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalPages:   page.TotalPages,
		Categories:   analytics.Categories(state.Categorized),
	})
}

// Summary godoc
// @Summary Category summaries and session metrics
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Router /api/v1/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()

	return c.JSON(dto.SummaryResponse{
		Success:         true,
		CategorySummary: state.Summary,
		NetTotals:       analytics.NetTotals(state.Categorized),
		Metrics:         analytics.ComputeMetrics(state.Categorized),
	})
}

// MonthlyTrends godoc
// @Summary Monthly income/expense series
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.MonthlyTrendsResponse
// @Router /api/v1/analytics/monthly [get]
func (h *AnalyticsHandler) MonthlyTrends(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()
	return c.JSON(dto.MonthlyTrendsResponse{
		Success: true,
		Months:  analytics.MonthlySeries(state.Categorized),
	})
}

// DailySpending godoc
// @Summary Daily debit totals
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.DailySpendingResponse
// @Router /api/v1/analytics/daily [get]
func (h *AnalyticsHandler) DailySpending(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()
	return c.JSON(dto.DailySpendingResponse{
		Success: true,
		Days:    analytics.DailySeries(state.Categorized),
	})
}

// TopCategories godoc
// @Summary Top spending categories
// @Tags analytics
// @Produce json
// @Param limit query int false "Ranking size" default(5)
// @Success 200 {object} dto.TopCategoriesResponse
// @Router /api/v1/analytics/top-categories [get]
func (h *AnalyticsHandler) TopCategories(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()
	limit := c.QueryInt("limit", analytics.DefaultTopN)
	return c.JSON(dto.TopCategoriesResponse{
		Success:    true,
		Categories: analytics.TopCategories(state.Categorized, limit),
	})
}

// TopExpenses godoc
// @Summary Largest debit transactions
// @Tags analytics
// @Produce json
// @Param limit query int false "Ranking size" default(5)
// @Success 200 {object} dto.TopExpensesResponse
// @Router /api/v1/analytics/top-expenses [get]
func (h *AnalyticsHandler) TopExpenses(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()
	limit := c.QueryInt("limit", analytics.DefaultTopN)
	return c.JSON(dto.TopExpensesResponse{
		Success:  true,
		Expenses: analytics.TopExpenses(state.Categorized, limit),
	})
}

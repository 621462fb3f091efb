package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"

	"finsight/internal/analytics"
	"finsight/internal/models"
	"finsight/pkg/config"
)

// standardCategories is the controlled vocabulary the model is asked to
// stay within.
var standardCategories = []string{
	"Salary/Income", "Groceries", "Food & Dining", "Bills & Utilities",
	"Transportation", "Entertainment", "Shopping", "Healthcare",
	"Travel", "Other",
}

func buildSystemInstruction() string {
	return `You are an expert financial transaction categorization and analysis specialist.

RESPONSIBILITIES:
1. Categorize bank transactions into exactly one of the standard categories:
   ` + strings.Join(standardCategories, ", ") + `
2. Generate financial insights: spending patterns, savings analysis, financial health assessment and actionable recommendations.

RULES:
- Always respond with valid JSON in the exact format requested, with no additional text, comments or markdown fences.
- Pick the most specific category that fits; use "Other" only when nothing else applies.
- Confidence scores are floats between 0.0 and 1.0.
- Never invent transactions that are not in the input.
- Recommendations must be specific and achievable, not generic advice.`
}

// GigaChatClient implements Categorizer and InsightsGenerator against the
// GigaChat API.
type GigaChatClient struct {
	client    *gigago.Client
	model     *gigago.GenerativeModel
	modelName string
	logger    *zap.Logger
}

func NewGigaChatClient(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatClient, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.3

	return &GigaChatClient{
		client:    client,
		model:     model,
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

func (c *GigaChatClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

type transactionPayload struct {
	Index       int     `json:"index"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

type categorization struct {
	Index       int     `json:"index"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// Categorize sends the transaction list to the model and maps the returned
// categorizations back onto the originals by index. Transactions the model
// missed get a keyword-based categorization so a partial model response
// never loses entries. Transport or response-format failures are returned
// as errors; the workflow applies its own fallback policy.
func (c *GigaChatClient) Categorize(ctx context.Context, txns []models.Transaction) ([]models.CategorizedTransaction, error) {
	if len(txns) == 0 {
		return []models.CategorizedTransaction{}, nil
	}

	payload := make([]transactionPayload, len(txns))
	for i, t := range txns {
		payload[i] = transactionPayload{
			Index:       i,
			Date:        t.Date.String(),
			Description: t.Description,
			Amount:      t.Amount,
			Type:        string(t.Type),
		}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transactions: %w", err)
	}

	prompt := fmt.Sprintf(`Categorize the following %d financial transactions.

Return your response in this EXACT JSON format:
{"transactions": [{"index": 0, "category": "Category Name", "subcategory": "Subcategory Name", "confidence": 0.95, "reasoning": "Brief explanation"}]}

Transactions to categorize:
%s

Important: return only the JSON response, no additional text or formatting.`, len(txns), payloadJSON)

	resp, err := c.model.Generate(ctx, []gigago.Message{{Role: gigago.RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("categorization request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	var parsed struct {
		Transactions []categorization `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content, "{", "}")), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse categorization response: %w", err)
	}

	byIndex := make(map[int]categorization, len(parsed.Transactions))
	for _, cat := range parsed.Transactions {
		byIndex[cat.Index] = cat
	}

	categorized := make([]models.CategorizedTransaction, len(txns))
	missed := 0
	for i, original := range txns {
		cat, ok := byIndex[i]
		if !ok {
			missed++
			category, subcategory := keywordCategorize(original.Description)
			cat = categorization{
				Category:    category,
				Subcategory: subcategory,
				Confidence:  0.3,
				Reasoning:   "Keyword categorization: model response did not cover this transaction",
			}
		}
		categorized[i] = models.CategorizedTransaction{
			Transaction: original,
			Category:    cat.Category,
			Subcategory: cat.Subcategory,
			Confidence:  clampConfidence(cat.Confidence),
			Reasoning:   cat.Reasoning,
		}
	}
	if missed > 0 {
		c.logger.Warn("Model response missed transactions, keyword fallback applied",
			zap.Int("missed", missed),
			zap.Int("total", len(txns)),
		)
	}

	c.logger.Info("Transactions categorized",
		zap.Int("count", len(categorized)),
	)
	return categorized, nil
}

// Generate asks the model for financial insights over the categorized set.
// If the model's answer is unusable the client degrades to deterministic
// insights computed locally; only transport failures surface as errors.
func (c *GigaChatClient) Generate(ctx context.Context, txns []models.CategorizedTransaction, summary map[string]models.CategorySummary) (*models.FinancialInsights, error) {
	if len(txns) == 0 {
		return nil, &ValidationError{Reason: "no categorized transactions available"}
	}

	metrics := analytics.ComputeMetrics(txns)
	summaryJSON, _ := json.Marshal(summary)

	prompt := fmt.Sprintf(`Analyze the following financial data and generate comprehensive insights.

FINANCIAL OVERVIEW:
Total Income: %.2f
Total Spending: %.2f
Net Savings: %.2f
Savings Rate: %.1f%%
Transaction Count: %d
Analysis Period: %s

SPENDING BREAKDOWN BY CATEGORY:
%s

Respond with valid JSON in this exact shape:
{"key_insights": ["..."], "recommendations": ["..."], "financial_health": {"status": "Excellent/Good/Fair/Needs Improvement", "savings_rate": "X.X%%", "note": "..."}, "statistical_insights": {"income_spending_ratio": 0.0, "ratio_comment": "...", "top_category_concentration": 0.0, "concentration_comment": "...", "transaction_pattern": "...", "savings_assessment": "..."}}`,
		metrics.TotalIncome, metrics.TotalSpending, metrics.NetSavings,
		metrics.SavingsRate, len(txns), metrics.DateRange, summaryJSON)

	resp, err := c.model.Generate(ctx, []gigago.Message{{Role: gigago.RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("insights request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	var parsed struct {
		KeyInsights     []string                   `json:"key_insights"`
		Recommendations []string                   `json:"recommendations"`
		FinancialHealth models.FinancialHealth     `json:"financial_health"`
		Statistical     models.StatisticalInsights `json:"statistical_insights"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content, "{", "}")), &parsed); err != nil {
		c.logger.Warn("Unusable insights response, building deterministic fallback", zap.Error(err))
		return fallbackInsights(metrics, len(txns)), nil
	}

	insights := fallbackInsights(metrics, len(txns))
	insights.Metadata.ModelUsed = c.modelName
	if len(parsed.KeyInsights) > 0 {
		insights.KeyInsights = parsed.KeyInsights
	}
	if len(parsed.Recommendations) > 0 {
		insights.Recommendations = parsed.Recommendations
	}
	if parsed.FinancialHealth.Status != "" {
		insights.FinancialHealth = parsed.FinancialHealth
	}
	if parsed.Statistical.RatioComment != "" {
		insights.StatisticalInsights = parsed.Statistical
	}

	c.logger.Info("Insights generated", zap.Int("key_insights", len(insights.KeyInsights)))
	return insights, nil
}

// fallbackInsights builds deterministic insights from local metrics when
// the model cannot be used.
func fallbackInsights(metrics analytics.Metrics, transactionCount int) *models.FinancialInsights {
	status := "Needs Improvement"
	switch {
	case metrics.SavingsRate > 40:
		status = "Excellent"
	case metrics.SavingsRate > 20:
		status = "Good"
	case metrics.SavingsRate > 10:
		status = "Fair"
	}

	ratio := 0.0
	if metrics.TotalIncome > 0 {
		ratio = metrics.TotalSpending / metrics.TotalIncome
	}

	return &models.FinancialInsights{
		KeyInsights: []string{
			fmt.Sprintf("Total spending: ₹%.2f", metrics.TotalSpending),
			fmt.Sprintf("Total income: ₹%.2f", metrics.TotalIncome),
			fmt.Sprintf("Net savings: ₹%.2f", metrics.NetSavings),
			fmt.Sprintf("Savings rate: %.1f%%", metrics.SavingsRate),
		},
		SpendingBehavior: models.SpendingBehavior{
			TotalSpending:    metrics.TotalSpending,
			TotalIncome:      metrics.TotalIncome,
			NetSavings:       metrics.NetSavings,
			TransactionCount: transactionCount,
			SavingsRate:      metrics.SavingsRate,
		},
		Recommendations: []string{
			"Review your spending patterns regularly",
			"Set up a monthly budget",
			"Track expenses by category",
		},
		FinancialHealth: models.FinancialHealth{
			Status:      status,
			SavingsRate: fmt.Sprintf("%.1f%%", metrics.SavingsRate),
			Note:        fmt.Sprintf("Automated assessment based on %.1f%% savings rate", metrics.SavingsRate),
		},
		StatisticalInsights: models.StatisticalInsights{
			IncomeSpendingRatio: ratio,
			RatioComment:        fmt.Sprintf("You spend %.0f%% of your income", ratio*100),
			SavingsAssessment:   fmt.Sprintf("Savings rate of %.1f%% indicates %s financial discipline", metrics.SavingsRate, strings.ToLower(status)),
		},
		Metadata: models.InsightMetadata{
			TotalTransactions: transactionCount,
			AnalysisPeriod:    metrics.DateRange,
			GeneratedAt:       time.Now().Format(time.RFC3339),
			ModelUsed:         "fallback",
		},
	}
}

// extractJSON pulls the first JSON value delimited by open/close out of a
// model response that may be wrapped in markdown fences or commentary.
func extractJSON(content, opening, closing string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, opening)
	end := strings.LastIndex(content, closing)
	if start == -1 || end == -1 || end < start {
		return content
	}
	extracted := content[start : end+1]
	extracted = strings.TrimPrefix(extracted, "```json")
	extracted = strings.TrimPrefix(extracted, "```")
	extracted = strings.TrimSuffix(extracted, "```")
	return strings.TrimSpace(extracted)
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// keywordCategorize is the rule-based fallback for single transactions the
// model response did not cover.
func keywordCategorize(description string) (string, string) {
	desc := strings.ToLower(description)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(desc, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("salary", "income", "interest", "bonus"):
		return "Salary/Income", "Salary"
	case contains("grocery", "supermarket", "market", "bazaar"):
		return "Groceries", "Supermarket"
	case contains("restaurant", "food", "dining", "zomato", "swiggy"):
		return "Food & Dining", "Restaurant"
	case contains("electricity", "water", "gas", "internet", "phone", "bill"):
		return "Bills & Utilities", "Utility"
	case contains("fuel", "petrol", "taxi", "uber", "ola", "bus", "train"):
		return "Transportation", "Transport"
	case contains("movie", "entertainment", "game", "netflix"):
		return "Entertainment", "Entertainment"
	case contains("amazon", "flipkart", "shopping", "purchase"):
		return "Shopping", "Online"
	case contains("hospital", "medical", "pharmacy", "medicine", "doctor"):
		return "Healthcare", "Medical"
	case contains("travel", "trip", "hotel", "flight"):
		return "Travel", "Trip"
	default:
		return "Other", "General"
	}
}

package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"finsight/internal/models"
)

type fakeUploader struct {
	txns []models.Transaction
	err  error
}

func (f *fakeUploader) Parse(ctx context.Context, content []byte, filename string) ([]models.Transaction, error) {
	return f.txns, f.err
}

type fakeCategorizer struct {
	result []models.CategorizedTransaction
	err    error
	before func() // runs while the call is "in flight"
}

func (f *fakeCategorizer) Categorize(ctx context.Context, txns []models.Transaction) ([]models.CategorizedTransaction, error) {
	if f.before != nil {
		f.before()
	}
	return f.result, f.err
}

type fakeGenerator struct {
	result *models.FinancialInsights
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, txns []models.CategorizedTransaction, summary map[string]models.CategorySummary) (*models.FinancialInsights, error) {
	return f.result, f.err
}

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func fixtureTransactions(t *testing.T) []models.Transaction {
	t.Helper()
	return []models.Transaction{
		{Date: date(t, "2025-01-01"), Description: "salary", Amount: 50000, Type: models.TypeCredit},
		{Date: date(t, "2025-01-03"), Description: "groceries", Amount: 2500, Type: models.TypeDebit},
		{Date: date(t, "2025-01-05"), Description: "dinner", Amount: 900, Type: models.TypeDebit},
	}
}

func fixtureCategorized(t *testing.T) []models.CategorizedTransaction {
	t.Helper()
	txns := fixtureTransactions(t)
	cats := []string{"Salary/Income", "Groceries", "Food & Dining"}
	out := make([]models.CategorizedTransaction, len(txns))
	for i, tx := range txns {
		out[i] = models.CategorizedTransaction{Transaction: tx, Category: cats[i], Confidence: 0.9}
	}
	return out
}

func newTestController(t *testing.T, up *fakeUploader, cat *fakeCategorizer, gen *fakeGenerator) *Controller {
	t.Helper()
	if up == nil {
		up = &fakeUploader{}
	}
	if cat == nil {
		cat = &fakeCategorizer{}
	}
	if gen == nil {
		gen = &fakeGenerator{}
	}
	return NewController(up, cat, gen, nil, zap.NewNop())
}

// advance drives a fresh controller through upload and categorize.
func advance(t *testing.T, c *Controller) {
	t.Helper()
	if _, err := c.Upload(context.Background(), []byte("x"), "test.csv"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := c.Categorize(context.Background()); err != nil {
		t.Fatalf("Categorize: %v", err)
	}
}

func TestUploadAdvancesStage(t *testing.T) {
	c := newTestController(t, &fakeUploader{txns: fixtureTransactions(t)}, nil, nil)

	state, err := c.Upload(context.Background(), []byte("x"), "test.csv")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if state.Stage != StageCategorize {
		t.Errorf("stage = %q, want %q", state.Stage, StageCategorize)
	}
	if len(state.Transactions) != 3 {
		t.Errorf("transactions = %d, want 3", len(state.Transactions))
	}
	if state.Error != "" {
		t.Errorf("error = %q, want empty", state.Error)
	}
}

func TestUploadFailureStaysInUpload(t *testing.T) {
	c := newTestController(t, &fakeUploader{err: errors.New("unreadable statement")}, nil, nil)

	state, err := c.Upload(context.Background(), []byte("x"), "bad.csv")
	if err == nil {
		t.Fatal("expected upload error")
	}
	if state.Stage != StageUpload {
		t.Errorf("stage = %q, want %q", state.Stage, StageUpload)
	}
	if state.Error == "" {
		t.Error("error field must be populated")
	}
	if len(state.Transactions) != 0 {
		t.Errorf("partial transactions must be cleared, got %d", len(state.Transactions))
	}
}

func TestCategorizeSuccess(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		nil,
	)
	if _, err := c.Upload(context.Background(), []byte("x"), "test.csv"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	state, err := c.Categorize(context.Background())
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if state.Stage != StageInsights {
		t.Errorf("stage = %q, want %q", state.Stage, StageInsights)
	}
	if len(state.Categorized) != 3 {
		t.Fatalf("categorized = %d, want 3", len(state.Categorized))
	}
	// Normalization must have run: debit amounts carry a negative sign.
	if state.Categorized[1].SignedAmount != -2500 {
		t.Errorf("SignedAmount = %v, want -2500", state.Categorized[1].SignedAmount)
	}
	if len(state.Summary) == 0 {
		t.Error("summary must be computed")
	}
}

func TestCategorizeFailureFallsBackToResults(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{err: errors.New("service unavailable")},
		nil,
	)
	if _, err := c.Upload(context.Background(), []byte("x"), "test.csv"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	state, err := c.Categorize(context.Background())
	if err != nil {
		t.Fatalf("fallback must not surface an error, got %v", err)
	}
	if state.Stage != StageResults {
		t.Errorf("stage = %q, want %q (insights skipped)", state.Stage, StageResults)
	}
	if state.Error == "" {
		t.Error("warning must be populated")
	}
	if len(state.Categorized) != 3 {
		t.Fatalf("categorized = %d, want all 3", len(state.Categorized))
	}
	for i, tx := range state.Categorized {
		if tx.Category != models.Uncategorized {
			t.Errorf("transaction %d category = %q, want %q", i, tx.Category, models.Uncategorized)
		}
		if tx.Confidence != 0 {
			t.Errorf("transaction %d confidence = %v, want 0", i, tx.Confidence)
		}
	}
	// Aggregates reflect the fallback set.
	if _, ok := state.Summary[models.Uncategorized]; !ok {
		t.Errorf("summary missing %q bucket: %v", models.Uncategorized, state.Summary)
	}
}

func TestGenerateInsightsSuccess(t *testing.T) {
	insights := &models.FinancialInsights{
		KeyInsights: []string{"Spending is concentrated in groceries"},
	}
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		&fakeGenerator{result: insights},
	)
	advance(t, c)

	state, err := c.GenerateInsights(context.Background())
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if state.Stage != StageResults {
		t.Errorf("stage = %q, want %q", state.Stage, StageResults)
	}
	if state.Insights == nil || len(state.Insights.KeyInsights) != 1 {
		t.Errorf("insights = %+v", state.Insights)
	}
}

func TestGenerateInsightsFailureStillReachesResults(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		&fakeGenerator{err: errors.New("timeout")},
	)
	advance(t, c)

	state, err := c.GenerateInsights(context.Background())
	if err != nil {
		t.Fatalf("insights failure must not surface an error, got %v", err)
	}
	if state.Stage != StageResults {
		t.Errorf("stage = %q, want %q", state.Stage, StageResults)
	}
	if state.Insights != nil {
		t.Errorf("insights = %+v, want absent", state.Insights)
	}
	if state.Error == "" {
		t.Error("warning must be populated")
	}
}

func TestStageGating(t *testing.T) {
	c := newTestController(t, &fakeUploader{txns: fixtureTransactions(t)}, nil, nil)

	if _, err := c.Categorize(context.Background()); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Categorize in upload stage: err = %v, want ErrInvalidStage", err)
	}
	if _, err := c.GenerateInsights(context.Background()); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("GenerateInsights in upload stage: err = %v, want ErrInvalidStage", err)
	}
}

func TestBusyGuard(t *testing.T) {
	uploader := &fakeUploader{txns: fixtureTransactions(t)}
	var c *Controller
	cat := &fakeCategorizer{
		result: fixtureCategorized(t),
		before: func() {
			// Second categorize request while the first is still running.
			if _, err := c.Categorize(context.Background()); !errors.Is(err, ErrBusy) {
				t.Errorf("concurrent Categorize: err = %v, want ErrBusy", err)
			}
		},
	}
	c = newTestController(t, uploader, cat, nil)

	if _, err := c.Upload(context.Background(), []byte("x"), "test.csv"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := c.Categorize(context.Background()); err != nil {
		t.Fatalf("Categorize: %v", err)
	}
}

func TestResetInvalidatesInFlightCall(t *testing.T) {
	uploader := &fakeUploader{txns: fixtureTransactions(t)}
	var c *Controller
	cat := &fakeCategorizer{
		result: fixtureCategorized(t),
		before: func() { c.Reset() },
	}
	c = newTestController(t, uploader, cat, nil)

	if _, err := c.Upload(context.Background(), []byte("x"), "test.csv"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	state, err := c.Categorize(context.Background())
	if !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}
	if state.Stage != StageUpload {
		t.Errorf("stage = %q, want pristine %q", state.Stage, StageUpload)
	}
	if len(state.Categorized) != 0 {
		t.Errorf("stale result must be discarded, got %d categorized", len(state.Categorized))
	}
}

func TestReset(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		nil,
	)
	advance(t, c)

	state := c.Reset()
	if state.Stage != StageUpload {
		t.Errorf("stage = %q, want %q", state.Stage, StageUpload)
	}
	if len(state.Transactions) != 0 || len(state.Categorized) != 0 || len(state.Summary) != 0 {
		t.Errorf("state not cleared: %+v", state)
	}
	if state.Insights != nil || state.Error != "" {
		t.Errorf("state not cleared: %+v", state)
	}
}

func TestCorrect(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		nil,
	)
	advance(t, c)

	before := c.Snapshot()
	groceriesBefore := before.Summary["Groceries"].TransactionCount

	state, err := c.Correct(1, "Shopping", "Online")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	got := state.Categorized[1]
	if got.Category != "Shopping" || got.Subcategory != "Online" {
		t.Errorf("correction not applied: %+v", got)
	}
	if got.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", got.Confidence)
	}
	if !strings.Contains(got.Reasoning, "Groceries") {
		t.Errorf("reasoning should name the previous category, got %q", got.Reasoning)
	}

	// Counts move between buckets.
	if state.Summary["Shopping"].TransactionCount != 1 {
		t.Errorf("Shopping count = %d, want 1", state.Summary["Shopping"].TransactionCount)
	}
	if got := state.Summary["Groceries"].TransactionCount; got != groceriesBefore-1 {
		t.Errorf("Groceries count = %d, want %d", got, groceriesBefore-1)
	}
}

func TestCorrectValidation(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		nil,
	)

	if _, err := c.Correct(0, "Shopping", ""); !errors.Is(err, ErrNoData) {
		t.Errorf("before categorization: err = %v, want ErrNoData", err)
	}

	advance(t, c)

	if _, err := c.Correct(-1, "Shopping", ""); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("negative index: err = %v, want ErrInvalidIndex", err)
	}
	if _, err := c.Correct(99, "Shopping", ""); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("out of range index: err = %v, want ErrInvalidIndex", err)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	c := newTestController(t,
		&fakeUploader{txns: fixtureTransactions(t)},
		&fakeCategorizer{result: fixtureCategorized(t)},
		nil,
	)
	advance(t, c)

	snap := c.Snapshot()
	snap.Categorized[0].Category = "Tampered"
	snap.Summary["Groceries"] = models.CategorySummary{}

	fresh := c.Snapshot()
	if fresh.Categorized[0].Category == "Tampered" {
		t.Error("mutating a snapshot leaked into controller state")
	}
	if fresh.Summary["Groceries"].TransactionCount == 0 {
		t.Error("mutating a snapshot summary leaked into controller state")
	}
}

func TestNewAttemptClearsPreviousError(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("boom")}
	c := newTestController(t, uploader, nil, nil)

	if _, err := c.Upload(context.Background(), []byte("x"), "bad.csv"); err == nil {
		t.Fatal("expected upload error")
	}

	uploader.err = nil
	uploader.txns = fixtureTransactions(t)
	state, err := c.Upload(context.Background(), []byte("x"), "good.csv")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if state.Error != "" {
		t.Errorf("error = %q, want cleared", state.Error)
	}
}

// Package workflow drives a session through the four processing stages
// (upload, categorize, insights, results) and owns the fallback policy that
// guarantees every failure path has a forward transition.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"finsight/internal/analytics"
	"finsight/internal/collab"
	insightfmt "finsight/internal/insights"
	"finsight/internal/models"
)

type Stage string

const (
	StageUpload     Stage = "upload"
	StageCategorize Stage = "categorize"
	StageInsights   Stage = "insights"
	StageResults    Stage = "results"
)

var (
	// ErrInvalidStage is returned when an operation is requested outside
	// its stage.
	ErrInvalidStage = errors.New("operation not valid in current stage")
	// ErrBusy is returned when a call for a stage is already in flight.
	ErrBusy = errors.New("a call for this stage is already in progress")
	// ErrStale is returned when a collaborator result arrives after the
	// session was reset; the result is discarded.
	ErrStale = errors.New("session was reset while the call was in flight")
	// ErrInvalidIndex is returned for corrections addressing a
	// transaction that does not exist.
	ErrInvalidIndex = errors.New("invalid transaction index")
	// ErrNoData is returned when a correction is requested before any
	// categorized data exists.
	ErrNoData = errors.New("no categorized transactions available")
)

// State is the single source of truth for one session. Snapshots handed to
// readers are deep copies; no component holds an independent copy of the
// stage.
type State struct {
	Stage        Stage                             `json:"stage"`
	Transactions []models.Transaction              `json:"transactions"`
	Categorized  []models.CategorizedTransaction   `json:"categorized_transactions"`
	Summary      map[string]models.CategorySummary `json:"category_summary"`
	Insights     *models.FinancialInsights         `json:"insights,omitempty"`
	Error        string                            `json:"error,omitempty"`
	Busy         bool                              `json:"busy"`
}

func newState() State {
	return State{
		Stage:        StageUpload,
		Transactions: []models.Transaction{},
		Categorized:  []models.CategorizedTransaction{},
		Summary:      map[string]models.CategorySummary{},
	}
}

// Controller owns the workflow state machine for one session.
type Controller struct {
	mu         sync.Mutex
	generation uint64
	inFlight   map[Stage]bool
	state      State

	uploader    collab.Uploader
	categorizer collab.Categorizer
	generator   collab.InsightsGenerator
	formatter   *insightfmt.Formatter
	logger      *zap.Logger
}

func NewController(
	uploader collab.Uploader,
	categorizer collab.Categorizer,
	generator collab.InsightsGenerator,
	formatter *insightfmt.Formatter,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		inFlight:    make(map[Stage]bool),
		state:       newState(),
		uploader:    uploader,
		categorizer: categorizer,
		generator:   generator,
		formatter:   formatter,
		logger:      logger,
	}
}

// Upload parses a statement payload and, on success, moves the session from
// upload to categorize. On failure the session stays in upload with the
// error surfaced and any partial transaction set cleared.
func (c *Controller) Upload(ctx context.Context, content []byte, filename string) (State, error) {
	gen, err := c.begin(StageUpload, StageUpload)
	if err != nil {
		return c.Snapshot(), err
	}

	txns, parseErr := c.uploader.Parse(ctx, content, filename)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[StageUpload] = false
	if c.generation != gen {
		return c.copyStateLocked(), ErrStale
	}

	if parseErr != nil {
		c.state.Error = parseErr.Error()
		c.state.Transactions = []models.Transaction{}
		c.logger.Warn("Statement upload failed",
			zap.String("filename", filename),
			zap.Error(parseErr),
		)
		return c.copyStateLocked(), parseErr
	}

	c.state.Transactions = txns
	c.state.Stage = StageCategorize
	c.logger.Info("Statement uploaded",
		zap.String("filename", filename),
		zap.Int("transactions", len(txns)),
	)
	return c.copyStateLocked(), nil
}

// Categorize invokes the categorization collaborator. On success the
// transaction set is replaced with the normalized categorized set and the
// session advances to insights. On failure the workflow does not halt: every
// transaction is assigned the Uncategorized fallback category, aggregates
// are recomputed from that set, and the session jumps straight to results
// with a non-fatal warning.
func (c *Controller) Categorize(ctx context.Context) (State, error) {
	gen, err := c.begin(StageCategorize, StageCategorize)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	snapshot := make([]models.Transaction, len(c.state.Transactions))
	copy(snapshot, c.state.Transactions)
	c.mu.Unlock()

	categorized, catErr := c.categorizer.Categorize(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[StageCategorize] = false
	if c.generation != gen {
		return c.copyStateLocked(), ErrStale
	}

	if catErr != nil {
		fallback := fallbackCategorization(snapshot)
		c.state.Categorized = fallback
		c.state.Summary = analytics.CategorySummaries(fallback)
		c.state.Stage = StageResults
		c.state.Error = fmt.Sprintf("Categorization failed (%v); transactions are shown as %s", catErr, models.Uncategorized)
		c.logger.Warn("Categorization failed, fallback applied",
			zap.Int("transactions", len(fallback)),
			zap.Error(catErr),
		)
		return c.copyStateLocked(), nil
	}

	normalized := analytics.NormalizeAll(categorized)
	c.state.Categorized = normalized
	c.state.Summary = analytics.CategorySummaries(normalized)
	c.state.Stage = StageInsights
	c.logger.Info("Transactions categorized",
		zap.Int("transactions", len(normalized)),
		zap.Int("categories", len(c.state.Summary)),
	)
	return c.copyStateLocked(), nil
}

// GenerateInsights invokes the insights collaborator. Either outcome moves
// the session to results; on failure the insights stay absent and a warning
// is surfaced.
func (c *Controller) GenerateInsights(ctx context.Context) (State, error) {
	gen, err := c.begin(StageInsights, StageInsights)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	categorized := make([]models.CategorizedTransaction, len(c.state.Categorized))
	copy(categorized, c.state.Categorized)
	summary := copySummary(c.state.Summary)
	c.mu.Unlock()

	generated, genErr := c.generator.Generate(ctx, categorized, summary)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight[StageInsights] = false
	if c.generation != gen {
		return c.copyStateLocked(), ErrStale
	}

	c.state.Stage = StageResults
	if genErr != nil {
		c.state.Insights = nil
		c.state.Error = fmt.Sprintf("Insights generation failed (%v); results are available without insights", genErr)
		c.logger.Warn("Insights generation failed", zap.Error(genErr))
		return c.copyStateLocked(), nil
	}

	c.state.Insights = c.localizeInsights(generated)
	c.logger.Info("Insights generated")
	return c.copyStateLocked(), nil
}

// Correct applies a user correction to the transaction at the given index
// and recomputes all aggregates. This is the sole external mutation entry
// point into an already-categorized set; the set itself is replaced, never
// mutated in place.
func (c *Controller) Correct(index int, category, subcategory string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.Categorized) == 0 {
		return c.copyStateLocked(), ErrNoData
	}
	if index < 0 || index >= len(c.state.Categorized) {
		return c.copyStateLocked(), ErrInvalidIndex
	}

	corrected := make([]models.CategorizedTransaction, len(c.state.Categorized))
	copy(corrected, c.state.Categorized)

	previous := corrected[index].DisplayCategory()
	corrected[index].Category = category
	if subcategory != "" {
		corrected[index].Subcategory = subcategory
	}
	corrected[index].Confidence = 1.0
	corrected[index].Reasoning = fmt.Sprintf("User correction from %s", previous)

	c.state.Categorized = corrected
	c.state.Summary = analytics.CategorySummaries(corrected)
	c.logger.Info("Transaction corrected",
		zap.Int("index", index),
		zap.String("from", previous),
		zap.String("to", category),
	)
	return c.copyStateLocked(), nil
}

// Reset discards all session state and returns to the pristine upload
// stage. Any collaborator call still in flight is invalidated; its eventual
// result will be discarded by the generation guard.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.inFlight = make(map[Stage]bool)
	c.state = newState()
	c.logger.Info("Session reset", zap.Uint64("generation", c.generation))
	return c.copyStateLocked()
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyStateLocked()
}

// begin validates the stage, takes the in-flight guard for it and clears
// the previous error (every new attempt starts clean). It returns the
// generation the caller must revalidate before applying results.
func (c *Controller) begin(required, guard Stage) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Stage != required {
		return 0, fmt.Errorf("%w: stage is %q, expected %q", ErrInvalidStage, c.state.Stage, required)
	}
	if c.inFlight[guard] {
		return 0, ErrBusy
	}
	c.inFlight[guard] = true
	c.state.Error = ""
	return c.generation, nil
}

func (c *Controller) localizeInsights(in *models.FinancialInsights) *models.FinancialInsights {
	if in == nil || c.formatter == nil {
		return in
	}
	out := *in
	out.KeyInsights = c.formatter.RewriteAll(in.KeyInsights)
	out.Recommendations = c.formatter.RewriteAll(in.Recommendations)
	return &out
}

func (c *Controller) copyStateLocked() State {
	snapshot := c.state
	snapshot.Transactions = make([]models.Transaction, len(c.state.Transactions))
	copy(snapshot.Transactions, c.state.Transactions)
	snapshot.Categorized = make([]models.CategorizedTransaction, len(c.state.Categorized))
	copy(snapshot.Categorized, c.state.Categorized)
	snapshot.Summary = copySummary(c.state.Summary)
	if c.state.Insights != nil {
		insights := *c.state.Insights
		snapshot.Insights = &insights
	}
	for _, busy := range c.inFlight {
		if busy {
			snapshot.Busy = true
		}
	}
	return snapshot
}

// fallbackCategorization assigns every transaction the Uncategorized bucket
// with zero confidence and normalizes the result.
func fallbackCategorization(txns []models.Transaction) []models.CategorizedTransaction {
	categorized := make([]models.CategorizedTransaction, len(txns))
	for i, t := range txns {
		categorized[i] = models.CategorizedTransaction{
			Transaction: t,
			Category:    models.Uncategorized,
			Confidence:  0,
			Reasoning:   "Fallback categorization: categorization service unavailable",
		}
	}
	return analytics.NormalizeAll(categorized)
}

func copySummary(summary map[string]models.CategorySummary) map[string]models.CategorySummary {
	out := make(map[string]models.CategorySummary, len(summary))
	for k, v := range summary {
		out[k] = v
	}
	return out
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"finsight/internal/collab"
	"finsight/internal/dto"
	"finsight/internal/models"
	"finsight/internal/workflow"
	"finsight/pkg/config"
)

// WorkflowHandler serves the stage-driving endpoints: upload, categorize,
// insights, status, reset and corrections.
type WorkflowHandler struct {
	sessions *workflow.Manager
	upload   *config.UploadConfig
	logger   *zap.Logger
}

func NewWorkflowHandler(sessions *workflow.Manager, upload *config.UploadConfig, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		sessions: sessions,
		upload:   upload,
		logger:   logger,
	}
}

// sessionID resolves the session from header or query; absent means the
// default session.
func sessionID(c *fiber.Ctx) string {
	if id := c.Get("X-Session-ID"); id != "" {
		return id
	}
	return c.Query("session_id")
}

// UploadStatement godoc
// @Summary Upload a bank statement
// @Description Upload and parse a CSV or XLSX bank statement
// @Tags workflow
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/upload-statement [post]
func (h *WorkflowHandler) UploadStatement(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	ctrl := h.sessions.Get(sessionID(c))
	state, err := ctrl.Upload(c.Context(), content, file.Filename)
	if err != nil {
		return h.workflowError(c, err)
	}

	return c.JSON(dto.UploadResponse{
		Success:           true,
		Message:           fmt.Sprintf("Successfully processed %s", file.Filename),
		Transactions:      state.Transactions,
		TotalTransactions: len(state.Transactions),
		FileInfo: &dto.FileInfo{
			Filename: file.Filename,
			FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."),
			FileSize: len(content),
		},
	})
}

// CategorizeTransactions godoc
// @Summary Categorize uploaded transactions
// @Description Run AI categorization over the uploaded transaction set
// @Tags workflow
// @Produce json
// @Success 200 {object} dto.CategorizationResponse
// @Failure 409 {object} map[string]string
// @Router /api/v1/categorize-transactions [post]
func (h *WorkflowHandler) CategorizeTransactions(c *fiber.Ctx) error {
	ctrl := h.sessions.Get(sessionID(c))
	state, err := ctrl.Categorize(c.Context())
	if err != nil {
		return h.workflowError(c, err)
	}

	message := fmt.Sprintf("Successfully categorized %d transactions", len(state.Categorized))
	if state.Error != "" {
		message = "Categorization completed with fallback"
	}

	return c.JSON(dto.CategorizationResponse{
		Success:                 true,
		Message:                 message,
		CategorizedTransactions: state.Categorized,
		CategorySummary:         state.Summary,
		TotalAmount:             totalSpend(state.Categorized),
		Warning:                 state.Error,
	})
}

// GenerateInsights godoc
// @Summary Generate financial insights
// @Description Run AI insights generation over the categorized set
// @Tags workflow
// @Produce json
// @Success 200 {object} dto.InsightsResponse
// @Failure 409 {object} map[string]string
// @Router /api/v1/generate-insights [post]
func (h *WorkflowHandler) GenerateInsights(c *fiber.Ctx) error {
	ctrl := h.sessions.Get(sessionID(c))
	state, err := ctrl.GenerateInsights(c.Context())
	if err != nil {
		return h.workflowError(c, err)
	}

	message := "Insights generated successfully"
	if state.Insights == nil {
		message = "Results available without insights"
	}

	return c.JSON(dto.InsightsResponse{
		Success:  true,
		Message:  message,
		Insights: state.Insights,
		Warning:  state.Error,
	})
}

// SessionStatus godoc
// @Summary Get session status
// @Tags session
// @Produce json
// @Success 200 {object} dto.SessionStatusResponse
// @Router /api/v1/session-status [get]
func (h *WorkflowHandler) SessionStatus(c *fiber.Ctx) error {
	state := h.sessions.Get(sessionID(c)).Snapshot()

	return c.JSON(dto.SessionStatusResponse{
		Success: true,
		Status: dto.SessionStatus{
			Stage:                  string(state.Stage),
			HasTransactions:        len(state.Transactions) > 0,
			HasCategorizedData:     len(state.Categorized) > 0,
			HasInsights:            state.Insights != nil,
			TransactionCount:       len(state.Transactions),
			CategoryCount:          len(state.Summary),
			ReadyForCategorization: state.Stage == workflow.StageCategorize,
			ReadyForInsights:       state.Stage == workflow.StageInsights,
			Busy:                   state.Busy,
			Error:                  state.Error,
		},
	})
}

// ResetSession godoc
// @Summary Reset the session
// @Description Discard all session state and return to the upload stage
// @Tags session
// @Produce json
// @Success 200 {object} dto.ResetSessionResponse
// @Router /api/v1/reset-session [post]
func (h *WorkflowHandler) ResetSession(c *fiber.Ctx) error {
	h.sessions.Get(sessionID(c)).Reset()
	return c.JSON(dto.ResetSessionResponse{
		Success: true,
		Message: "Session reset successfully",
	})
}

// CorrectTransaction godoc
// @Summary Correct a transaction's category
// @Tags workflow
// @Accept json
// @Produce json
// @Param correction body dto.CorrectionRequest true "Correction"
// @Success 200 {object} dto.CorrectionResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/correct-transaction [post]
func (h *WorkflowHandler) CorrectTransaction(c *fiber.Ctx) error {
	var req dto.CorrectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.CorrectCategory == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "correct_category is required",
		})
	}

	ctrl := h.sessions.Get(sessionID(c))
	state, err := ctrl.Correct(req.TransactionIndex, req.CorrectCategory, req.CorrectSubcategory)
	if err != nil {
		return h.workflowError(c, err)
	}

	return c.JSON(dto.CorrectionResponse{
		Success:            true,
		Message:            "Transaction category corrected",
		UpdatedTransaction: state.Categorized[req.TransactionIndex],
		CategorySummary:    state.Summary,
	})
}

// NewSession godoc
// @Summary Create a session
// @Description Create a fresh session and return its generated ID
// @Tags session
// @Produce json
// @Success 200 {object} dto.NewSessionResponse
// @Router /api/v1/sessions [post]
func (h *WorkflowHandler) NewSession(c *fiber.Ctx) error {
	return c.JSON(dto.NewSessionResponse{
		Success:   true,
		SessionID: h.sessions.NewSession(),
	})
}

// DeleteSession godoc
// @Summary Delete a session
// @Tags session
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.ResetSessionResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *WorkflowHandler) DeleteSession(c *fiber.Ctx) error {
	h.sessions.Delete(c.Params("id"))
	return c.JSON(dto.ResetSessionResponse{
		Success: true,
		Message: "Session deleted",
	})
}

// SupportedFormats godoc
// @Summary List supported statement formats
// @Tags session
// @Produce json
// @Success 200 {object} dto.SupportedFormatsResponse
// @Router /api/v1/supported-formats [get]
func (h *WorkflowHandler) SupportedFormats(c *fiber.Ctx) error {
	return c.JSON(dto.SupportedFormatsResponse{
		Success:          true,
		SupportedFormats: h.upload.AllowedFileTypes,
		MaxFileSizeMB:    h.upload.MaxFileSizeMB,
	})
}

func (h *WorkflowHandler) workflowError(c *fiber.Ctx, err error) error {
	var validation *collab.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validation.Reason,
		})
	case errors.Is(err, workflow.ErrInvalidStage),
		errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrStale):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, workflow.ErrInvalidIndex), errors.Is(err, workflow.ErrNoData):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error("Workflow operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func totalSpend(txns []models.CategorizedTransaction) float64 {
	total := 0.0
	for _, t := range txns {
		total += t.DebitedAmount
	}
	return total
}

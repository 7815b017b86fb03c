package handlers

import (
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Assistant provides the helper completions around the chat flow.
type Assistant interface {
	DetectIntent(ctx context.Context, message string) string
	GenerateTitle(ctx context.Context, message string) string
}

// TitleStore persists generated chat titles. Optional; a nil store means
// titles are returned but not remembered.
type TitleStore interface {
	SetTitle(ctx context.Context, chatID, title string) error
}

type AssistHandler struct {
	assistant Assistant
	titles    TitleStore
	logger    *logger.Logger
}

func NewAssistHandler(assistant Assistant, titles TitleStore, log *logger.Logger) *AssistHandler {
	return &AssistHandler{assistant: assistant, titles: titles, logger: log}
}

type assistRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}

// HandleDetectIntent serves POST /api/ai/detect-intent.
func (handler *AssistHandler) HandleDetectIntent(c *gin.Context) {
	var request assistRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
		respondError(c, models.NewValidationError(models.CodeInvalidRequest, "Message is required and must be a string"))
		return
	}

	intent := handler.assistant.DetectIntent(c.Request.Context(), request.Message)
	c.JSON(http.StatusOK, gin.H{"intent": intent})
}

// HandleDetectIntentInfo serves GET /api/ai/detect-intent.
func (handler *AssistHandler) HandleDetectIntentInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "AI Intent Detection API",
		"description": "POST /api/ai/detect-intent with { message: string }",
		"validIntents": []string{
			"company_research",
			"people_search",
			"competitive_analysis",
			"market_sizing",
			"follow_up_question",
			"general_chat",
		},
		"example": gin.H{
			"input":  gin.H{"message": "Find tech companies in SF"},
			"output": gin.H{"intent": "company_research"},
		},
	})
}

// HandleGenerateTitle serves POST /api/ai/generate-title.
func (handler *AssistHandler) HandleGenerateTitle(c *gin.Context) {
	var request assistRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
		respondError(c, models.NewValidationError(models.CodeInvalidRequest, "Message is required and must be a string"))
		return
	}

	title := handler.assistant.GenerateTitle(c.Request.Context(), request.Message)

	if handler.titles != nil && request.ChatID != "" {
		if err := handler.titles.SetTitle(c.Request.Context(), request.ChatID, title); err != nil {
			handler.logger.WithError(err).WithFields(logger.Fields{"chat_id": request.ChatID}).Warn("failed to persist chat title")
		}
	}

	c.JSON(http.StatusOK, gin.H{"title": title})
}

// HandleGenerateTitleInfo serves GET /api/ai/generate-title.
func (handler *AssistHandler) HandleGenerateTitleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "AI Title Generation API",
		"description": "POST /api/ai/generate-title with { message: string }",
		"example": gin.H{
			"input":  gin.H{"message": "Analyze John Smith LinkedIn profile"},
			"output": gin.H{"title": "John Smith Analysis"},
		},
	})
}

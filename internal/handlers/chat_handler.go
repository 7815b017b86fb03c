package handlers

import (
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ChatProcessor runs one conversation turn. Implemented by the chat
// orchestrator; tests substitute fakes.
type ChatProcessor interface {
	ProcessChat(ctx context.Context, request models.ChatRequest) (*models.ChatResult, error)
}

// ChatMemory persists transcripts and titles. Optional; a nil memory disables
// history.
type ChatMemory interface {
	AppendMessages(ctx context.Context, chatID string, messages ...models.StoredMessage) error
	History(ctx context.Context, chatID string) ([]models.StoredMessage, error)
	Title(ctx context.Context, chatID string) (string, error)
	DeleteChat(ctx context.Context, chatID string) error
}

type ChatHandler struct {
	processor ChatProcessor
	memory    ChatMemory
	logger    *logger.Logger
}

func NewChatHandler(processor ChatProcessor, memory ChatMemory, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		memory:    memory,
		logger:    log,
	}
}

type chatResponse struct {
	Success       bool                   `json:"success"`
	Response      string                 `json:"response"`
	ComponentData *models.ComponentData  `json:"componentData"`
	Usage         models.TokenUsage      `json:"usage"`
	ToolCalls     []models.ToolCallInfo  `json:"toolCalls"`
	ContextInfo   models.ContextInfo     `json:"contextInfo"`
}

// HandleChat serves POST /api/chat.
func (handler *ChatHandler) HandleChat(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, models.NewValidationError(models.CodeInvalidRequest, "invalid request body").WithCause(err))
		return
	}

	if len(request.Conversation()) == 0 {
		respondError(c, models.NewValidationError(models.CodeInvalidRequest, `Either "message" or "messages" is required`))
		return
	}

	handler.hydrateHistory(c.Request.Context(), &request)

	result, err := handler.processor.ProcessChat(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}

	handler.persistTurn(c.Request.Context(), request, result)

	toolCalls := result.ToolCalls
	if toolCalls == nil {
		toolCalls = []models.ToolCallInfo{}
	}

	c.JSON(http.StatusOK, chatResponse{
		Success:       true,
		Response:      result.Response,
		ComponentData: result.ComponentData,
		Usage:         result.Usage,
		ToolCalls:     toolCalls,
		ContextInfo:   result.ContextInfo,
	})
}

// hydrateHistory expands a single-message request into the stored
// conversation, so follow-up questions keep their context. Requests that
// already carry a messages array are taken as-is.
func (handler *ChatHandler) hydrateHistory(ctx context.Context, request *models.ChatRequest) {
	if handler.memory == nil || request.ChatID == "" || len(request.Messages) > 0 || request.Message == "" {
		return
	}

	history, err := handler.memory.History(ctx, request.ChatID)
	if err != nil {
		handler.logger.WithError(err).WithFields(logger.Fields{"chat_id": request.ChatID}).Warn("failed to load chat history")
		return
	}
	if len(history) == 0 {
		return
	}

	messages := make([]models.ChatMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, models.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	request.Messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: request.Message})
}

func (handler *ChatHandler) persistTurn(ctx context.Context, request models.ChatRequest, result *models.ChatResult) {
	if handler.memory == nil || request.ChatID == "" {
		return
	}

	conversation := request.Conversation()
	lastUser := conversation[len(conversation)-1]
	now := time.Now()

	err := handler.memory.AppendMessages(ctx, request.ChatID,
		models.StoredMessage{Role: lastUser.Role, Content: lastUser.Content, Timestamp: now},
		models.StoredMessage{Role: models.RoleAssistant, Content: result.Response, Timestamp: now},
	)
	if err != nil {
		handler.logger.WithError(err).WithFields(logger.Fields{"chat_id": request.ChatID}).Warn("failed to persist chat turn")
	}
}

// HandleHistory serves GET /api/chat/:chatId/messages.
func (handler *ChatHandler) HandleHistory(c *gin.Context) {
	if handler.memory == nil {
		respondError(c, models.NewInternalError(models.CodeNotConfigured, "chat history is not configured"))
		return
	}

	chatID := c.Param("chatId")
	messages, err := handler.memory.History(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatId":   chatID,
		"messages": messages,
	})
}

// HandleTitle serves GET /api/chat/:chatId/title.
func (handler *ChatHandler) HandleTitle(c *gin.Context) {
	if handler.memory == nil {
		respondError(c, models.NewInternalError(models.CodeNotConfigured, "chat history is not configured"))
		return
	}

	chatID := c.Param("chatId")
	title, err := handler.memory.Title(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatId": chatID,
		"title":  title,
	})
}

// HandleDelete serves DELETE /api/chat/:chatId.
func (handler *ChatHandler) HandleDelete(c *gin.Context) {
	if handler.memory == nil {
		respondError(c, models.NewInternalError(models.CodeNotConfigured, "chat history is not configured"))
		return
	}

	chatID := c.Param("chatId")
	if err := handler.memory.DeleteChat(c.Request.Context(), chatID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chatId":  chatID,
		"deleted": true,
	})
}

// HandleInfo serves GET /api/chat with a capability summary.
func (handler *ChatHandler) HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "ConsultGPT - AI Consulting Assistant API",
		"endpoint": "/api/chat",
		"method":   "POST",
		"capabilities": []string{
			"Context-aware consulting conversations",
			"Chat history integration",
			"Real-time company and people data via Crustdata",
			"Function calling for market intelligence",
			"Competitive analysis and market research",
			"Talent scouting and organizational analysis",
			"Strategic insights and recommendations",
		},
		"inputOptions": gin.H{
			"message":    "Single message string (alternative to messages array)",
			"messages":   "Array of conversation messages",
			"chatId":     "Optional: Chat ID for conversation context",
			"workflowId": "Optional: active workstream identifier",
		},
		"responseFormat": gin.H{
			"response":      "Assistant response text",
			"componentData": "Structured visualization payload (if any)",
			"usage":         "Model usage statistics",
			"toolCalls":     "Array of data tools used (if any)",
			"contextInfo":   "Turn metadata",
		},
	})
}

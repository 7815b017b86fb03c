package services

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"time"
)

// ChatOrchestrator runs the two-phase conversation loop: one model call that
// may request tools, at most one batch of tool executions, and one follow-up
// model call to synthesize the results. There is never a second tool round
// trip; whatever the follow-up returns is final.
type ChatOrchestrator struct {
	aiService     *AIService
	promptBuilder *PromptBuilder
	dispatcher    *ToolDispatcher
	extractor     *PayloadExtractor

	config config.OpenAIConfig
	logger *logger.Logger
}

func NewChatOrchestrator(
	aiService *AIService,
	promptBuilder *PromptBuilder,
	dispatcher *ToolDispatcher,
	extractor *PayloadExtractor,
	cfg config.OpenAIConfig,
	log *logger.Logger,
) *ChatOrchestrator {
	return &ChatOrchestrator{
		aiService:     aiService,
		promptBuilder: promptBuilder,
		dispatcher:    dispatcher,
		extractor:     extractor,
		config:        cfg,
		logger:        log,
	}
}

// ProcessChat executes one conversation turn end to end.
func (orchestrator *ChatOrchestrator) ProcessChat(ctx context.Context, request models.ChatRequest) (*models.ChatResult, error) {
	startTime := time.Now()
	requestID := models.GenerateRequestID()

	conversation := request.Conversation()
	if len(conversation) == 0 {
		return nil, models.NewValidationError(models.CodeInvalidRequest, `Either "message" or "messages" is required`)
	}

	hasDataAccess := orchestrator.dispatcher.Configured()
	systemPrompt := orchestrator.resolveSystemPrompt(request.WorkflowID, hasDataAccess)

	orchestrator.logger.LogChat(requestID, request.WorkflowID, "chat_started", 0, nil)
	orchestrator.logger.Debug("system prompt resolved",
		"request_id", requestID,
		"workflow_id", request.WorkflowID,
		"prompt_length", len(systemPrompt),
		"crustdata_enabled", hasDataAccess,
		"messages", len(conversation))

	messages := make([]Message, 0, len(conversation)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	for _, msg := range conversation {
		messages = append(messages, Message{Role: msg.Role, Content: msg.Content})
	}

	initialReq := CompletionRequest{
		Messages:  messages,
		MaxTokens: orchestrator.config.MaxTokensInitial,
	}
	if hasDataAccess {
		initialReq.Tools = CrustDataToolSet()
	}

	initial, err := orchestrator.aiService.Complete(ctx, initialReq)
	if err != nil {
		orchestrator.logger.LogChat(requestID, request.WorkflowID, "initial_call_failed", time.Since(startTime), err)
		return nil, stageError(err, models.CodeAIServiceError,
			"I encountered an error while processing your request. Please try again or rephrase your question.")
	}

	responseText := initial.Content
	usage := initial.Usage
	var toolCallsInfo []models.ToolCallInfo

	if responseText == "" && len(initial.ToolCalls) == 0 {
		emptyErr := models.NewExternalError(models.CodeAIEmptyResponse,
			"The AI did not generate a response. This might be due to content filters or prompt length. Please try a simpler query.")
		orchestrator.logger.LogChat(requestID, request.WorkflowID, "empty_initial_response", time.Since(startTime), emptyErr)
		return nil, emptyErr
	}

	if len(initial.ToolCalls) > 0 {
		orchestrator.logger.Info("model requested tool calls",
			"request_id", requestID,
			"tools", toolNames(initial.ToolCalls))

		toolResults := orchestrator.dispatcher.ExecuteToolCalls(ctx, initial.ToolCalls)

		toolCallsInfo = make([]models.ToolCallInfo, 0, len(initial.ToolCalls))
		for _, call := range initial.ToolCalls {
			toolCallsInfo = append(toolCallsInfo, models.ToolCallInfo{
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}

		followUpMessages := append(messages, Message{
			Role:      RoleAssistant,
			Content:   initial.Content,
			ToolCalls: initial.ToolCalls,
		})
		for _, result := range toolResults {
			followUpMessages = append(followUpMessages, Message{
				Role:       RoleTool,
				Content:    result.Content,
				ToolCallID: result.ToolCallID,
				ToolName:   result.Name,
			})
		}
		if orchestrator.rendersComponent(request.WorkflowID) {
			followUpMessages = append(followUpMessages, Message{
				Role:    RoleUser,
				Content: ComponentReminder,
			})
		}

		final, err := orchestrator.aiService.Complete(ctx, CompletionRequest{
			Messages:  followUpMessages,
			MaxTokens: orchestrator.config.MaxTokensFollowUp,
		})
		if err != nil {
			orchestrator.logger.LogChat(requestID, request.WorkflowID, "final_call_failed", time.Since(startTime), err)
			return nil, stageError(err, models.CodeAIFormatError,
				"I encountered an error while generating the final response. The data was retrieved successfully, but formatting failed.")
		}

		responseText = final.Content
		if responseText == "" {
			emptyErr := models.NewExternalError(models.CodeAIEmptyResponse,
				"The AI could not generate a response after processing the data. Please try again with a simpler request.")
			orchestrator.logger.LogChat(requestID, request.WorkflowID, "empty_final_response", time.Since(startTime), emptyErr)
			return nil, emptyErr
		}
	}

	result := &models.ChatResult{
		Response:  responseText,
		Usage:     usage,
		ToolCalls: toolCallsInfo,
		ContextInfo: models.ContextInfo{
			WorkflowID:    request.WorkflowID,
			CrustdataUsed: len(toolCallsInfo) > 0,
		},
	}

	if payload, ok := orchestrator.extractor.Extract(responseText); ok {
		result.Response = payload.Text
		result.ComponentData = &payload.Component
		result.ContextInfo.HasComponent = true
	}

	orchestrator.logger.LogChat(requestID, request.WorkflowID, "chat_completed", time.Since(startTime), nil)
	orchestrator.logger.Info("chat turn summary",
		"request_id", requestID,
		"response_length", len(result.Response),
		"tool_calls", len(toolCallsInfo),
		"has_component", result.ContextInfo.HasComponent,
		"total_tokens", usage.TotalTokens)

	return result, nil
}

func (orchestrator *ChatOrchestrator) resolveSystemPrompt(workflowID string, hasDataAccess bool) string {
	if workflowID != "" {
		if prompt := orchestrator.promptBuilder.BuildSystemPrompt(workflowID, hasDataAccess); prompt != "" {
			return prompt
		}
	}
	return orchestrator.promptBuilder.DefaultSystemPrompt(hasDataAccess)
}

func (orchestrator *ChatOrchestrator) rendersComponent(workflowID string) bool {
	if workflowID == "" {
		return false
	}
	workflow, ok := models.FindWorkStream(workflowID)
	return ok && workflow.GeneratesComponent != ""
}

// stageError tags a model failure with the stage it happened in, so "nothing
// was generated" stays distinguishable from "data was fetched but formatting
// failed". The message is safe to show to the end user.
func stageError(err error, code, message string) error {
	if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeAIEmptyResponse {
		return appErr
	}
	return models.NewExternalError(code, message).WithCause(err)
}

func toolNames(calls []ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, call := range calls {
		names = append(names, call.Name)
	}
	return names
}

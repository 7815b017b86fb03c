package services

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel is the slice of the langchaingo model surface this pipeline
// needs. Tests substitute scripted fakes behind it.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// ToolDefinition is a provider-neutral function schema handed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function invocation the model requested.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult carries one tool's output back to the model.
type ToolResult struct {
	ToolCallID string
	Name       string
	Content    string
}

// Message is one turn of a model conversation. Exactly one of the content
// shapes is populated depending on Role: plain text for system/user turns,
// text plus ToolCalls for assistant turns, ToolResult fields for tool turns.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type CompletionRequest struct {
	Messages  []Message
	Tools     []ToolDefinition
	MaxTokens int
}

type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     models.TokenUsage
}

// AIService adapts the langchaingo OpenAI client to the pipeline's
// conversation shape.
type AIService struct {
	model  ChatModel
	config config.OpenAIConfig
	logger *logger.Logger
}

func NewAIService(cfg config.OpenAIConfig, log *logger.Logger) (*AIService, error) {
	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, models.NewExternalError(models.CodeAIServiceError, "failed to initialize OpenAI client").WithCause(err)
	}

	log.Info("AI service initialized", "model", cfg.Model)

	return &AIService{model: model, config: cfg, logger: log}, nil
}

// NewAIServiceWithModel injects a prebuilt model. Used by tests and by any
// caller that wants a non-default provider.
func NewAIServiceWithModel(model ChatModel, cfg config.OpenAIConfig, log *logger.Logger) *AIService {
	return &AIService{model: model, config: cfg, logger: log}
}

// Complete performs a single model round trip. It never retries; callers own
// any retry or fallback policy.
func (service *AIService) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if service.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.config.Timeout)
		defer cancel()
	}

	options := []llms.CallOption{}
	if req.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		options = append(options, llms.WithTools(convertTools(req.Tools)))
	}

	startTime := time.Now()
	resp, err := service.model.GenerateContent(ctx, convertMessages(req.Messages), options...)
	duration := time.Since(startTime)

	if err != nil {
		service.logger.LogService("openai", "generate_content", duration, nil, err)
		return nil, models.NewExternalError(models.CodeAIServiceError, "OpenAI request failed").WithCause(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		emptyErr := models.NewExternalError(models.CodeAIEmptyResponse, "model returned no choices")
		service.logger.LogService("openai", "generate_content", duration, nil, emptyErr)
		return nil, emptyErr
	}

	choice := resp.Choices[0]
	result := &CompletionResponse{
		Content:   choice.Content,
		ToolCalls: extractToolCalls(choice.ToolCalls),
		Usage:     extractUsage(choice.GenerationInfo),
	}

	service.logger.LogService("openai", "generate_content", duration, map[string]any{
		"tool_calls":   len(result.ToolCalls),
		"total_tokens": result.Usage.TotalTokens,
	}, nil)

	return result, nil
}

func convertTools(tools []ToolDefinition) []llms.Tool {
	converted := make([]llms.Tool, 0, len(tools))
	for _, tool := range tools {
		converted = append(converted, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return converted
}

func convertMessages(messages []Message) []llms.MessageContent {
	converted := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			converted = append(converted, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))

		case RoleUser:
			converted = append(converted, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))

		case RoleAssistant:
			content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				content.Parts = append(content.Parts, llms.TextPart(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			converted = append(converted, content)

		case RoleTool:
			converted = append(converted, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolCallID,
						Name:       msg.ToolName,
						Content:    msg.Content,
					},
				},
			})
		}
	}

	return converted
}

func extractToolCalls(calls []llms.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	extracted := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		extracted = append(extracted, ToolCall{
			ID:        call.ID,
			Name:      call.FunctionCall.Name,
			Arguments: call.FunctionCall.Arguments,
		})
	}
	return extracted
}

func extractUsage(info map[string]any) models.TokenUsage {
	usage := models.TokenUsage{}
	if info == nil {
		return usage
	}
	if v, ok := info["PromptTokens"].(int); ok {
		usage.PromptTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		usage.CompletionTokens = v
	}
	if v, ok := info["TotalTokens"].(int); ok {
		usage.TotalTokens = v
	}
	return usage
}

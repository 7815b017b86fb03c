package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat message roles as seen on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the caller-facing input. Either a single message or a full
// conversation must be supplied; chatId and workflowId are optional.
type ChatRequest struct {
	Message    string        `json:"message,omitempty"`
	Messages   []ChatMessage `json:"messages,omitempty"`
	ChatID     string        `json:"chatId,omitempty"`
	WorkflowID string        `json:"workflowId,omitempty"`
}

func (r *ChatRequest) Conversation() []ChatMessage {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	if r.Message != "" {
		return []ChatMessage{{Role: RoleUser, Content: r.Message}}
	}
	return nil
}

// ToolCallInfo is the audit record of one tool call the model issued, with the
// raw argument string exactly as the model produced it.
type ToolCallInfo struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ContextInfo struct {
	WorkflowID    string `json:"workflowId"`
	CrustdataUsed bool   `json:"crustdataUsed"`
	HasComponent  bool   `json:"hasComponent"`
}

// ChatResult is what one orchestration pass produces: the user-visible text,
// the optional structured component, usage accounting, and the tool-call
// audit trail.
type ChatResult struct {
	Response      string         `json:"response"`
	ComponentData *ComponentData `json:"componentData"`
	Usage         TokenUsage     `json:"usage"`
	ToolCalls     []ToolCallInfo `json:"toolCalls"`
	ContextInfo   ContextInfo    `json:"contextInfo"`
}

// StoredMessage is a chat-history record kept by the memory service.
type StoredMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func GenerateRequestID() string {
	return uuid.New().String()
}

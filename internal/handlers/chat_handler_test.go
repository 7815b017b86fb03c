package handlers_test

import (
	"bytes"
	"consultgpt-pipeline/internal/handlers"
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.LogConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}
	return log
}

type fakeProcessor struct {
	result  *models.ChatResult
	err     error
	lastReq models.ChatRequest
}

func (p *fakeProcessor) ProcessChat(ctx context.Context, request models.ChatRequest) (*models.ChatResult, error) {
	p.lastReq = request
	return p.result, p.err
}

type fakeMemory struct {
	appended map[string][]models.StoredMessage
	history  []models.StoredMessage
	titles   map[string]string
	deleted  []string
}

func (m *fakeMemory) AppendMessages(ctx context.Context, chatID string, messages ...models.StoredMessage) error {
	if m.appended == nil {
		m.appended = map[string][]models.StoredMessage{}
	}
	m.appended[chatID] = append(m.appended[chatID], messages...)
	return nil
}

func (m *fakeMemory) History(ctx context.Context, chatID string) ([]models.StoredMessage, error) {
	return m.history, nil
}

func (m *fakeMemory) SetTitle(ctx context.Context, chatID, title string) error {
	if m.titles == nil {
		m.titles = map[string]string{}
	}
	m.titles[chatID] = title
	return nil
}

func (m *fakeMemory) Title(ctx context.Context, chatID string) (string, error) {
	return m.titles[chatID], nil
}

func (m *fakeMemory) DeleteChat(ctx context.Context, chatID string) error {
	m.deleted = append(m.deleted, chatID)
	return nil
}

func performChat(t *testing.T, handler *handlers.ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST("/api/chat", handler.HandleChat)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleChatSuccess(t *testing.T) {
	processor := &fakeProcessor{result: &models.ChatResult{
		Response: "Here is the analysis.",
		Usage:    models.TokenUsage{TotalTokens: 150},
		ContextInfo: models.ContextInfo{
			WorkflowID: "company-screener",
		},
	}}

	handler := handlers.NewChatHandler(processor, nil, testLogger(t))
	recorder := performChat(t, handler, `{"message": "screen companies", "workflowId": "company-screener"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}

	if response["success"] != true {
		t.Error("Expected success true")
	}
	if response["response"] != "Here is the analysis." {
		t.Errorf("Unexpected response text: %v", response["response"])
	}
	if _, present := response["toolCalls"]; !present {
		t.Error("Expected toolCalls field even when empty")
	}
	if toolCalls, ok := response["toolCalls"].([]any); !ok || len(toolCalls) != 0 {
		t.Errorf("Expected empty toolCalls array, got %v", response["toolCalls"])
	}
	if response["componentData"] != nil {
		t.Errorf("Expected null componentData, got %v", response["componentData"])
	}

	if processor.lastReq.WorkflowID != "company-screener" {
		t.Errorf("Workflow ID not passed through: %q", processor.lastReq.WorkflowID)
	}
}

func TestHandleChatMissingMessage(t *testing.T) {
	handler := handlers.NewChatHandler(&fakeProcessor{}, nil, testLogger(t))
	recorder := performChat(t, handler, `{}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}

	var response map[string]any
	json.Unmarshal(recorder.Body.Bytes(), &response)
	if response["message"] == nil {
		t.Error("Expected error message field")
	}
}

func TestHandleChatProcessorError(t *testing.T) {
	processor := &fakeProcessor{
		err: models.NewExternalError(models.CodeAIServiceError, "I encountered an error while processing your request. Please try again or rephrase your question."),
	}

	handler := handlers.NewChatHandler(processor, nil, testLogger(t))
	recorder := performChat(t, handler, `{"message": "hi"}`)

	if recorder.Code != http.StatusBadGateway && recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected upstream error status, got %d", recorder.Code)
	}

	var response map[string]any
	json.Unmarshal(recorder.Body.Bytes(), &response)
	if response["error"] == nil || response["message"] == nil {
		t.Errorf("Expected error and message fields, got %v", response)
	}
}

func TestHandleChatPersistsTurn(t *testing.T) {
	processor := &fakeProcessor{result: &models.ChatResult{Response: "stored answer"}}
	memory := &fakeMemory{}

	handler := handlers.NewChatHandler(processor, memory, testLogger(t))
	recorder := performChat(t, handler, `{"message": "remember this", "chatId": "chat_42"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	stored := memory.appended["chat_42"]
	if len(stored) != 2 {
		t.Fatalf("Expected user and assistant messages stored, got %d", len(stored))
	}
	if stored[0].Role != models.RoleUser || stored[0].Content != "remember this" {
		t.Errorf("Unexpected stored user message: %+v", stored[0])
	}
	if stored[1].Role != models.RoleAssistant || stored[1].Content != "stored answer" {
		t.Errorf("Unexpected stored assistant message: %+v", stored[1])
	}
}

func TestHandleChatHydratesHistory(t *testing.T) {
	processor := &fakeProcessor{result: &models.ChatResult{Response: "continuing"}}
	memory := &fakeMemory{history: []models.StoredMessage{
		{Role: models.RoleUser, Content: "What are fintech trends?"},
		{Role: models.RoleAssistant, Content: "Embedded finance is growing."},
	}}

	handler := handlers.NewChatHandler(processor, memory, testLogger(t))
	recorder := performChat(t, handler, `{"message": "Which companies lead?", "chatId": "chat_42"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	got := processor.lastReq.Messages
	if len(got) != 3 {
		t.Fatalf("Expected stored history plus the new message, got %d messages", len(got))
	}
	if got[0].Content != "What are fintech trends?" {
		t.Errorf("History not prepended: %+v", got)
	}
	if got[2].Role != models.RoleUser || got[2].Content != "Which companies lead?" {
		t.Errorf("New message not appended last: %+v", got[2])
	}
}

func TestHandleHistory(t *testing.T) {
	memory := &fakeMemory{history: []models.StoredMessage{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "a"},
	}}

	handler := handlers.NewChatHandler(&fakeProcessor{}, memory, testLogger(t))

	router := gin.New()
	router.GET("/api/chat/:chatId/messages", handler.HandleHistory)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/chat_42/messages", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var response struct {
		ChatID   string                 `json:"chatId"`
		Messages []models.StoredMessage `json:"messages"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}
	if response.ChatID != "chat_42" || len(response.Messages) != 2 {
		t.Errorf("Unexpected history response: %+v", response)
	}
}

func TestHandleTitle(t *testing.T) {
	memory := &fakeMemory{titles: map[string]string{"chat_42": "SF Tech Companies"}}
	handler := handlers.NewChatHandler(&fakeProcessor{}, memory, testLogger(t))

	router := gin.New()
	router.GET("/api/chat/:chatId/title", handler.HandleTitle)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/chat_42/title", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var response map[string]string
	json.Unmarshal(recorder.Body.Bytes(), &response)
	if response["title"] != "SF Tech Companies" {
		t.Errorf("Unexpected title: %q", response["title"])
	}
}

func TestHandleDelete(t *testing.T) {
	memory := &fakeMemory{}
	handler := handlers.NewChatHandler(&fakeProcessor{}, memory, testLogger(t))

	router := gin.New()
	router.DELETE("/api/chat/:chatId", handler.HandleDelete)

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/chat_42", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	if len(memory.deleted) != 1 || memory.deleted[0] != "chat_42" {
		t.Errorf("Expected chat_42 to be deleted, got %v", memory.deleted)
	}
}

func TestHandleDeleteWithoutMemory(t *testing.T) {
	handler := handlers.NewChatHandler(&fakeProcessor{}, nil, testLogger(t))

	router := gin.New()
	router.DELETE("/api/chat/:chatId", handler.HandleDelete)

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/chat_42", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 without memory, got %d", recorder.Code)
	}
}

package services_test

import (
	"consultgpt-pipeline/internal/services"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestToolSetCoversEveryTool(t *testing.T) {
	tools := services.CrustDataToolSet()

	expected := []string{
		"screen_companies",
		"enrich_companies",
		"search_people",
		"enrich_people",
		"get_linkedin_posts",
		"get_company_people",
	}

	if len(tools) != len(expected) {
		t.Fatalf("Expected %d tools, got %d", len(expected), len(tools))
	}

	for i, name := range expected {
		if tools[i].Name != name {
			t.Errorf("Expected tool %d to be %s, got %s", i, name, tools[i].Name)
		}
		if tools[i].Description == "" {
			t.Errorf("Tool %s has no description", name)
		}
		if tools[i].Parameters["type"] != "object" {
			t.Errorf("Tool %s parameters are not an object schema", name)
		}
	}
}

func TestDispatcherUnconfigured(t *testing.T) {
	dispatcher := services.NewToolDispatcher(nil, testLogger(t))

	if dispatcher.Configured() {
		t.Error("Expected dispatcher without adapter to report unconfigured")
	}

	calls := []services.ToolCall{
		{ID: "call_1", Name: "screen_companies", Arguments: "{}"},
		{ID: "call_2", Name: "search_people", Arguments: "{}"},
	}

	results := dispatcher.ExecuteToolCalls(context.Background(), calls)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	for i, result := range results {
		if result.ToolCallID != calls[i].ID {
			t.Errorf("Result %d has wrong call ID: %s", i, result.ToolCallID)
		}
		if !strings.Contains(result.Content, "Crustdata API key not configured") {
			t.Errorf("Result %d missing unconfigured message: %s", i, result.Content)
		}
	}
}

func TestDispatcherPreservesOrderAcrossFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/screener/screen/" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"rows":[{"company":"Acme"}]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	dispatcher := services.NewToolDispatcher(newTestCrustDataService(t, server.URL), testLogger(t))

	calls := []services.ToolCall{
		{ID: "call_1", Name: "screen_companies", Arguments: `{"minHeadcount": 50}`},
		{ID: "call_2", Name: "enrich_companies", Arguments: `not json at all`},
		{ID: "call_3", Name: "search_people", Arguments: `{"title": ["CTO"]}`},
		{ID: "call_4", Name: "does_not_exist", Arguments: `{}`},
	}

	results := dispatcher.ExecuteToolCalls(context.Background(), calls)
	if len(results) != len(calls) {
		t.Fatalf("Expected %d results, got %d", len(calls), len(results))
	}

	for i, result := range results {
		if result.ToolCallID != calls[i].ID {
			t.Errorf("Result %d out of order: expected %s, got %s", i, calls[i].ID, result.ToolCallID)
		}
		if result.Name != calls[i].Name {
			t.Errorf("Result %d has wrong tool name: %s", i, result.Name)
		}
	}

	// call_1 succeeds with raw provider data.
	if !strings.Contains(results[0].Content, "Acme") {
		t.Errorf("Expected raw data for successful call, got %s", results[0].Content)
	}

	// call_2 had unparseable arguments.
	if !strings.Contains(results[1].Content, "Invalid arguments format") {
		t.Errorf("Expected invalid arguments error, got %s", results[1].Content)
	}

	// call_3 hit a failing endpoint; the error is contained with a suggestion.
	var failure map[string]any
	if err := json.Unmarshal([]byte(results[2].Content), &failure); err != nil {
		t.Fatalf("Failure payload is not JSON: %s", results[2].Content)
	}
	if failure["error"] == "" {
		t.Error("Expected error field in failure payload")
	}
	if !strings.Contains(failure["suggestion"].(string), "broadening") {
		t.Errorf("Expected suggestion in failure payload, got %v", failure["suggestion"])
	}

	// call_4 named an unknown tool.
	if !strings.Contains(results[3].Content, "Unknown tool: does_not_exist") {
		t.Errorf("Expected unknown tool error, got %s", results[3].Content)
	}
}

func TestDispatcherScreenArgumentsMapping(t *testing.T) {
	server, captured := newCrustDataTestServer(t, http.StatusOK, `{"rows":[]}`)
	defer server.Close()

	dispatcher := services.NewToolDispatcher(newTestCrustDataService(t, server.URL), testLogger(t))

	calls := []services.ToolCall{{
		ID:        "call_1",
		Name:      "screen_companies",
		Arguments: `{"minHeadcount": 50, "minGrowthRate": 20, "location": ["USA"], "foundedAfter": "2020-01-01"}`,
	}}

	results := dispatcher.ExecuteToolCalls(context.Background(), calls)
	if strings.Contains(results[0].Content, "error") {
		t.Fatalf("Unexpected dispatch error: %s", results[0].Content)
	}

	conds := conditions(t, captured.body)
	if len(conds) != 4 {
		t.Errorf("Expected 4 conditions from mapped arguments, got %d", len(conds))
	}
}

func TestDispatcherCompanyPeopleIgnoresClientS3Username(t *testing.T) {
	server, captured := newCrustDataTestServer(t, http.StatusOK, `{}`)
	defer server.Close()

	dispatcher := services.NewToolDispatcher(newTestCrustDataService(t, server.URL), testLogger(t))

	calls := []services.ToolCall{{
		ID:        "call_1",
		Name:      "get_company_people",
		Arguments: `{"companyName": "Acme", "s3Username": "sneaky-user"}`,
	}}

	dispatcher.ExecuteToolCalls(context.Background(), calls)

	if got := captured.query["s3_username"]; len(got) != 1 || got[0] != "consultgpt-user" {
		t.Errorf("Expected configured s3_username to override the model's, got %v", got)
	}
}

package services_test

import (
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/services"
	"fmt"
	"strings"
	"testing"
)

func TestBuildSystemPromptContainsExactlyOneComponentGuide(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	for _, workstream := range models.WorkStreams() {
		if workstream.GeneratesComponent == "" {
			continue
		}

		prompt := builder.BuildSystemPrompt(workstream.ID, true)
		if prompt == "" {
			t.Fatalf("Expected prompt for workstream %s", workstream.ID)
		}

		if got := strings.Count(prompt, "COMPONENT GENERATION REQUIRED"); got != 1 {
			t.Errorf("Workstream %s: expected 1 generation header, got %d", workstream.ID, got)
		}

		guideHeader := strings.ToUpper(string(workstream.GeneratesComponent)) + " COMPONENT - "
		if got := strings.Count(prompt, guideHeader); got != 1 {
			t.Errorf("Workstream %s: expected exactly one %q guide, got %d", workstream.ID, guideHeader, got)
		}

		expectedType := fmt.Sprintf(`"type": "%s"`, workstream.GeneratesComponent)
		if !strings.Contains(prompt, expectedType) {
			t.Errorf("Workstream %s: output contract missing %s", workstream.ID, expectedType)
		}

		if !strings.Contains(prompt, "COMMON MISTAKES TO AVOID") {
			t.Errorf("Workstream %s: missing common mistakes section", workstream.ID)
		}
	}
}

func TestBuildSystemPromptIncludesWorkstreamTasks(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	workstream, ok := models.FindWorkStream("company-screener")
	if !ok {
		t.Fatal("company-screener workstream missing")
	}

	prompt := builder.BuildSystemPrompt(workstream.ID, true)

	if !strings.Contains(prompt, "CURRENT WORKFLOW: "+workstream.Title) {
		t.Error("Prompt missing workflow title")
	}

	for i, task := range workstream.Tasks {
		marker := fmt.Sprintf("%d. %s", i+1, task.Title)
		if !strings.Contains(prompt, marker) {
			t.Errorf("Prompt missing task %q", marker)
		}
	}
}

func TestBuildSystemPromptDataAccessToggle(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	withData := builder.BuildSystemPrompt("company-screener", true)
	if !strings.Contains(withData, "REAL-TIME DATA ACCESS") {
		t.Error("Expected data access block when tools are available")
	}

	withoutData := builder.BuildSystemPrompt("company-screener", false)
	if strings.Contains(withoutData, "REAL-TIME DATA ACCESS") {
		t.Error("Did not expect data access block without tools")
	}
}

func TestBuildSystemPromptUnknownWorkstream(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	if prompt := builder.BuildSystemPrompt("does-not-exist", true); prompt != "" {
		t.Errorf("Expected empty prompt for unknown workstream, got %d bytes", len(prompt))
	}
}

func TestDefaultSystemPrompt(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	withData := builder.DefaultSystemPrompt(true)
	if !strings.Contains(withData, "real-time company and people data") {
		t.Error("Expected data mention in default prompt with tools")
	}

	withoutData := builder.DefaultSystemPrompt(false)
	if strings.Contains(withoutData, "real-time company and people data") {
		t.Error("Did not expect data mention without tools")
	}

	if !strings.Contains(withoutData, "consulting assistant") {
		t.Error("Default prompt missing persona")
	}
}

func TestPersonaVariesByCategory(t *testing.T) {
	builder := services.NewPromptBuilder(testLogger(t))

	intelligence := builder.BuildSystemPrompt("company-screener", false)
	analysis := builder.BuildSystemPrompt("competitive-matrix", false)

	if !strings.Contains(intelligence, "market intelligence and company research") {
		t.Error("Intelligence prompt missing its persona")
	}
	if !strings.Contains(analysis, "competitive analysis and market intelligence") {
		t.Error("Analysis prompt missing its persona")
	}
}

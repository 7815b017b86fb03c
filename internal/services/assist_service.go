package services

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// AssistService provides the lightweight helper completions around the main
// chat flow: intent classification and chat title generation. Both calls are
// guarded by a circuit breaker and degrade to keyword heuristics so the UI
// never blocks on a flaky model.
type AssistService struct {
	aiService *AIService
	breaker   *gobreaker.CircuitBreaker
	config    config.OpenAIConfig
	logger    *logger.Logger
}

const (
	IntentCompanyResearch     = "company_research"
	IntentPeopleSearch        = "people_search"
	IntentCompetitiveAnalysis = "competitive_analysis"
	IntentMarketSizing        = "market_sizing"
	IntentFollowUpQuestion    = "follow_up_question"
	IntentGeneralChat         = "general_chat"
)

// ValidIntents lists every classification the detector may return.
var ValidIntents = []string{
	IntentCompanyResearch,
	IntentPeopleSearch,
	IntentCompetitiveAnalysis,
	IntentMarketSizing,
	IntentFollowUpQuestion,
	IntentGeneralChat,
}

const (
	intentMaxTokens = 20
	titleMaxTokens  = 30
	titleMaxLength  = 25
)

func NewAssistService(aiService *AIService, cfg config.OpenAIConfig, log *logger.Logger) *AssistService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "assist",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("assist circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &AssistService{
		aiService: aiService,
		breaker:   breaker,
		config:    cfg,
		logger:    log,
	}
}

const intentPromptTemplate = `Classify this user message intent. Return ONLY one of these exact options:

"%s"

Options:
- company_research (finding/analyzing companies, market research)
- people_search (finding talent, executives, professionals)
- competitive_analysis (competitor research, market positioning)
- market_sizing (TAM/SAM/SOM, market calculations)
- follow_up_question (questions about previous results)
- general_chat (general conversation, greetings, other topics)

Return ONLY the option name:`

// DetectIntent classifies a message into one of the known intents. Model
// failures and open-breaker states fall back to keyword matching; the call
// itself never returns an error.
func (service *AssistService) DetectIntent(ctx context.Context, message string) string {
	result, err := service.breaker.Execute(func() (any, error) {
		resp, err := service.aiService.Complete(ctx, CompletionRequest{
			Messages: []Message{
				{Role: RoleUser, Content: fmt.Sprintf(intentPromptTemplate, message)},
			},
			MaxTokens: intentMaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(resp.Content), nil
	})
	if err != nil {
		service.logger.WithError(err).Warn("intent detection fell back to heuristics")
		return HeuristicIntent(message)
	}

	intent := result.(string)
	for _, valid := range ValidIntents {
		if intent == valid {
			return intent
		}
	}
	return IntentGeneralChat
}

// HeuristicIntent is the keyword fallback used when the model is
// unavailable.
func HeuristicIntent(message string) string {
	content := strings.ToLower(message)

	switch {
	case strings.Contains(content, "company") || strings.Contains(content, "companies") || strings.Contains(content, "find"):
		return IntentCompanyResearch
	case strings.Contains(content, "people") || strings.Contains(content, "talent") || strings.Contains(content, "engineer"):
		return IntentPeopleSearch
	case strings.Contains(content, "competitor") || strings.Contains(content, "competitive"):
		return IntentCompetitiveAnalysis
	case strings.Contains(content, "market") || strings.Contains(content, "tam") || strings.Contains(content, "sizing"):
		return IntentMarketSizing
	default:
		return IntentGeneralChat
	}
}

const titlePromptTemplate = `Generate a short chat title (max 25 characters) for this message:

"%s"

Rules:
- If company/person name mentioned: use name
- If analysis request: focus on type
- Keep it simple and short
- No quotes or extra words

Examples:
"Find tech companies in SF" -> "SF Tech Companies"
"Analyze competitors" -> "Competitor Analysis"
"Market sizing for AI tools" -> "AI Tools Market Size"

Return ONLY the title:`

// GenerateTitle produces a short chat title for the first message of a
// conversation. Failures degrade to a truncation-based fallback.
func (service *AssistService) GenerateTitle(ctx context.Context, message string) string {
	result, err := service.breaker.Execute(func() (any, error) {
		resp, err := service.aiService.Complete(ctx, CompletionRequest{
			Messages: []Message{
				{Role: RoleUser, Content: fmt.Sprintf(titlePromptTemplate, message)},
			},
			MaxTokens: titleMaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(resp.Content), nil
	})
	if err != nil {
		service.logger.WithError(err).Warn("title generation fell back to truncation")
		return FallbackTitle(message)
	}

	title := cleanTitle(result.(string))
	if title == "" {
		return FallbackTitle(message)
	}
	return title
}

func cleanTitle(title string) string {
	title = strings.NewReplacer(`"`, "", "'", "").Replace(title)
	if len(title) > titleMaxLength {
		title = title[:titleMaxLength]
	}
	return title
}

// FallbackTitle derives a title from the message itself.
func FallbackTitle(message string) string {
	if message == "" {
		return "New Analysis"
	}
	if len(message) < 30 {
		return "Analysis of " + message
	}
	words := strings.Fields(message)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ") + "..."
}

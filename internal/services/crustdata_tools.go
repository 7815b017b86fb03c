package services

import (
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CrustDataToolSet returns the function schemas the model may call to reach
// the intelligence API. Schema field names are camelCase on the model side
// and translated to provider parameters by the dispatcher.
func CrustDataToolSet() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "screen_companies",
			Description: "Find companies matching specific criteria. Use this to discover companies for market research or prospecting. Note: Growth rate is year-over-year percentage (e.g., 20 for 20% growth).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"minHeadcount": map[string]any{
						"type":        "number",
						"description": "Minimum number of employees (e.g., 50 for mid-size companies)",
					},
					"maxHeadcount": map[string]any{
						"type":        "number",
						"description": "Maximum number of employees",
					},
					"minGrowthRate": map[string]any{
						"type":        "number",
						"description": "Minimum year-over-year growth rate as a percentage (e.g., 10 for 10% growth)",
					},
					"minFunding": map[string]any{
						"type":        "number",
						"description": "Minimum total funding raised in USD (e.g., 5000000 for $5M)",
					},
					"location": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of COUNTRIES only (e.g., ['USA', 'Canada']). NOTE: City-level filtering (like 'San Francisco') is NOT supported by the screener. Filter by country first, then enrich companies to get detailed city information.",
					},
					"foundedAfter": map[string]any{
						"type":        "string",
						"description": "Find companies founded after this date (format: YYYY-MM-DD)",
					},
				},
			},
		},
		{
			Name:        "enrich_companies",
			Description: "Get detailed information about specific companies including financials, headcount, growth metrics, and social profiles. Use this when users ask about specific companies. Common useful fields: company_name, domains, headcount.linkedin_headcount, funding_and_investment.crunchbase_total_investment_usd, year_founded, hq_country, employee_count_range, estimated_revenue_lower_bound_usd, estimated_revenue_higher_bound_usd, headcount.linkedin_headcount_total_growth_percent.yoy",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"companyNames": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of company names (e.g., ['Hubspot', 'Github'])",
					},
					"domains": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of company domains (e.g., ['hubspot.com', 'github.com'])",
					},
					"linkedinUrls": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of LinkedIn company URLs",
					},
					"companyIds": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "number"},
						"description": "List of provider company IDs (e.g., [12345, 67890])",
					},
					"fields": map[string]any{
						"type":        "string",
						"description": "Comma-separated field names. Use correct API field names like: company_name, domains, headcount.linkedin_headcount, funding_and_investment.crunchbase_total_investment_usd, year_founded, hq_country, estimated_revenue_lower_bound_usd, headcount.linkedin_headcount_total_growth_percent.yoy. Leave empty to get all default fields.",
					},
				},
			},
		},
		{
			Name:        "search_people",
			Description: "Find people based on their current company, job title, location, or skills. Use this for talent scouting, finding decision makers, or researching professionals.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"currentCompany": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of current companies (e.g., ['Google', 'Microsoft'])",
					},
					"title": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of job titles (e.g., ['Software Engineer', 'Product Manager'])",
					},
					"location": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of locations (e.g., ['San Francisco', 'New York'])",
					},
					"skills": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of skills to filter by",
					},
					"limit": map[string]any{
						"type":        "number",
						"description": "Maximum number of results to return (default: 25, max: 25)",
					},
				},
			},
		},
		{
			Name:        "enrich_people",
			Description: "Get detailed professional information about specific people including work history, education, skills, and contact information. Use this when users ask about specific individuals.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"linkedinUrls": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of LinkedIn profile URLs",
					},
					"emails": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "List of business email addresses",
					},
				},
			},
		},
		{
			Name:        "get_linkedin_posts",
			Description: "Get recent LinkedIn posts and engagement metrics for a person or company. Use this to understand recent activity, thought leadership, or company announcements.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"personLinkedinUrl": map[string]any{
						"type":        "string",
						"description": "LinkedIn profile URL of the person",
					},
					"companyName": map[string]any{
						"type":        "string",
						"description": "Name of the company",
					},
					"companyDomain": map[string]any{
						"type":        "string",
						"description": "Domain of the company (e.g., 'hubspot.com')",
					},
					"limit": map[string]any{
						"type":        "number",
						"description": "Number of posts to retrieve (default: 10, max: 25)",
					},
				},
			},
		},
		{
			Name:        "get_company_people",
			Description: "Get a list of people working at a specific company. Use this to find employees, decision makers, or build org charts.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"companyName": map[string]any{
						"type":        "string",
						"description": "Name of the company",
					},
					"companyLinkedinId": map[string]any{
						"type":        "string",
						"description": "LinkedIn ID of the company",
					},
					"companyId": map[string]any{
						"type":        "number",
						"description": "Provider company ID",
					},
					"s3Username": map[string]any{
						"type":        "string",
						"description": "S3 username for data access (required by API)",
					},
				},
				"required": []string{"s3Username"},
			},
		},
	}
}

// ToolDispatcher routes model tool calls to the data adapter. The adapter may
// be nil when no credential is configured; dispatch still succeeds and every
// call receives an explanatory error payload the model can relay.
type ToolDispatcher struct {
	crustdata *CrustDataService
	logger    *logger.Logger
}

func NewToolDispatcher(crustdata *CrustDataService, log *logger.Logger) *ToolDispatcher {
	return &ToolDispatcher{
		crustdata: crustdata,
		logger:    log,
	}
}

func (dispatcher *ToolDispatcher) Configured() bool {
	return dispatcher.crustdata != nil
}

// ExecuteToolCalls runs every requested call in order and returns one result
// per call, in the same order. A failing call never aborts the batch; its
// failure becomes the result content.
func (dispatcher *ToolDispatcher) ExecuteToolCalls(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))

	for _, call := range calls {
		results = append(results, dispatcher.executeCall(ctx, call))
	}

	return results
}

func (dispatcher *ToolDispatcher) executeCall(ctx context.Context, call ToolCall) ToolResult {
	result := ToolResult{ToolCallID: call.ID, Name: call.Name}

	if dispatcher.crustdata == nil {
		result.Content = `{"error":"Crustdata API key not configured"}`
		return result
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		dispatcher.logger.LogTool(call.Name, 0, nil, err)
		result.Content = `{"error":"Invalid arguments format"}`
		return result
	}

	startTime := time.Now()
	data, err := dispatcher.dispatch(ctx, call.Name, args)
	duration := time.Since(startTime)

	if err != nil {
		dispatcher.logger.LogTool(call.Name, duration, map[string]any{
			"arguments": call.Arguments,
		}, err)
		result.Content = mustMarshal(map[string]any{
			"error":      err.Error(),
			"suggestion": "Try broadening your search criteria or use enrich_companies with known company names instead.",
		})
		return result
	}

	dispatcher.logger.LogTool(call.Name, duration, map[string]any{
		"response_size": len(data),
	}, nil)
	result.Content = string(data)
	return result
}

func (dispatcher *ToolDispatcher) dispatch(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	switch name {
	case "screen_companies":
		return dispatcher.crustdata.ScreenCompanies(ctx, screenFiltersFromArgs(args))

	case "enrich_companies":
		return dispatcher.crustdata.EnrichCompanies(ctx, CompanyEnrichParams{
			CompanyNames: stringSliceArg(args, "companyNames"),
			Domains:      stringSliceArg(args, "domains"),
			LinkedInURLs: stringSliceArg(args, "linkedinUrls"),
			CompanyIDs:   int64SliceArg(args, "companyIds"),
			Fields:       stringArg(args, "fields"),
		})

	case "search_people":
		return dispatcher.crustdata.SearchPeople(ctx, PeopleSearchFilters{
			CurrentCompany: stringSliceArg(args, "currentCompany"),
			Title:          stringSliceArg(args, "title"),
			Location:       stringSliceArg(args, "location"),
			Skills:         stringSliceArg(args, "skills"),
			Limit:          intArg(args, "limit"),
		})

	case "enrich_people":
		return dispatcher.crustdata.EnrichPeople(ctx, PeopleEnrichParams{
			LinkedInURLs: stringSliceArg(args, "linkedinUrls"),
			Emails:       stringSliceArg(args, "emails"),
		})

	case "get_linkedin_posts":
		return dispatcher.crustdata.GetLinkedInPosts(ctx, LinkedInPostsParams{
			PersonLinkedInURL: stringArg(args, "personLinkedinUrl"),
			CompanyName:       stringArg(args, "companyName"),
			CompanyDomain:     stringArg(args, "companyDomain"),
			CompanyID:         int64(intArg(args, "companyId")),
			Limit:             intArg(args, "limit"),
		})

	case "get_company_people":
		return dispatcher.crustdata.GetCompanyPeople(ctx, CompanyPeopleParams{
			CompanyName:       stringArg(args, "companyName"),
			CompanyLinkedInID: stringArg(args, "companyLinkedinId"),
			CompanyID:         int64(intArg(args, "companyId")),
		})

	default:
		return nil, fmt.Errorf("Unknown tool: %s", name)
	}
}

func screenFiltersFromArgs(args map[string]any) CompanyScreenFilters {
	filters := CompanyScreenFilters{
		Location:     stringSliceArg(args, "location"),
		FoundedAfter: stringArg(args, "foundedAfter"),
	}

	minHead := intArg(args, "minHeadcount")
	maxHead := intArg(args, "maxHeadcount")
	if minHead > 0 || maxHead > 0 {
		filters.Headcount = &HeadcountRange{Min: minHead, Max: maxHead}
	}

	if growth := floatArg(args, "minGrowthRate"); growth > 0 {
		filters.HeadcountGrowth = &GrowthRange{Min: growth}
	}

	if funding := floatArg(args, "minFunding"); funding > 0 {
		filters.Funding = &FundingRange{Min: funding}
	}

	return filters
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func floatArg(args map[string]any, key string) float64 {
	value, _ := args[key].(float64)
	return value
}

func intArg(args map[string]any, key string) int {
	return int(floatArg(args, key))
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

func int64SliceArg(args map[string]any, key string) []int64 {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	values := make([]int64, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			values = append(values, int64(f))
		}
	}
	return values
}

func mustMarshal(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return `{"error":"internal serialization failure"}`
	}
	return string(data)
}

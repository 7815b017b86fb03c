package services

import (
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"fmt"
	"strings"
)

// PromptBuilder assembles workstream system prompts from a lookup table of
// category personas and per-component schema guides. Each workstream resolves
// to exactly one persona and, when it renders a visualization, exactly one
// component guide.
type PromptBuilder struct {
	logger *logger.Logger
}

func NewPromptBuilder(log *logger.Logger) *PromptBuilder {
	return &PromptBuilder{logger: log}
}

type personaTemplate struct {
	intro string
	outro string
}

var categoryPersonas = map[models.WorkStreamCategory]personaTemplate{
	models.CategoryIntelligence: {
		intro: "You are an expert management consultant specializing in real-time market intelligence and company research. You help consulting firms gather and analyze live data for strategic decisions.",
		outro: "Provide structured, actionable insights with real-time data that consulting firms can use in client deliverables.",
	},
	models.CategoryAnalysis: {
		intro: "You are an expert strategy consultant specializing in competitive analysis and market intelligence. You help consulting firms develop strategic recommendations with data-driven insights.",
		outro: "Provide strategic insights with clear frameworks and actionable recommendations.",
	},
	models.CategoryVisualization: {
		intro: "You are an expert data visualization consultant. You help consulting firms create compelling visual reports and interactive dashboards.",
		outro: "Provide data-driven insights with clear visualizations and actionable recommendations.",
	},
}

const dataAccessBlock = `

REAL-TIME DATA ACCESS:
You have access to real-time company and people data through Crustdata. Use these tools proactively:

BEST PRACTICE WORKFLOW:
1. screen_companies: Filter by COUNTRY (not city), headcount range. Growth filtering may return empty results - screen broadly first.
2. enrich_companies: Get detailed data for screened companies (includes city, growth %, funding)
3. Post-process: Filter enriched results by city and growth % yourself before creating the table

Available Tools:
- screen_companies: Find companies by headcount, funding, COUNTRY (not city-level)
- enrich_companies: Get detailed company information (city, growth, financials)
- search_people: Find professionals by role, company, skills
- enrich_people: Get detailed professional profiles
- get_linkedin_posts: Recent social media activity
- get_company_people: List employees at a company`

var componentGuides = map[models.ComponentType]string{
	models.ComponentTable: `
TABLE COMPONENT - Interactive Data Tables

PURPOSE: Display structured data that users can sort and analyze

COLUMN TYPES:
- "text": Regular text (company names, descriptions)
- "number": Integers displayed with commas (e.g., 1,500)
- "percentage": Numbers displayed as % (e.g., 25 -> "25%")
- "currency": USD amounts (e.g., 15000000 -> "$15.0M")
- "link": Clickable URLs

KEY RULES:
- Use descriptive "label" for column headers (what user sees)
- Use short "key" for data fields (what code uses)
- Keys must match exactly between columns and row data
- Currency values: Always use raw numbers (15000000, not "$15M")
- Percentage values: Use raw numbers (25, not "25%")
- Set "sortable": true to enable column sorting
- Include 5-15 rows for optimal display

EXAMPLE:
{
  "type": "table",
  "title": "Top Growth Companies",
  "description": "Q4 2024 data from Crustdata",
  "columns": [
    {"key": "company", "label": "Company Name", "type": "text"},
    {"key": "employees", "label": "Team Size", "type": "number"},
    {"key": "growth", "label": "YoY Growth", "type": "percentage"},
    {"key": "funding", "label": "Total Raised", "type": "currency"}
  ],
  "rows": [
    {"company": "Acme AI", "employees": 87, "growth": 42, "funding": 15000000},
    {"company": "DataCorp", "employees": 156, "growth": 28, "funding": 25000000}
  ],
  "sortable": true
}`,
	models.ComponentChart: `
CHART COMPONENT - Horizontal Bar Charts

PURPOSE: Compare values across categories with visual bars

HOW IT WORKS:
- Displays horizontal bars proportional to values
- Automatically scales bars to fit (largest = 100% width)
- Shows value labels and percentages
- Best for: Market sizing, revenue comparison, headcount comparison

KEY RULES:
- Each data point needs "label" (category name) and "value" (numeric)
- Values should be comparable numbers (all revenue, all headcount, etc.)
- Use 3-10 data points for optimal readability
- Values displayed with thousand separators (e.g., 15,000,000)
- Bars show relative size (largest always 100% wide)
- Optional: "xAxisLabel" and "yAxisLabel" for context

EXAMPLE - Market Size Analysis:
{
  "type": "chart",
  "title": "SaaS Market Size by Segment",
  "description": "Total Addressable Market 2024",
  "chartType": "bar",
  "data": [
    {"label": "Enterprise CRM", "value": 85000000},
    {"label": "Marketing Automation", "value": 62000000},
    {"label": "Sales Tools", "value": 45000000},
    {"label": "Customer Support", "value": 38000000}
  ],
  "xAxisLabel": "Market Segment",
  "yAxisLabel": "Market Size (USD)"
}`,
	models.ComponentMatrix: `
MATRIX COMPONENT - 2x2 Positioning Matrix

PURPOSE: Show competitive positioning across two dimensions

STRUCTURE:
- xAxis: Horizontal dimension (e.g., Price, Market Share)
- yAxis: Vertical dimension (e.g., Quality, Innovation)
- 4 quadrants: topLeft, topRight, bottomLeft, bottomRight

KEY RULES:
- Each axis needs "label", "min", and "max" descriptions
- Position items using x/y coordinates (0-100 scale)
- Each quadrant has a "label" and array of "items"
- Items need "name", "x" position, "y" position
- Distribute items across all 4 quadrants for balance
- Use for competitive analysis, market positioning

EXAMPLE:
{
  "type": "matrix",
  "title": "Competitive Landscape - AI SaaS",
  "description": "Price vs. Feature Completeness",
  "xAxis": {"label": "Price", "min": "Low", "max": "High"},
  "yAxis": {"label": "Features", "min": "Basic", "max": "Advanced"},
  "quadrants": {
    "topLeft": {
      "label": "Premium Value",
      "items": [{"name": "Acme AI", "x": 20, "y": 80}]
    },
    "topRight": {
      "label": "Market Leaders",
      "items": [{"name": "DataCorp", "x": 75, "y": 85}]
    },
    "bottomLeft": {
      "label": "Budget Options",
      "items": [{"name": "StartupTech", "x": 15, "y": 25}]
    },
    "bottomRight": {
      "label": "Overpriced",
      "items": [{"name": "LegacyCo", "x": 85, "y": 30}]
    }
  }
}`,
	models.ComponentCard: `
CARD COMPONENT - Profile Cards

PURPOSE: Display rich profiles with metrics and tags

STRUCTURE:
- Each card is a self-contained profile
- Includes title, subtitle, metrics, tags, description
- Layout can be "grid" or "list"

KEY RULES:
- Each card needs unique "id"
- "title": Main heading (e.g., company name)
- "subtitle": Secondary info (e.g., industry)
- "metrics": Array of key stats with labels and values
- "trend": Use "up", "down", or "neutral" for metric arrows
- "tags": Array of category labels
- Use 3-10 cards for optimal display
- Keep descriptions concise (1-2 sentences)

EXAMPLE:
{
  "type": "card",
  "title": "Top Talent Profiles",
  "description": "Senior engineers at FAANG companies",
  "layout": "grid",
  "cards": [
    {
      "id": "1",
      "title": "Sarah Chen",
      "subtitle": "Senior ML Engineer at Google",
      "metrics": [
        {"label": "Experience", "value": "8 years", "trend": "up"},
        {"label": "Team Size", "value": "12", "trend": "neutral"}
      ],
      "tags": ["Python", "TensorFlow", "AI/ML"],
      "description": "Led ML platform scaling to 1M+ users"
    }
  ]
}`,
	models.ComponentTimeline: `
TIMELINE COMPONENT - Event Timeline

PURPOSE: Show chronological events and milestones

EVENT TYPES:
- "funding": Funding rounds
- "milestone": Company milestones
- "launch": Product launches
- "acquisition": M&A events
- "other": General events

KEY RULES:
- "date": Use YYYY-MM-DD format
- "title": Brief event name
- "description": 1-2 sentence explanation
- "type": Choose from event types above
- "amount": Optional, for funding events (e.g., "$10M")
- "sortOrder": Use "desc" for newest first, "asc" for oldest first
- Include 5-20 events for context

EXAMPLE:
{
  "type": "timeline",
  "title": "Acme AI Growth Journey",
  "description": "Key milestones and funding",
  "sortOrder": "desc",
  "events": [
    {
      "date": "2024-03-15",
      "title": "Series B Funding",
      "description": "Raised $25M led by Sequoia",
      "type": "funding",
      "amount": "$25M"
    },
    {
      "date": "2023-09-20",
      "title": "Launched AI Platform",
      "description": "Public launch with 100+ beta customers",
      "type": "launch"
    }
  ]
}`,
}

const componentUsageGuide = `

=======================================================
CRITICAL: COMPONENT GENERATION REQUIRED
=======================================================

This workflow MUST generate a %s component.

=======================================================
COMPONENT USAGE GUIDE
=======================================================

WHEN TO USE EACH COMPONENT:
- TABLE: Lists of companies/people with multiple attributes (MOST COMMON)
- CHART: Comparing numeric values across categories (market sizing, revenue)
- MATRIX: Positioning analysis (competitive landscape, market mapping)
- CARD: Rich profiles (talent pipelines, company deep dives)
- TIMELINE: Chronological events (funding history, company milestones)

=======================================================`

const outputContract = `

=======================================================
FINAL OUTPUT FORMAT
=======================================================

YOUR FINAL RESPONSE MUST BE THIS EXACT JSON STRUCTURE:

{
  "text": "Your detailed analysis here. Include insights, patterns, recommendations. This appears as text above the visualization.",
  "component": {
    "type": "%s",
    "title": "Clear, descriptive title",
    "description": "1-sentence context",
    ... component-specific fields as shown above ...
  }
}

CRITICAL REQUIREMENTS:
- Return ONLY the JSON object (start with { end with })
- NO markdown code blocks
- NO explanations before/after the JSON
- Use REAL data from Crustdata tool calls
- Format numbers correctly (raw values, not formatted strings)
- All keys must match exactly between columns and rows
- Validate your JSON structure before returning

REMEMBER: The frontend automatically formats currency/percentage/numbers.
Send raw values: 15000000 (not "$15M"), 42 (not "42%%"), 1500 (not "1,500")

=======================================================
COMMON MISTAKES TO AVOID
=======================================================

1. WRONG: Formatted numbers in data
   {"funding": "$15M", "growth": "42%%", "employees": "1,500"}
   RIGHT: Raw numbers
   {"funding": 15000000, "growth": 42, "employees": 1500}

2. WRONG: Mismatched column keys and row data
   columns: [{"key": "company_name", ...}]
   rows: [{"companyName": "Acme"}]
   RIGHT: Exact match
   columns: [{"key": "company", ...}]
   rows: [{"company": "Acme"}]

3. WRONG: Including error messages in JSON response
   {"error": "..."} { "text": "...", "component": {...} }
   RIGHT: Clean JSON only
   { "text": "...", "component": {...} }

4. WRONG: Empty or placeholder data
   rows: [{"company": "TBD", "employees": 0}]
   RIGHT: Real data from Crustdata
   rows: [{"company": "Acme AI", "employees": 87}]

5. WRONG: Missing required fields
   {"type": "table", "columns": [...]}
   RIGHT: Complete structure
   {"type": "table", "title": "...", "columns": [...], "rows": [...]}

6. WRONG: Using text responses instead of components
   "Here is a table of companies: Acme (87 employees), DataCorp (156 employees)"
   RIGHT: Actual table component
   { "text": "Analysis...", "component": {"type": "table", ...} }`

// ComponentReminder is injected as a trailing user turn after tool results
// when the active workstream renders a visualization.
const ComponentReminder = `Now synthesize the data into the required JSON format with both "text" and "component" fields. CRITICAL: Return ONLY the valid JSON object starting with { and ending with }. Do NOT include any error messages, explanations, or text before/after the JSON. Just the pure JSON object.`

// BuildSystemPrompt resolves the workstream and renders its full system
// prompt. An unknown workstream yields the empty string so the caller can
// fall back to the general prompt.
func (builder *PromptBuilder) BuildSystemPrompt(workflowID string, hasDataAccess bool) string {
	workflow, ok := models.FindWorkStream(workflowID)
	if !ok {
		builder.logger.Warn("unknown workstream requested", "workflow_id", workflowID)
		return ""
	}

	persona, ok := categoryPersonas[workflow.Category]
	if !ok {
		builder.logger.Warn("workstream category has no persona", "category", string(workflow.Category))
		return ""
	}

	var prompt strings.Builder
	prompt.WriteString(persona.intro)

	if hasDataAccess {
		prompt.WriteString(dataAccessBlock)
	}

	prompt.WriteString("\n\nCURRENT WORKFLOW: ")
	prompt.WriteString(workflow.Title)
	prompt.WriteString("\n")
	prompt.WriteString(workflow.Description)
	prompt.WriteString("\n\nYour goal is to help the user complete this workflow efficiently. Focus on:\n")
	prompt.WriteString(renderTasks(workflow.Tasks))

	if workflow.GeneratesComponent != "" {
		prompt.WriteString(fmt.Sprintf(componentUsageGuide, workflow.GeneratesComponent))
		prompt.WriteString(componentGuides[workflow.GeneratesComponent])
		prompt.WriteString(fmt.Sprintf(outputContract, workflow.GeneratesComponent))
	}

	prompt.WriteString("\n\n")
	prompt.WriteString(persona.outro)

	return prompt.String()
}

// DefaultSystemPrompt is used when no workstream is active or the requested
// one is unknown.
func (builder *PromptBuilder) DefaultSystemPrompt(hasDataAccess bool) string {
	prompt := "You are an expert AI consulting assistant specializing in strategy, operations, market analysis, and business intelligence. You help consulting firms deliver high-quality insights and recommendations to their clients."

	if hasDataAccess {
		prompt += "\n\nYou have access to real-time company and people data through Crustdata. Use the available tools to provide up-to-date information when users ask about companies, markets, people, or competitive intelligence."
	}

	return prompt
}

func renderTasks(tasks []models.WorkStreamTask) string {
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		line := fmt.Sprintf("%d. %s", i+1, task.Title)
		if task.Description != "" {
			line += ": " + task.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

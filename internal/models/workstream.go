package models

// WorkStream is a pre-defined consulting task template. The catalog is static
// configuration: loaded once, looked up by id, never mutated.
type WorkStream struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Category           WorkStreamCategory `json:"category"`
	Tags               []string           `json:"tags"`
	Prompt             string             `json:"prompt"`
	Tasks              []WorkStreamTask   `json:"tasks"`
	GeneratesComponent ComponentType      `json:"generatesComponent,omitempty"`
}

type WorkStreamCategory string

type WorkStreamTask struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

const (
	CategoryIntelligence  WorkStreamCategory = "intelligence"
	CategoryAnalysis      WorkStreamCategory = "analysis"
	CategoryVisualization WorkStreamCategory = "visualization"
)

var workStreams = []WorkStream{
	{
		ID:                 "company-screener",
		Title:              "Company Intelligence Screener",
		Description:        "Find and analyze companies with real-time Crustdata + AI insights",
		Category:           CategoryIntelligence,
		Tags:               []string{"Crustdata", "Real-time", "Company Research"},
		Prompt:             "Find tech companies in San Francisco with 50-200 employees, 20%+ growth, and analyze their market position.",
		GeneratesComponent: ComponentTable,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Screen companies with Crustdata", Description: "Use real-time filters for growth, location, size"},
			{ID: 2, Title: "Enrich company data", Description: "Get detailed financials, team, and metrics"},
			{ID: 3, Title: "AI analysis", Description: "The assistant analyzes patterns and opportunities"},
			{ID: 4, Title: "Generate interactive table", Description: "Sortable, filterable company list"},
		},
	},
	{
		ID:                 "competitive-matrix",
		Title:              "Competitive Intelligence Matrix",
		Description:        "Real-time competitor analysis with 2x2 positioning matrix",
		Category:           CategoryAnalysis,
		Tags:               []string{"Competitive", "Matrix", "Positioning"},
		Prompt:             "Analyze competitors in the AI SaaS space. Create a 2x2 matrix showing market position and generate strategic insights.",
		GeneratesComponent: ComponentMatrix,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Identify competitors", Description: "Use Crustdata to find similar companies"},
			{ID: 2, Title: "Gather competitive data", Description: "Enrich with growth, funding, team size"},
			{ID: 3, Title: "AI positioning analysis", Description: "The assistant analyzes market positioning"},
			{ID: 4, Title: "Generate 2x2 matrix", Description: "Interactive competitive landscape visual"},
		},
	},
	{
		ID:                 "market-sizing",
		Title:              "Market Sizing Calculator",
		Description:        "Calculate TAM/SAM/SOM with real data and generate visual breakdown",
		Category:           CategoryAnalysis,
		Tags:               []string{"Market Sizing", "TAM/SAM/SOM", "Charts"},
		Prompt:             "Size the market for AI-powered customer service tools in North America. Show TAM, SAM, SOM with visual breakdown.",
		GeneratesComponent: ComponentChart,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Define market scope", Description: "AI clarifies boundaries and segments"},
			{ID: 2, Title: "Gather market data", Description: "Crustdata provides company counts and metrics"},
			{ID: 3, Title: "Calculate TAM/SAM/SOM", Description: "AI performs calculations with methodology"},
			{ID: 4, Title: "Generate funnel chart", Description: "Visual market sizing breakdown"},
			{ID: 5, Title: "Provide strategic insights", Description: "AI interprets what the numbers mean"},
		},
	},
	{
		ID:                 "talent-pipeline",
		Title:              "Talent Pipeline Builder",
		Description:        "Find and analyze talent with real-time people data",
		Category:           CategoryIntelligence,
		Tags:               []string{"Talent", "Recruiting", "People"},
		Prompt:             "Find senior engineers at FAANG companies with AI/ML expertise in the Bay Area. Create a talent pipeline.",
		GeneratesComponent: ComponentCard,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Search for talent", Description: "Crustdata people search with filters"},
			{ID: 2, Title: "Enrich profiles", Description: "Get detailed work history and skills"},
			{ID: 3, Title: "AI candidate analysis", Description: "The assistant evaluates fit and experience"},
			{ID: 4, Title: "Generate candidate cards", Description: "Visual profile cards with insights"},
		},
	},
	{
		ID:                 "funding-tracker",
		Title:              "Funding & Growth Tracker",
		Description:        "Track funding rounds and company growth signals in real-time",
		Category:           CategoryIntelligence,
		Tags:               []string{"Funding", "Growth", "Signals"},
		Prompt:             "Track recent funding rounds in the fintech sector. Show growth trends and investment patterns.",
		GeneratesComponent: ComponentTimeline,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Find funded companies", Description: "Crustdata filters for recent funding"},
			{ID: 2, Title: "Analyze growth signals", Description: "Headcount, hiring, market signals"},
			{ID: 3, Title: "AI pattern recognition", Description: "The assistant identifies trends and insights"},
			{ID: 4, Title: "Generate timeline", Description: "Visual funding and growth timeline"},
		},
	},
	{
		ID:                 "company-deep-dive",
		Title:              "Company Deep Dive Report",
		Description:        "Comprehensive company analysis with multiple data sources",
		Category:           CategoryAnalysis,
		Tags:               []string{"Research", "Deep Dive", "Comprehensive"},
		Prompt:             "Conduct a deep dive on Stripe. Include team analysis, growth metrics, market position, and strategic insights.",
		GeneratesComponent: ComponentCard,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Enrich company data", Description: "Crustdata comprehensive company info"},
			{ID: 2, Title: "Analyze team", Description: "Leadership and key employees"},
			{ID: 3, Title: "Growth metrics", Description: "Headcount, funding, market signals"},
			{ID: 4, Title: "Social presence", Description: "LinkedIn posts and engagement"},
			{ID: 5, Title: "AI strategic analysis", Description: "The assistant synthesizes all data"},
			{ID: 6, Title: "Generate report card", Description: "Visual summary with key metrics"},
		},
	},
	{
		ID:                 "market-landscape",
		Title:              "Market Landscape Overview",
		Description:        "Visual market map with key players and segments",
		Category:           CategoryVisualization,
		Tags:               []string{"Market Map", "Landscape", "Overview"},
		Prompt:             "Create a market landscape for the AI infrastructure space. Show key players, segments, and market dynamics.",
		GeneratesComponent: ComponentMatrix,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Identify market segments", Description: "AI categorizes the market"},
			{ID: 2, Title: "Find key players", Description: "Crustdata screens for companies"},
			{ID: 3, Title: "Categorize companies", Description: "AI assigns to segments"},
			{ID: 4, Title: "Analyze dynamics", Description: "Growth, funding, competition"},
			{ID: 5, Title: "Generate market map", Description: "Visual landscape with positioning"},
		},
	},
	{
		ID:                 "growth-analysis",
		Title:              "Growth Metrics Dashboard",
		Description:        "Track and visualize company growth indicators",
		Category:           CategoryVisualization,
		Tags:               []string{"Growth", "Metrics", "Dashboard"},
		Prompt:             "Analyze growth metrics for top SaaS companies. Show headcount growth, funding, and market signals over time.",
		GeneratesComponent: ComponentChart,
		Tasks: []WorkStreamTask{
			{ID: 1, Title: "Select companies", Description: "Crustdata screens for SaaS leaders"},
			{ID: 2, Title: "Gather growth data", Description: "Headcount, funding, signals"},
			{ID: 3, Title: "AI trend analysis", Description: "The assistant identifies patterns"},
			{ID: 4, Title: "Generate growth charts", Description: "Interactive growth visualizations"},
		},
	},
}

// WorkStreams returns the full catalog.
func WorkStreams() []WorkStream {
	return workStreams
}

// FindWorkStream looks up a workstream by id; ok is false when unknown.
func FindWorkStream(id string) (WorkStream, bool) {
	for _, ws := range workStreams {
		if ws.ID == id {
			return ws, true
		}
	}
	return WorkStream{}, false
}

// QuickStarters are suggested first prompts surfaced by the UI.
var QuickStarters = []string{
	"Find fast-growing AI companies in SF with 50-200 employees",
	"Create a competitive matrix for AI SaaS companies",
	"Size the market for AI customer service tools",
	"Find senior ML engineers at Google and Meta",
	"Track recent Series A funding in fintech",
	"Deep dive analysis on Stripe's growth and team",
}

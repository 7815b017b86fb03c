package models

type ComponentType string

const (
	ComponentChart    ComponentType = "chart"
	ComponentTable    ComponentType = "table"
	ComponentMatrix   ComponentType = "matrix"
	ComponentCard     ComponentType = "card"
	ComponentTimeline ComponentType = "timeline"
)

// ComponentData is the visualization payload the model emits inside its final
// answer. It is a tagged union over the five component types; only the fields
// belonging to Type are populated. All numeric values are raw numbers, the
// rendering layer applies currency/percentage formatting.
type ComponentData struct {
	Type        ComponentType `json:"type"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`

	// chart
	ChartType  string       `json:"chartType,omitempty"`
	Data       []ChartPoint `json:"data,omitempty"`
	XAxisLabel string       `json:"xAxisLabel,omitempty"`
	YAxisLabel string       `json:"yAxisLabel,omitempty"`

	// table
	Columns  []TableColumn    `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	Sortable bool             `json:"sortable,omitempty"`

	// matrix
	XAxis     *MatrixAxis      `json:"xAxis,omitempty"`
	YAxis     *MatrixAxis      `json:"yAxis,omitempty"`
	Quadrants *MatrixQuadrants `json:"quadrants,omitempty"`

	// card
	Cards  []Card `json:"cards,omitempty"`
	Layout string `json:"layout,omitempty"`

	// timeline
	Events    []TimelineEvent `json:"events,omitempty"`
	SortOrder string          `json:"sortOrder,omitempty"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"` // text | number | currency | percentage | link
}

type MatrixAxis struct {
	Label string `json:"label"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

type MatrixItem struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type MatrixQuadrant struct {
	Label string       `json:"label"`
	Items []MatrixItem `json:"items"`
}

type MatrixQuadrants struct {
	TopLeft     MatrixQuadrant `json:"topLeft"`
	TopRight    MatrixQuadrant `json:"topRight"`
	BottomLeft  MatrixQuadrant `json:"bottomLeft"`
	BottomRight MatrixQuadrant `json:"bottomRight"`
}

type CardMetric struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Trend string `json:"trend,omitempty"` // up | down | neutral
}

type Card struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle,omitempty"`
	Metrics     []CardMetric `json:"metrics,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Description string       `json:"description,omitempty"`
}

type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"` // funding | milestone | launch | acquisition | other
	Amount      string `json:"amount,omitempty"`
}

// StructuredPayload is the {text, component} object the model is instructed to
// emit as its final answer for component-generating workstreams.
type StructuredPayload struct {
	Text      string        `json:"text"`
	Component ComponentData `json:"component"`
}

package render

// Plotly figure JSON. Only the attributes the RegLand front end reads are
// modelled.

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	Marker *Marker   `json:"marker,omitempty"`
}

type Marker struct {
	Color []string `json:"color,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type Shape struct {
	Type      string  `json:"type"`
	X0        float64 `json:"x0"`
	X1        float64 `json:"x1"`
	Y0        float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	FillColor string  `json:"fillcolor,omitempty"`
	Line      Line    `json:"line"`
}

type Font struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

type Annotation struct {
	X         any     `json:"x"`
	Y         float64 `json:"y"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

type Axis struct {
	Title          string    `json:"title,omitempty"`
	Range          []float64 `json:"range,omitempty"`
	TickFormat     string    `json:"tickformat,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Layout struct {
	Title       string       `json:"title,omitempty"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	Height      int          `json:"height"`
	Margin      Margin       `json:"margin"`
	ShowLegend  bool         `json:"showlegend"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

var defaultMargin = Margin{L: 50, R: 50, T: 50, B: 50}

func boolPtr(b bool) *bool { return &b }

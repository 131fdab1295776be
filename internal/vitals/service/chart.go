package service

import "github.com/Jamolkhon5/lifesense/internal/vitals/models"

const (
	MinChartPoints     = 60
	MaxChartPoints     = 150
	DefaultChartPoints = MaxChartPoints
)

// ClampPoints bounds a requested chart window. Non-positive values select the default.
func ClampPoints(n int) int {
	switch {
	case n <= 0:
		return DefaultChartPoints
	case n < MinChartPoints:
		return MinChartPoints
	case n > MaxChartPoints:
		return MaxChartPoints
	default:
		return n
	}
}

// Chart is one rolling chart series holding at most maxPoints values.
type Chart struct {
	maxPoints int
	labels    []string
	values    []float64
}

func NewChart(maxPoints int) *Chart {
	return &Chart{maxPoints: maxPoints}
}

// Update replaces the data. Only the newest maxPoints values are kept.
func (c *Chart) Update(labels []string, values []float64) {
	c.labels, c.values = c.labels[:0], c.values[:0]
	for i := 0; i < len(values) && i < len(labels); i++ {
		c.Push(labels[i], values[i])
	}
}

// Push appends one point and evicts the oldest beyond the window.
func (c *Chart) Push(label string, value float64) {
	c.labels = append(c.labels, label)
	c.values = append(c.values, value)
	if c.maxPoints > 0 && len(c.values) > c.maxPoints {
		c.labels = c.labels[1:]
		c.values = c.values[1:]
	}
}

// Snapshot copies the current series.
func (c *Chart) Snapshot() models.Series {
	return models.Series{
		Labels: append([]string{}, c.labels...),
		Values: append([]float64{}, c.values...),
	}
}

// ChartKind names a chart in a panel.
type ChartKind string

const (
	ChartTemperature ChartKind = "temperature"
	ChartHeartRate   ChartKind = "heart_rate"
	ChartSpO2        ChartKind = "spo2"
)

// Panel groups the charts rendered for one request under a shared window.
// It is not safe for concurrent use.
type Panel struct {
	points int
	charts map[ChartKind]*Chart
}

// NewPanel creates an empty panel with a clamped window.
func NewPanel(points int) *Panel {
	return &Panel{
		points: ClampPoints(points),
		charts: make(map[ChartKind]*Chart),
	}
}

func (p *Panel) Points() int {
	return p.points
}

// Create replaces any chart of that kind with an empty one.
func (p *Panel) Create(kinds ...ChartKind) {
	for _, kind := range kinds {
		p.charts[kind] = NewChart(p.points)
	}
}

// Update feeds a chart created earlier. It reports false for an unknown kind.
func (p *Panel) Update(kind ChartKind, labels []string, values []float64) bool {
	c, ok := p.charts[kind]
	if !ok {
		return false
	}
	c.Update(labels, values)
	return true
}

// Snapshot returns the series of a chart and whether it exists.
func (p *Panel) Snapshot(kind ChartKind) (models.Series, bool) {
	c, ok := p.charts[kind]
	if !ok {
		return models.Series{}, false
	}
	return c.Snapshot(), true
}

// DestroyAll drops every chart.
func (p *Panel) DestroyAll() {
	clear(p.charts)
}

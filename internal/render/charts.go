// Package render draws processed snapshots as SVG charts for the browser and
// as styled text for the terminal.
package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/processor"
)

// DifficultyColors are the fixed slice colors of the difficulty chart.
var DifficultyColors = map[string]string{
	"Easy":   "#4CAF50",
	"Medium": "#FF9800",
	"Hard":   "#F44336",
}

const fallbackColor = "#8884d8"

// CategoryChart writes a bar chart of question counts per category, largest first.
func CategoryChart(w io.Writer, categories []domain.CategoryAggregate) error {
	if len(categories) == 0 {
		return domain.ErrNoData
	}

	sorted := processor.SortCategoriesByCount(categories)
	bars := make([]chart.Value, 0, len(sorted))
	for _, c := range sorted {
		bars = append(bars, chart.Value{Label: c.Name, Value: float64(c.Count)})
	}

	graph := chart.BarChart{
		Title:      "Questions by Category",
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: 20}},
		Width:      960,
		Height:     420,
		BarWidth:   32,
		XAxis:      chart.Style{TextRotationDegrees: 45.0},
		YAxis: chart.YAxis{
			// A fixed range keeps single-bar charts renderable.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(sorted[0].Count)},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render category chart: %w", err)
	}
	return nil
}

// DifficultyChart writes a pie chart of question counts per difficulty.
func DifficultyChart(w io.Writer, difficulties []domain.DifficultyAggregate) error {
	if len(difficulties) == 0 {
		return domain.ErrNoData
	}

	values := make([]chart.Value, 0, len(difficulties))
	for _, d := range difficulties {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", d.Name, d.Count),
			Value: float64(d.Count),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(difficultyColor(d.Name)[1:]),
				StrokeColor: drawing.ColorWhite,
			},
		})
	}

	graph := chart.PieChart{
		Title:  "Questions by Difficulty",
		Width:  420,
		Height: 420,
		Values: values,
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render difficulty chart: %w", err)
	}
	return nil
}

func difficultyColor(name string) string {
	if c, ok := DifficultyColors[name]; ok {
		return c
	}
	return fallbackColor
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth    = 900
	pngHeight   = 480
	pngBarWidth = 40
	noDataLabel = "no selection"
)

// BarChartPNG draws the chart rows as bars coloured by decile. An empty chart still
// renders, with a single empty bar.
func BarChartPNG(w io.Writer, c *dto.ChartPanel, palette domain.Palette) error {
	bars := make([]chart.Value, 0, len(c.Rows))
	for _, r := range c.Rows {
		v := chart.Value{Label: Label(r, c.GroupBy)}
		if r.Decile != nil {
			v.Value = float64(*r.Decile)
			if hex := palette.ColorFor(*r.Decile); hex != "" {
				col := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
				v.Style = chart.Style{FillColor: col, StrokeColor: col}
			}
		}
		bars = append(bars, v)
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: noDataLabel})
	}

	width := 120 + (pngBarWidth+40)*len(bars)
	if width < pngWidth {
		width = pngWidth
	}
	graph := chart.BarChart{
		Title:      c.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		Width:      width,
		Height:     pngHeight,
		BarWidth:   pngBarWidth,
		YAxis: chart.YAxis{
			Name:  "Decile",
			Range: &chart.ContinuousRange{Min: 0, Max: domain.MaxDecile},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("graph.Render: %w", err)
	}
	return nil
}

package watchlist

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/hyuoka/workpal/internal/models"
)

// Chart renders a PNG sparkline of the symbol's close history, with the
// 25-day moving average overlaid when available.
func (s *Service) Chart(ctx context.Context, symbol string) ([]byte, error) {
	symbol = models.CanonicalSymbol(symbol)

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var entry *models.WatchedSymbol
	for i := range list {
		if list[i].Symbol == symbol {
			entry = &list[i]
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("symbol '%s' not found in watchlist", symbol)
	}

	return renderSparkline(entry)
}

// renderSparkline renders the price history chart for one entry.
func renderSparkline(entry *models.WatchedSymbol) ([]byte, error) {
	if len(entry.History) < 2 {
		return nil, fmt.Errorf("need at least 2 history samples for '%s', got %d", entry.Symbol, len(entry.History))
	}

	xValues := make([]float64, len(entry.History))
	for i := range xValues {
		xValues[i] = float64(i)
	}

	priceSeries := chart.ContinuousSeries{
		Name: entry.Symbol,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: entry.History,
	}

	series := []chart.Series{priceSeries}

	if entry.MA25 != nil {
		maY := make([]float64, len(entry.History))
		for i := range maY {
			maY[i] = *entry.MA25
		}
		series = append(series, chart.ContinuousSeries{
			Name: "MA25",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("f59e0b"), // amber-500
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: maY,
		})
	}

	graph := chart.Chart{
		Width:  480,
		Height: 160,
		Background: chart.Style{
			Padding: chart.Box{Top: 10, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

package render

import (
	"math"
	"strings"
	"time"

	"cycle-dashboard/src/analysis/core"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const axisTimeLayout = "01-02 15h"

// -----------------------------------------------------------------------------

// chartFor converts a figure description into a go-chart chart sized for
// the given output. It is the only place figures meet the rendering engine.
func chartFor(fig models.MFigure, size ImageSize) (chart.Chart, error) {
	scale := size.Scale
	xr, yr, empty := axisRanges(fig)

	c := chart.Chart{
		Title:  fig.Title,
		Width:  size.PixelWidth(),
		Height: size.PixelHeight(),
		DPI:    chart.DefaultDPI * scale,
		Background: chart.Style{
			FillColor:   fillColor(fig.PaperBackground),
			StrokeColor: fillColor(fig.PaperBackground),
			Padding: chart.Box{
				Top:    int(48 * scale),
				Left:   int(16 * scale),
				Right:  int(24 * scale),
				Bottom: int(16 * scale),
			},
		},
		Canvas: chart.Style{
			FillColor:   fillColor(fig.PlotBackground),
			StrokeColor: fillColor(fig.PlotBackground),
		},
		XAxis: chart.XAxis{
			Name:           fig.XLabel,
			ValueFormatter: utcTimeFormatter(axisTimeLayout),
			Range:          xr,
		},
		YAxis: chart.YAxis{
			Name:           fig.YLabel,
			ValueFormatter: chart.FloatValueFormatter,
			Range:          yr,
		},
		YAxisSecondary: chart.YAxis{Style: chart.Hidden()},
	}
	if empty {
		c.XAxis.Style = chart.Hidden()
		c.YAxis.Style = chart.Hidden()
	}

	switch fig.Kind {
	case models.FigureKindLine:
		xs, ys := validPoints(fig.Points)
		style := chart.Style{StrokeWidth: 2 * scale}
		if len(xs) == 1 {
			style.DotWidth = 3 * scale
		}
		c.Series = []chart.Series{chart.TimeSeries{
			Name:    fig.YLabel,
			Style:   style,
			XValues: xs,
			YValues: ys,
		}}
	case models.FigureKindHeatmap:
		c.Series = []chart.Series{heatmapSeries{
			Name: fig.ZLabel,
			Grid: fig.Heatmap,
		}}
	default:
		return chart.Chart{}, helpers.NewUnsupportedModeError(models.ErrUnsupportedMode{Value: fig.Kind})
	}

	return c, nil
}

// -----------------------------------------------------------------------------

func validPoints(points []models.MFigurePoint) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Y == nil || math.IsNaN(*p.Y) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, *p.Y)
	}
	return xs, ys
}

// -----------------------------------------------------------------------------

// axisRanges fixes both axes explicitly so empty and single-point figures
// still render; go-chart rejects a zero-width x range.
func axisRanges(fig models.MFigure) (xr, yr *chart.ContinuousRange, empty bool) {
	var (
		xMin, xMax time.Time
		ys         []float64
	)

	if fig.Kind == models.FigureKindHeatmap && fig.Heatmap != nil && len(fig.Heatmap.XEdges) > 1 {
		g := fig.Heatmap
		xMin, xMax = g.XEdges[0], g.XEdges[len(g.XEdges)-1]
		ys = []float64{g.YEdges[0], g.YEdges[len(g.YEdges)-1]}
	} else if len(fig.Points) > 0 {
		xMin, xMax = fig.Points[0].X, fig.Points[len(fig.Points)-1].X
		_, ys = validPoints(fig.Points)
	} else {
		return &chart.ContinuousRange{Min: 0, Max: 1}, &chart.ContinuousRange{Min: -1, Max: 1}, true
	}

	if !xMax.After(xMin) {
		xMin, xMax = xMin.Add(-30*time.Minute), xMax.Add(30*time.Minute)
	}
	xr = &chart.ContinuousRange{Min: chart.TimeToFloat64(xMin), Max: chart.TimeToFloat64(xMax)}

	yMin, yMax, ok := core.MinMax(ys)
	switch {
	case !ok:
		yMin, yMax = -1, 1
	case yMax <= yMin:
		yMin, yMax = yMin-0.5, yMax+0.5
	case fig.Kind == models.FigureKindLine:
		pad := (yMax - yMin) * 0.05
		yMin, yMax = yMin-pad, yMax+pad
	}
	yr = &chart.ContinuousRange{Min: yMin, Max: yMax}

	return xr, yr, false
}

// -----------------------------------------------------------------------------

func utcTimeFormatter(layout string) chart.ValueFormatter {
	return func(v interface{}) string {
		switch typed := v.(type) {
		case time.Time:
			return typed.UTC().Format(layout)
		case float64:
			return time.Unix(0, int64(typed)).UTC().Format(layout)
		case int64:
			return time.Unix(0, typed).UTC().Format(layout)
		default:
			return ""
		}
	}
}

// -----------------------------------------------------------------------------

// fillColor understands the two forms figures carry: the transparent rgba
// fill and "#rrggbb". Anything else renders transparent.
func fillColor(css string) drawing.Color {
	css = strings.TrimSpace(css)
	if strings.HasPrefix(css, "#") && len(css) == 7 {
		return drawing.ColorFromHex(css[1:])
	}
	return drawing.ColorTransparent
}

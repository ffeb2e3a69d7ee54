package render

import (
	"errors"
	"math"
	"time"

	"cycle-dashboard/src/analysis/core"
	"cycle-dashboard/src/models"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// -----------------------------------------------------------------------------

// BinHeatmap buckets (ts[i], y[i]) into a binsX x binsY grid and sums z[i]
// per cell. Bin counts are clamped to the number of samples. Degenerate
// extents are widened so every sample lands in a cell of non-zero size.
func BinHeatmap(ts []time.Time, y, z []float64, binsX, binsY int) *models.MHeatmap {
	n := len(ts)
	grid := &models.MHeatmap{
		XEdges: []time.Time{},
		YEdges: []float64{},
		Z:      [][]float64{},
		Counts: [][]int{},
	}
	if n == 0 {
		return grid
	}

	nx := max(1, min(binsX, n))
	ny := max(1, min(binsY, n))

	x0, x1 := ts[0], ts[n-1]
	if !x1.After(x0) {
		x0, x1 = x0.Add(-30*time.Minute), x1.Add(30*time.Minute)
	}
	y0, y1, ok := core.MinMax(y)
	if !ok {
		y0, y1 = 0, 0
	}
	if y1 <= y0 {
		y0, y1 = y0-0.5, y1+0.5
	}

	xSpan := float64(x1.Sub(x0))
	ySpan := y1 - y0

	grid.XEdges = make([]time.Time, nx+1)
	for k := 0; k <= nx; k++ {
		grid.XEdges[k] = x0.Add(time.Duration(xSpan * float64(k) / float64(nx)))
	}
	grid.XEdges[nx] = x1

	grid.YEdges = make([]float64, ny+1)
	for k := 0; k <= ny; k++ {
		grid.YEdges[k] = y0 + ySpan*float64(k)/float64(ny)
	}
	grid.YEdges[ny] = y1

	grid.Z = make([][]float64, ny)
	grid.Counts = make([][]int, ny)
	for row := range grid.Z {
		grid.Z[row] = make([]float64, nx)
		grid.Counts[row] = make([]int, nx)
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) || math.IsNaN(z[i]) {
			continue
		}
		col := binIndex(float64(ts[i].Sub(x0))/xSpan, nx)
		row := binIndex((y[i]-y0)/ySpan, ny)
		grid.Z[row][col] += z[i]
		grid.Counts[row][col]++
	}

	grid.ZMin, grid.ZMax = math.Inf(1), math.Inf(-1)
	for _, row := range grid.Z {
		for _, v := range row {
			grid.ZMin = math.Min(grid.ZMin, v)
			grid.ZMax = math.Max(grid.ZMax, v)
		}
	}

	return grid
}

// -----------------------------------------------------------------------------

func binIndex(ratio float64, bins int) int {
	idx := int(ratio * float64(bins))
	if idx < 0 {
		return 0
	}
	if idx >= bins {
		return bins - 1
	}
	return idx
}

// -----------------------------------------------------------------------------
// go-chart series
// -----------------------------------------------------------------------------

var _ chart.Series = heatmapSeries{}

// heatmapSeries draws an MHeatmap grid as filled cells colored by Z.
type heatmapSeries struct {
	Name  string
	Style chart.Style
	Grid  *models.MHeatmap
}

func (hs heatmapSeries) GetName() string {
	return hs.Name
}

func (hs heatmapSeries) GetStyle() chart.Style {
	return hs.Style
}

func (hs heatmapSeries) GetYAxis() chart.YAxisType {
	return chart.YAxisPrimary
}

func (hs heatmapSeries) Validate() error {
	if hs.Grid == nil {
		return errors.New("heatmap series must have a grid")
	}
	return nil
}

// -----------------------------------------------------------------------------

func (hs heatmapSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	g := hs.Grid
	if g == nil {
		return
	}
	for row := range g.Z {
		top := canvasBox.Bottom - yrange.Translate(g.YEdges[row+1])
		bottom := canvasBox.Bottom - yrange.Translate(g.YEdges[row])
		for col, v := range g.Z[row] {
			left := canvasBox.Left + xrange.Translate(chart.TimeToFloat64(g.XEdges[col]))
			right := canvasBox.Left + xrange.Translate(chart.TimeToFloat64(g.XEdges[col+1]))
			c := heatColor(v, g.ZMin, g.ZMax)
			chart.Draw.Box(r, chart.Box{Top: top, Left: left, Right: right, Bottom: bottom}, chart.Style{
				FillColor:   c,
				StrokeColor: c,
				StrokeWidth: 1,
			})
		}
	}
}

// -----------------------------------------------------------------------------

// heatColor maps v onto the viridis scale, guarding the flat-grid case.
func heatColor(v, vmin, vmax float64) drawing.Color {
	if !(vmax > vmin) {
		return chart.Viridis(0, 0, 1)
	}
	v = math.Max(vmin, math.Min(vmax, v))
	return chart.Viridis(v, vmin, vmax)
}

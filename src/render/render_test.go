package render

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"cycle-dashboard/src/analysis"
	"cycle-dashboard/src/data_source/synthetic"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"

	chart "github.com/wcharczuk/go-chart/v2"
)

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

func testAdapter() *Adapter {
	log := logger.NewLogger("ERROR", "test")
	log.SetOutput(io.Discard)
	return NewAdapter(Options{HeatmapBinsX: 10, HeatmapBinsY: 5}, log)
}

func derive(t *testing.T, start, end time.Time, mode models.DisplayMode) models.MDerivedSeries {
	t.Helper()
	series := synthetic.Generate("ES", start, end, rand.New(rand.NewPCG(5, 6)), 0.1)
	d, err := analysis.Transform(series, mode)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func smallSize() ImageSize {
	return ImageSize{Width: 200, Height: 100, Scale: 1}
}

func TestBuildFigureLine(t *testing.T) {
	d := derive(t, jan1, jan2, models.ModeLine)
	fig, err := BuildFigure(d, "ES", models.ModeLine, Options{HeatmapBinsX: 4, HeatmapBinsY: 4})
	if err != nil {
		t.Fatal(err)
	}
	if fig.Title != "Cycle ES" || fig.Kind != models.FigureKindLine {
		t.Errorf("title/kind = %q/%q", fig.Title, fig.Kind)
	}
	if fig.PaperBackground != models.TransparentFill || fig.PlotBackground != models.TransparentFill {
		t.Errorf("backgrounds must be transparent: %q %q", fig.PaperBackground, fig.PlotBackground)
	}
	if fig.YLabel != "Value" || len(fig.Points) != 25 || fig.Heatmap != nil {
		t.Errorf("unexpected binding: %q, %d points, heatmap=%v", fig.YLabel, len(fig.Points), fig.Heatmap)
	}
	for i, p := range fig.Points {
		if p.Y == nil || *p.Y != d.Values[i] {
			t.Fatalf("point %d not bound to derived value", i)
		}
	}
}

func TestBuildFigureVolatilityMarksWarmUp(t *testing.T) {
	d := derive(t, jan1, jan2, models.ModeVolatility)
	fig, err := BuildFigure(d, "NQ", models.ModeVolatility, Options{HeatmapBinsX: 4, HeatmapBinsY: 4})
	if err != nil {
		t.Fatal(err)
	}
	if fig.Title != "Volatility NQ" || fig.YLabel != "Vol" {
		t.Errorf("title/label = %q/%q", fig.Title, fig.YLabel)
	}
	for i := 0; i < 23; i++ {
		if fig.Points[i].Y != nil {
			t.Fatalf("point %d should be null", i)
		}
	}
	if fig.Points[23].Y == nil || fig.Points[24].Y == nil {
		t.Fatal("points 23 and 24 should be populated")
	}
}

func TestBuildFigureRiskHeatmap(t *testing.T) {
	d := derive(t, jan1, jan1.Add(72*time.Hour), models.ModeRisk)
	fig, err := BuildFigure(d, "ES", models.ModeRisk, Options{HeatmapBinsX: 12, HeatmapBinsY: 6})
	if err != nil {
		t.Fatal(err)
	}
	if fig.Title != "Risk ES" || fig.Kind != models.FigureKindHeatmap || fig.ZLabel != "Risk" {
		t.Errorf("unexpected header %q %q %q", fig.Title, fig.Kind, fig.ZLabel)
	}
	g := fig.Heatmap
	if len(g.XEdges) != 13 || len(g.YEdges) != 7 || len(g.Z) != 6 || len(g.Z[0]) != 12 {
		t.Fatalf("unexpected grid shape: %d x-edges, %d y-edges, %dx%d cells", len(g.XEdges), len(g.YEdges), len(g.Z), len(g.Z[0]))
	}

	totalZ, totalCount := 0.0, 0
	for row := range g.Z {
		for col := range g.Z[row] {
			totalZ += g.Z[row][col]
			totalCount += g.Counts[row][col]
		}
	}
	wantZ := 0.0
	for _, v := range d.Values {
		wantZ += v
	}
	if totalCount != d.Len() {
		t.Errorf("binned %d samples, want %d", totalCount, d.Len())
	}
	if math.Abs(totalZ-wantZ) > 1e-9 {
		t.Errorf("sum of cells %v, want %v", totalZ, wantZ)
	}
	if g.ZMin > g.ZMax {
		t.Errorf("z bounds inverted: %v > %v", g.ZMin, g.ZMax)
	}
}

func TestBinHeatmapSinglePoint(t *testing.T) {
	g := BinHeatmap([]time.Time{jan1}, []float64{0.3}, []float64{0.3}, 40, 20)
	if len(g.Z) != 1 || len(g.Z[0]) != 1 || g.Counts[0][0] != 1 {
		t.Fatalf("single sample should land in a 1x1 grid: %+v", g)
	}
	if !g.XEdges[1].After(g.XEdges[0]) || !(g.YEdges[1] > g.YEdges[0]) {
		t.Error("degenerate extents must be widened")
	}
}

func TestBuildFigureModeMismatch(t *testing.T) {
	d := derive(t, jan1, jan2, models.ModeLine)
	_, err := BuildFigure(d, "ES", models.ModeRisk, Options{HeatmapBinsX: 4, HeatmapBinsY: 4})
	var modeErr *helpers.UnsupportedModeError
	if !errors.As(err, &modeErr) {
		t.Fatalf("expected UnsupportedModeError, got %v", err)
	}
}

func TestFigureAndImageShareConstruction(t *testing.T) {
	a := testAdapter()
	for _, mode := range models.AllModes() {
		d := derive(t, jan1, jan2, mode)

		fig, err := a.ToFigure(d, "ES", mode)
		if err != nil {
			t.Fatalf("%v: figure: %v", mode, err)
		}
		img, err := a.ToImage(d, "ES", mode, smallSize())
		if err != nil {
			t.Fatalf("%v: image: %v", mode, err)
		}

		if !reflect.DeepEqual(fig, img.Figure) {
			t.Errorf("%v: raster figure differs from interactive figure", mode)
		}

		interactive, err := chartFor(fig, smallSize())
		if err != nil {
			t.Fatal(err)
		}
		raster, err := chartFor(img.Figure, smallSize())
		if err != nil {
			t.Fatal(err)
		}
		if interactive.Title != raster.Title || interactive.Title != fig.Title {
			t.Errorf("%v: titles differ: %q vs %q", mode, interactive.Title, raster.Title)
		}
		if reflect.TypeOf(interactive.Series[0]) != reflect.TypeOf(raster.Series[0]) {
			t.Errorf("%v: chart kinds differ", mode)
		}
		if ts, ok := interactive.Series[0].(chart.TimeSeries); ok {
			rs := raster.Series[0].(chart.TimeSeries)
			if !reflect.DeepEqual(ts.XValues, rs.XValues) || !reflect.DeepEqual(ts.YValues, rs.YValues) {
				t.Errorf("%v: data binding differs", mode)
			}
		}
	}
}

func TestToImageProducesTransparentPNG(t *testing.T) {
	a := testAdapter()
	d := derive(t, jan1, jan2, models.ModeLine)
	img, err := a.ToImage(d, "ES", models.ModeLine, ImageSize{Width: 800, Height: 400, Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if img.ContentType != "image/png" || img.Filename != "ES.png" {
		t.Errorf("content type/filename = %q/%q", img.ContentType, img.Filename)
	}
	decoded, err := png.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		t.Fatalf("not a png: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 1600 || bounds.Dy() != 800 {
		t.Errorf("raster size %dx%d, want 1600x800", bounds.Dx(), bounds.Dy())
	}
	if _, _, _, alpha := decoded.At(0, 0).RGBA(); alpha != 0 {
		t.Errorf("corner pixel should be transparent, alpha=%d", alpha)
	}
}

func TestToImageDegenerateSeries(t *testing.T) {
	a := testAdapter()
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"single point", jan1, jan1},
		{"empty", jan2, jan1},
	}
	for _, tc := range cases {
		for _, mode := range models.AllModes() {
			d := derive(t, tc.start, tc.end, mode)
			img, err := a.ToImage(d, "NQ", mode, smallSize())
			if err != nil {
				t.Fatalf("%s/%v: %v", tc.name, mode, err)
			}
			if len(img.Bytes) == 0 {
				t.Errorf("%s/%v: empty image", tc.name, mode)
			}
		}
	}
}

func TestToSVG(t *testing.T) {
	a := testAdapter()
	d := derive(t, jan1, jan2, models.ModeRisk)
	fig, err := a.ToFigure(d, "ES", models.ModeRisk)
	if err != nil {
		t.Fatal(err)
	}
	svg, err := a.ToSVG(fig, smallSize())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "Risk ES") {
		t.Errorf("unexpected svg output: %.80s", svg)
	}
}

func TestRenderFailureIsRenderUnavailable(t *testing.T) {
	a := testAdapter()
	d := derive(t, jan1, jan2, models.ModeLine)

	a.rasterizer = func(int, int) (chart.Renderer, error) {
		return nil, errors.New("engine missing")
	}
	_, err := a.ToImage(d, "ES", models.ModeLine, smallSize())
	var renderErr *helpers.RenderUnavailableError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderUnavailableError, got %v", err)
	}

	a.rasterizer = func(int, int) (chart.Renderer, error) {
		panic("font cache corrupted")
	}
	_, err = a.ToImage(d, "ES", models.ModeLine, smallSize())
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderUnavailableError after panic, got %v", err)
	}
}

func TestImageSizeValidate(t *testing.T) {
	valid := []ImageSize{{800, 400, 2}, {32, 32, 0.5}, {16, 16, 1}, {4096, 4096, 2}}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("%+v should be valid: %v", s, err)
		}
	}
	invalid := []ImageSize{{0, 400, 2}, {800, -1, 2}, {800, 400, 0}, {800, 400, 5}, {5000, 400, 1}, {800, 400, math.NaN()},
		{800, 400, 0.001}, {10, 10, 1}, {800, 20, 0.5}}
	for _, s := range invalid {
		var reqErr *helpers.InvalidRequestError
		if err := s.Validate(); !errors.As(err, &reqErr) {
			t.Errorf("%+v should be rejected, got %v", s, err)
		}
	}
}

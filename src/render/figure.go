package render

import (
	"fmt"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
)

// Options tunes figure construction.
type Options struct {
	HeatmapBinsX int
	HeatmapBinsY int
}

func OptionsFromConfig(cfg models.MRenderConfig) Options {
	return Options{
		HeatmapBinsX: cfg.HeatmapBinsX,
		HeatmapBinsY: cfg.HeatmapBinsY,
	}
}

// -----------------------------------------------------------------------------

// Title is "<ChartKind> <symbol>".
func Title(mode models.DisplayMode, symbol string) string {
	return fmt.Sprintf("%s %s", mode.ChartKind(), symbol)
}

// -----------------------------------------------------------------------------

// BuildFigure is the single chart-description path. Both presenters consume
// its output, so a label or binding change shows up in both identically.
func BuildFigure(derived models.MDerivedSeries, symbol string, mode models.DisplayMode, opts Options) (models.MFigure, error) {
	if derived.Mode != mode {
		return models.MFigure{}, helpers.NewUnsupportedModeError(
			fmt.Errorf("series was derived for %s, figure requested for %s", derived.Mode, mode))
	}

	fig := models.MFigure{
		Title:           Title(mode, symbol),
		Symbol:          symbol,
		Mode:            mode,
		XLabel:          "Date",
		PaperBackground: models.TransparentFill,
		PlotBackground:  models.TransparentFill,
	}

	switch mode {
	case models.ModeLine, models.ModeVolatility:
		fig.Kind = models.FigureKindLine
		fig.YLabel = derived.Label
		fig.Points = make([]models.MFigurePoint, derived.Len())
		for i, ts := range derived.Timestamps {
			fig.Points[i] = models.MFigurePoint{X: ts}
			if !derived.Missing(i) {
				v := derived.Values[i]
				fig.Points[i].Y = &v
			}
		}
	case models.ModeRisk:
		// density of the (timestamp, raw value) plane weighted by risk
		fig.Kind = models.FigureKindHeatmap
		fig.YLabel = models.ModeLine.Label()
		fig.ZLabel = derived.Label
		fig.Points = make([]models.MFigurePoint, derived.Len())
		for i, ts := range derived.Timestamps {
			v := derived.Raw[i]
			fig.Points[i] = models.MFigurePoint{X: ts, Y: &v}
		}
		fig.Heatmap = BinHeatmap(derived.Timestamps, derived.Raw, derived.Values, opts.HeatmapBinsX, opts.HeatmapBinsY)
	default:
		return models.MFigure{}, helpers.NewUnsupportedModeError(models.ErrUnsupportedMode{Value: mode.String()})
	}

	return fig, nil
}

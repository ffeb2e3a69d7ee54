package pipeline

import (
	"context"
	"time"

	"cycle-dashboard/src/analysis"
	"cycle-dashboard/src/interfaces"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/render"
)

// -----------------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------------

// Pipeline runs source -> transform -> render for a query. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	Source   interfaces.IDataSource
	Adapter  *render.Adapter
	Logger   *logger.Logger
	Defaults QueryDefaults

	// ViewSize sizes the SVG of interactive views, ImageSize the default PNG.
	ViewSize  render.ImageSize
	ImageSize render.ImageSize

	now func() time.Time
}

// View is what the interactive page displays for one refresh.
type View struct {
	Figure models.MFigure
	SVG    string
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg *models.MConfig, source interfaces.IDataSource, adapter *render.Adapter, log *logger.Logger) *Pipeline {
	imageSize := render.ImageSizeFromConfig(cfg.Render)
	return &Pipeline{
		Source:    source,
		Adapter:   adapter,
		Logger:    log.Named("Pipeline"),
		Defaults:  DefaultsFromConfig(cfg),
		ViewSize:  render.ImageSize{Width: imageSize.Width, Height: imageSize.Height, Scale: 1},
		ImageSize: imageSize,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// Parse resolves raw against the configured defaults and the current date.
func (p *Pipeline) Parse(raw RawQuery) (models.MQuerySpec, error) {
	return ParseQuery(raw, p.Defaults, p.now())
}

// -----------------------------------------------------------------------------

func (p *Pipeline) Derive(ctx context.Context, q models.MQuerySpec) (models.MDerivedSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.MDerivedSeries{}, err
	}
	series, err := p.Source.FetchSeries(q.Symbol, q.Start, q.End)
	if err != nil {
		return models.MDerivedSeries{}, err
	}
	derived, err := analysis.Transform(series, q.Mode)
	if err != nil {
		return models.MDerivedSeries{}, err
	}
	p.Logger.Debug("%s %s: %d samples from %s, %d valid", q.Symbol, q.Mode, derived.Len(), p.Source.Name(), derived.ValidCount())
	return derived, nil
}

// -----------------------------------------------------------------------------

func (p *Pipeline) Figure(ctx context.Context, q models.MQuerySpec) (models.MFigure, error) {
	derived, err := p.Derive(ctx, q)
	if err != nil {
		return models.MFigure{}, err
	}
	return p.Adapter.ToFigure(derived, q.Symbol, q.Mode)
}

// -----------------------------------------------------------------------------

// InteractiveView returns the figure description plus its SVG drawing.
func (p *Pipeline) InteractiveView(ctx context.Context, q models.MQuerySpec) (View, error) {
	fig, err := p.Figure(ctx, q)
	if err != nil {
		return View{}, err
	}
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	svg, err := p.Adapter.ToSVG(fig, p.ViewSize)
	if err != nil {
		return View{}, err
	}
	return View{Figure: fig, SVG: svg}, nil
}

// -----------------------------------------------------------------------------

// Image rasterizes the query. A zero size uses the configured default.
func (p *Pipeline) Image(ctx context.Context, q models.MQuerySpec, size render.ImageSize) (models.MImage, error) {
	if size == (render.ImageSize{}) {
		size = p.ImageSize
	}
	if err := size.Validate(); err != nil {
		return models.MImage{}, err
	}
	derived, err := p.Derive(ctx, q)
	if err != nil {
		return models.MImage{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.MImage{}, err
	}
	return p.Adapter.ToImage(derived, q.Symbol, q.Mode, size)
}

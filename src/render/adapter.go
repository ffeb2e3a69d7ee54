package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	ContentTypePNG = "image/png"

	MaxImageSide   = 4096
	MaxImageScale  = 4.0
	MinImagePixels = 16
)

// -----------------------------------------------------------------------------

// ImageSize is the logical size of an output plus its device-pixel ratio.
type ImageSize struct {
	Width  int
	Height int
	Scale  float64
}

func ImageSizeFromConfig(cfg models.MRenderConfig) ImageSize {
	return ImageSize{Width: cfg.Width, Height: cfg.Height, Scale: cfg.Scale}
}

func (s ImageSize) PixelWidth() int {
	return int(math.Round(float64(s.Width) * s.Scale))
}

func (s ImageSize) PixelHeight() int {
	return int(math.Round(float64(s.Height) * s.Scale))
}

// Validate bounds the output so a request cannot allocate an arbitrary bitmap.
func (s ImageSize) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > MaxImageSide || s.Height > MaxImageSide {
		return helpers.NewInvalidRequestError("image size %dx%d out of bounds (1..%d)", s.Width, s.Height, MaxImageSide)
	}
	if !(s.Scale > 0) || s.Scale > MaxImageScale {
		return helpers.NewInvalidRequestError("image scale %v out of bounds (0..%v]", s.Scale, MaxImageScale)
	}
	if s.PixelWidth() > MaxImageSide*2 || s.PixelHeight() > MaxImageSide*2 {
		return helpers.NewInvalidRequestError("rasterized size %dx%d too large", s.PixelWidth(), s.PixelHeight())
	}
	if s.PixelWidth() < MinImagePixels || s.PixelHeight() < MinImagePixels {
		return helpers.NewInvalidRequestError("rasterized size %dx%d too small (min %d)", s.PixelWidth(), s.PixelHeight(), MinImagePixels)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Adapter
// -----------------------------------------------------------------------------

// Adapter presents derived series either as an interactive figure (JSON
// description plus SVG) or as a PNG. Both go through BuildFigure and chartFor.
type Adapter struct {
	Options Options
	Logger  *logger.Logger

	rasterizer chart.RendererProvider
	vectorizer chart.RendererProvider
}

func NewAdapter(opts Options, log *logger.Logger) *Adapter {
	return &Adapter{
		Options:    opts,
		Logger:     log.Named("Render"),
		rasterizer: chart.PNG,
		vectorizer: chart.SVG,
	}
}

// -----------------------------------------------------------------------------

// ToFigure builds the interactive chart description.
func (a *Adapter) ToFigure(derived models.MDerivedSeries, symbol string, mode models.DisplayMode) (models.MFigure, error) {
	return BuildFigure(derived, symbol, mode, a.Options)
}

// -----------------------------------------------------------------------------

// ToSVG draws fig as an SVG document for embedding in the page.
func (a *Adapter) ToSVG(fig models.MFigure, size ImageSize) (string, error) {
	out, err := a.draw(fig, size, a.vectorizer)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// -----------------------------------------------------------------------------

// ToImage builds the same figure as ToFigure and rasterizes it.
func (a *Adapter) ToImage(derived models.MDerivedSeries, symbol string, mode models.DisplayMode, size ImageSize) (models.MImage, error) {
	fig, err := a.ToFigure(derived, symbol, mode)
	if err != nil {
		return models.MImage{}, err
	}
	return a.Rasterize(fig, size)
}

// -----------------------------------------------------------------------------

// Rasterize renders fig to PNG at size.Width*Scale x size.Height*Scale.
func (a *Adapter) Rasterize(fig models.MFigure, size ImageSize) (models.MImage, error) {
	if err := size.Validate(); err != nil {
		return models.MImage{}, err
	}
	out, err := a.draw(fig, size, a.rasterizer)
	if err != nil {
		return models.MImage{}, err
	}
	return models.MImage{
		Figure:      fig,
		Width:       size.Width,
		Height:      size.Height,
		Scale:       size.Scale,
		ContentType: ContentTypePNG,
		Filename:    fig.Symbol + ".png",
		Bytes:       out,
	}, nil
}

// -----------------------------------------------------------------------------

func (a *Adapter) draw(fig models.MFigure, size ImageSize, provider chart.RendererProvider) (out []byte, err error) {
	c, err := chartFor(fig, size)
	if err != nil {
		return nil, err
	}

	// the engine panics on some font and path failures
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, helpers.NewRenderUnavailableError(fmt.Errorf("renderer panic: %v", r))
		}
	}()

	started := time.Now()
	var buf bytes.Buffer
	if err := c.Render(provider, &buf); err != nil {
		return nil, helpers.NewRenderUnavailableError(err)
	}
	if buf.Len() == 0 {
		return nil, helpers.NewRenderUnavailableError(fmt.Errorf("renderer produced no output"))
	}
	a.Logger.Debug("Rendered %q (%s) %dx%d in %v", fig.Title, fig.Kind, c.Width, c.Height, time.Since(started))
	return buf.Bytes(), nil
}

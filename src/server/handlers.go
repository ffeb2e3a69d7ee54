package server

import (
	"embed"
	"fmt"
	"net/http"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"
	"cycle-dashboard/src/render"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var pageFS embed.FS

// modeOption is one entry of the display-mode selector.
type modeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func modeOptions() []modeOption {
	modes := models.AllModes()
	options := make([]modeOption, 0, len(modes))
	for _, m := range modes {
		options = append(options, modeOption{Value: m.String(), Label: m.UILabel()})
	}
	return options
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getPage(c *gin.Context) {
	start, end := pipeline.DefaultRange(time.Now(), s.Config.UI.DefaultRangeDays)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Symbol":      s.Config.UI.DefaultSymbol,
		"Start":       start.Format(time.DateOnly),
		"End":         end.Format(time.DateOnly),
		"Modes":       modeOptions(),
		"DefaultMode": models.ModeLine.String(),
	})
}

// -----------------------------------------------------------------------------

// getPNG serves the raster presentation. Errors never carry image bytes.
func (s *DashboardServer) getPNG(c *gin.Context) {
	var raw pipeline.RawQuery
	if err := c.ShouldBindQuery(&raw); err != nil {
		s.abortWithError(c, helpers.NewInvalidRequestError("invalid query: %v", err))
		return
	}

	q, err := s.Pipeline.Parse(raw)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	img, err := s.Pipeline.Image(c.Request.Context(), q, render.ImageSize{})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, img.ContentType, img.Bytes)
}

// -----------------------------------------------------------------------------

// postFigure is the request/response form of a websocket refresh.
func (s *DashboardServer) postFigure(c *gin.Context) {
	var raw pipeline.RawQuery
	if err := c.ShouldBindJSON(&raw); err != nil {
		s.abortWithError(c, helpers.NewInvalidRequestError("invalid body: %v", err))
		return
	}

	view, err := s.refresh(c.Request.Context(), raw)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MFigureMessage{
		Type:   models.MessageTypeFigure,
		Figure: view.Figure,
		SVG:    view.SVG,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes":              modeOptions(),
		"default_symbol":     s.Config.UI.DefaultSymbol,
		"default_range_days": s.Config.UI.DefaultRangeDays,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"sessions":       s.Sessions(),
		"errors":         s.ErrorHandler.ErrorCount(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func (s *DashboardServer) abortWithError(c *gin.Context, err error) {
	s.ErrorHandler.Handle(err, fmt.Sprintf("%s %s [%s]", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey)))
	c.AbortWithStatusJSON(helpers.HTTPStatus(err), models.MErrorMessage{
		Type:    models.MessageTypeError,
		Message: err.Error(),
	})
}

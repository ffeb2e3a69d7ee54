package models

import "time"

const (
	FigureKindLine    = "line"
	FigureKindHeatmap = "heatmap"

	// TransparentFill is used for both the paper and the plot area so the
	// figure composites over the host page.
	TransparentFill = "rgba(0,0,0,0)"
)

// -----------------------------------------------------------------------------

// MFigurePoint is one bound data point. Value is nil where the derived
// series is undefined.
type MFigurePoint struct {
	X time.Time `json:"x"`
	Y *float64  `json:"y"`
}

// MHeatmap is a 2-D binning of (timestamp, raw value). Z[row][col] sums the
// risk values falling in the cell; rows follow YEdges, columns XEdges.
type MHeatmap struct {
	XEdges []time.Time `json:"x_edges"`
	YEdges []float64   `json:"y_edges"`
	Z      [][]float64 `json:"z"`
	Counts [][]int     `json:"counts"`
	ZMin   float64     `json:"z_min"`
	ZMax   float64     `json:"z_max"`
}

// MFigure is the chart description shared by the interactive and the raster
// presenters.
type MFigure struct {
	Kind            string         `json:"kind"`
	Title           string         `json:"title"`
	Symbol          string         `json:"symbol"`
	Mode            DisplayMode    `json:"mode"`
	XLabel          string         `json:"x_label"`
	YLabel          string         `json:"y_label"`
	ZLabel          string         `json:"z_label,omitempty"`
	Points          []MFigurePoint `json:"points"`
	Heatmap         *MHeatmap      `json:"heatmap,omitempty"`
	PaperBackground string         `json:"paper_bgcolor"`
	PlotBackground  string         `json:"plot_bgcolor"`
}

// -----------------------------------------------------------------------------

// MImage is a rasterized figure ready to be written to a response.
type MImage struct {
	Figure      MFigure `json:"figure"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Scale       float64 `json:"scale"`
	ContentType string  `json:"content_type"`
	Filename    string  `json:"filename"`
	Bytes       []byte  `json:"-"`
}

package models

// -----------------------------------------------------------------------------
// Interactive channel messages
// -----------------------------------------------------------------------------

const (
	CommandRefresh = "refresh"

	MessageTypeFigure = "FIGURE"
	MessageTypeError  = "ERROR"
)

// MRefreshCommand is sent by the page when the refresh control is activated.
// Fields carry raw widget values; parsing happens server side.
type MRefreshCommand struct {
	Command string `json:"command"`
	Symbol  string `json:"symbol"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Mode    string `json:"mode"`
}

// MFigureMessage replaces the figure currently displayed by the client.
type MFigureMessage struct {
	Type   string  `json:"type"`
	Figure MFigure `json:"figure"`
	SVG    string  `json:"svg"`
}

// MErrorMessage reports a failed refresh; the previous figure stays live.
type MErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

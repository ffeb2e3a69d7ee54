package models

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------

// DisplayMode selects how a series is derived and drawn. The set is closed:
// every switch over it ends with an explicit unsupported branch.
type DisplayMode int

const (
	ModeLine DisplayMode = iota + 1
	ModeVolatility
	ModeRisk
)

// -----------------------------------------------------------------------------

// ErrUnsupportedMode is returned for any value outside the DisplayMode set.
// Callers usually receive it wrapped in helpers.UnsupportedModeError.
type ErrUnsupportedMode struct {
	Value string
}

func (e ErrUnsupportedMode) Error() string {
	return fmt.Sprintf("unsupported display mode %q", e.Value)
}

// -----------------------------------------------------------------------------

// AllModes lists the modes in the order the UI offers them.
func AllModes() []DisplayMode {
	return []DisplayMode{ModeLine, ModeVolatility, ModeRisk}
}

// ParseDisplayMode accepts the wire values "line", "vol" and "risk".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line":
		return ModeLine, nil
	case "vol":
		return ModeVolatility, nil
	case "risk":
		return ModeRisk, nil
	default:
		return 0, ErrUnsupportedMode{Value: s}
	}
}

// -----------------------------------------------------------------------------

func (m DisplayMode) Valid() bool {
	switch m {
	case ModeLine, ModeVolatility, ModeRisk:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (m DisplayMode) String() string {
	switch m {
	case ModeLine:
		return "line"
	case ModeVolatility:
		return "vol"
	case ModeRisk:
		return "risk"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
}

// Label is the name of the derived value column.
func (m DisplayMode) Label() string {
	switch m {
	case ModeLine:
		return "Value"
	case ModeVolatility:
		return "Vol"
	case ModeRisk:
		return "Risk"
	default:
		return ""
	}
}

// ChartKind is the leading word of the chart title.
func (m DisplayMode) ChartKind() string {
	switch m {
	case ModeLine:
		return "Cycle"
	case ModeVolatility:
		return "Volatility"
	case ModeRisk:
		return "Risk"
	default:
		return ""
	}
}

// UILabel is the text shown next to the mode selector.
func (m DisplayMode) UILabel() string {
	switch m {
	case ModeLine:
		return "Curve"
	case ModeVolatility:
		return "Volatility"
	case ModeRisk:
		return "Risk Heatmap"
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------

func (m DisplayMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, ErrUnsupportedMode{Value: m.String()}
	}
	return []byte(m.String()), nil
}

func (m *DisplayMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDisplayMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

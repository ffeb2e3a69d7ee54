package models

import (
	"strings"
	"time"
)

const DefaultSymbol = "ES"

// MQuerySpec is the immutable input of one pipeline run. It is built once per
// trigger and passed by value.
type MQuerySpec struct {
	Symbol string      `json:"symbol"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Mode   DisplayMode `json:"mode"`
}

func NewQuerySpec(symbol string, start, end time.Time, mode DisplayMode) MQuerySpec {
	return MQuerySpec{
		Symbol: NormalizeSymbol(symbol),
		Start:  start.UTC(),
		End:    end.UTC(),
		Mode:   mode,
	}
}

// NormalizeSymbol trims and uppercases; blank input falls back to DefaultSymbol.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return DefaultSymbol
	}
	return symbol
}

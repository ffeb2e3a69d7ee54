package pipeline

import (
	"strings"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
)

// dateLayouts are tried in order when parsing a range bound.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// RawQuery carries the unparsed widget or query-string values of one request.
type RawQuery struct {
	Symbol string `json:"symbol" form:"symbol"`
	Start  string `json:"start" form:"start"`
	End    string `json:"end" form:"end"`
	Mode   string `json:"mode" form:"mode"`
}

// QueryDefaults fills the blanks of a RawQuery.
type QueryDefaults struct {
	Symbol    string
	RangeDays int
	Mode      models.DisplayMode
}

func DefaultsFromConfig(cfg *models.MConfig) QueryDefaults {
	return QueryDefaults{
		Symbol:    cfg.UI.DefaultSymbol,
		RangeDays: cfg.UI.DefaultRangeDays,
		Mode:      models.ModeLine,
	}
}

// -----------------------------------------------------------------------------

// ParseQuery validates raw and resolves defaults against now. Malformed dates
// are InvalidRequestError, unknown modes UnsupportedModeError. A start after
// end is accepted and later yields an empty series.
func ParseQuery(raw RawQuery, defaults QueryDefaults, now time.Time) (models.MQuerySpec, error) {
	mode := defaults.Mode
	if !mode.Valid() {
		mode = models.ModeLine
	}
	if strings.TrimSpace(raw.Mode) != "" {
		parsed, err := models.ParseDisplayMode(raw.Mode)
		if err != nil {
			return models.MQuerySpec{}, helpers.NewUnsupportedModeError(err)
		}
		mode = parsed
	}

	defStart, defEnd := DefaultRange(now, defaults.RangeDays)

	start, err := parseBound("start", raw.Start, defStart)
	if err != nil {
		return models.MQuerySpec{}, err
	}
	end, err := parseBound("end", raw.End, defEnd)
	if err != nil {
		return models.MQuerySpec{}, err
	}

	symbol := raw.Symbol
	if strings.TrimSpace(symbol) == "" {
		symbol = defaults.Symbol
	}

	return models.NewQuerySpec(symbol, start, end, mode), nil
}

// -----------------------------------------------------------------------------

// DefaultRange is [today-days, today] at UTC midnight.
func DefaultRange(now time.Time, days int) (time.Time, time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days), today
}

// -----------------------------------------------------------------------------

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp. Zone-less values are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseBound(name, value string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, helpers.NewInvalidRequestError("invalid %s date %q: expected YYYY-MM-DD or RFC3339", name, value)
	}
	return t, nil
}

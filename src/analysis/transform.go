package analysis

import (
	"cycle-dashboard/src/analysis/core"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
)

// VolatilityWindow is the trailing sample count of the rolling std.
const VolatilityWindow = 24

// -----------------------------------------------------------------------------

// Transform derives the series shown for mode. The input is not modified.
func Transform(series models.MTimeSeries, mode models.DisplayMode) (models.MDerivedSeries, error) {
	raw := series.Values()
	derived := models.MDerivedSeries{
		Mode:       mode,
		Label:      mode.Label(),
		Timestamps: series.Timestamps(),
		Raw:        raw,
	}

	switch mode {
	case models.ModeLine:
		derived.Values = append([]float64(nil), raw...)
		derived.Valid = allValid(len(raw))
	case models.ModeVolatility:
		derived.Values, derived.Valid = core.RollingStd(raw, VolatilityWindow)
	case models.ModeRisk:
		derived.Values = core.AbsValues(raw)
		derived.Valid = allValid(len(raw))
	default:
		return models.MDerivedSeries{}, helpers.NewUnsupportedModeError(models.ErrUnsupportedMode{Value: mode.String()})
	}

	return derived, nil
}

// -----------------------------------------------------------------------------

func allValid(n int) []bool {
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	return valid
}

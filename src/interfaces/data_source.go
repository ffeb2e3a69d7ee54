package interfaces

import (
	"time"

	"cycle-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource produces the raw hourly series for a symbol and date range.
// A market-data adapter replaces the synthetic source behind this contract.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries returns one sample per step over [start, end]. start after
	// end yields an empty series, not an error.
	FetchSeries(symbol string, start, end time.Time) (models.MTimeSeries, error)
}

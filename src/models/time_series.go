package models

import "time"

// MSample is one observation of a series.
type MSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MTimeSeries is a gap-free, fixed-step series over the closed interval
// [Start, End]. Timestamps are strictly increasing.
type MTimeSeries struct {
	Symbol  string        `json:"symbol"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Step    time.Duration `json:"step"`
	Samples []MSample     `json:"samples"`
}

// -----------------------------------------------------------------------------

func (s MTimeSeries) Len() int {
	return len(s.Samples)
}

// -----------------------------------------------------------------------------

func (s MTimeSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = p.Timestamp
	}
	return out
}

// -----------------------------------------------------------------------------

func (s MTimeSeries) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, p := range s.Samples {
		out[i] = p.Value
	}
	return out
}

// -----------------------------------------------------------------------------

// MDerivedSeries is a transformed series on the same timestamp domain as its
// source. Entries with Valid[i] == false carry NaN in Values and mark the
// rolling-window warm-up.
type MDerivedSeries struct {
	Mode       DisplayMode `json:"mode"`
	Label      string      `json:"label"`
	Timestamps []time.Time `json:"timestamps"`
	Raw        []float64   `json:"raw"`
	Values     []float64   `json:"-"`
	Valid      []bool      `json:"valid"`
}

// -----------------------------------------------------------------------------

func (d MDerivedSeries) Len() int {
	return len(d.Timestamps)
}

// -----------------------------------------------------------------------------

// Missing reports whether entry i has no defined value.
func (d MDerivedSeries) Missing(i int) bool {
	return !d.Valid[i]
}

// -----------------------------------------------------------------------------

func (d MDerivedSeries) ValidCount() int {
	n := 0
	for _, ok := range d.Valid {
		if ok {
			n++
		}
	}
	return n
}

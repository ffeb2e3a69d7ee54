package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
)

// Step is the fixed sampling frequency of generated series.
const Step = time.Hour

// -----------------------------------------------------------------------------

// SyntheticSource generates placeholder "financial cycle" data: a sine sweep
// plus Gaussian noise. The symbol does not influence the values.
type SyntheticSource struct {
	Config *models.MGeneratorConfig
}

// -----------------------------------------------------------------------------

func NewSyntheticSource(cfg *models.MGeneratorConfig) *SyntheticSource {
	return &SyntheticSource{Config: cfg}
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// -----------------------------------------------------------------------------

// FetchSeries implements interfaces.IDataSource. Each call owns its random
// source: a non-zero seed makes identical requests return identical series.
func (s *SyntheticSource) FetchSeries(symbol string, start, end time.Time) (models.MTimeSeries, error) {
	n := PointCount(start, end)
	if s.Config.MaxPoints > 0 && n > s.Config.MaxPoints {
		return models.MTimeSeries{}, helpers.NewInvalidRangeError(
			"range %s..%s spans %d hourly points, limit is %d",
			start.Format(time.RFC3339), end.Format(time.RFC3339), n, s.Config.MaxPoints)
	}
	return Generate(symbol, start, end, s.newRand(), s.Config.NoiseScale), nil
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) newRand() *rand.Rand {
	if s.Config.Seed != 0 {
		seed := uint64(s.Config.Seed)
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// -----------------------------------------------------------------------------

// PointCount is the number of hourly steps in the closed interval
// [start, end], zero when start is after end.
func PointCount(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	if d := end.Sub(start); d < time.Duration(math.MaxInt64) {
		return int(d/Step) + 1
	}
	// Sub saturates past ~292 years
	return int((end.Unix()-start.Unix())/int64(Step/time.Second)) + 1
}

// -----------------------------------------------------------------------------

// Generate builds the series: value[i] = sin(i*10/(N-1)) + N(0, noiseScale).
// With a single point the sine phase is 0.
func Generate(symbol string, start, end time.Time, rng *rand.Rand, noiseScale float64) models.MTimeSeries {
	start, end = start.UTC(), end.UTC()
	n := PointCount(start, end)

	series := models.MTimeSeries{
		Symbol:  symbol,
		Start:   start,
		End:     end,
		Step:    Step,
		Samples: make([]models.MSample, n),
	}

	for i := 0; i < n; i++ {
		phase := 0.0
		if n > 1 {
			phase = float64(i) * 10 / float64(n-1)
		}
		series.Samples[i] = models.MSample{
			Timestamp: start.Add(time.Duration(i) * Step),
			Value:     math.Sin(phase) + rng.NormFloat64()*noiseScale,
		}
	}

	return series
}

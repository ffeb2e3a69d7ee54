package analysis

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"cycle-dashboard/src/analysis/core"
	"cycle-dashboard/src/data_source/synthetic"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"
)

func oneDaySeries() models.MTimeSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return synthetic.Generate("ES", start, end, rand.New(rand.NewPCG(3, 4)), 0.1)
}

func TestTransformLineIsIdentity(t *testing.T) {
	series := oneDaySeries()
	d, err := Transform(series, models.ModeLine)
	if err != nil {
		t.Fatal(err)
	}
	if d.Label != "Value" {
		t.Errorf("label = %q", d.Label)
	}
	if d.Len() != series.Len() {
		t.Fatalf("len %d, want %d", d.Len(), series.Len())
	}
	for i, p := range series.Samples {
		if d.Values[i] != p.Value || !d.Valid[i] {
			t.Fatalf("index %d changed: %v vs %v", i, d.Values[i], p.Value)
		}
		if !d.Timestamps[i].Equal(p.Timestamp) {
			t.Fatalf("timestamp %d changed", i)
		}
	}
}

func TestTransformVolatilityScenario(t *testing.T) {
	series := oneDaySeries()
	d, err := Transform(series, models.ModeVolatility)
	if err != nil {
		t.Fatal(err)
	}
	if d.Label != "Vol" {
		t.Errorf("label = %q", d.Label)
	}
	if d.Len() != 25 {
		t.Fatalf("len %d, want 25", d.Len())
	}
	for i := 0; i <= 22; i++ {
		if !d.Missing(i) {
			t.Errorf("index %d should be undefined", i)
		}
		if !math.IsNaN(d.Values[i]) {
			t.Errorf("index %d should read as NaN", i)
		}
	}
	raw := series.Values()
	for i := 23; i <= 24; i++ {
		if d.Missing(i) {
			t.Fatalf("index %d should be populated", i)
		}
		_, want := core.CalculateMeanStd(raw[i-23:i+1], 1)
		if math.Abs(d.Values[i]-want) > 1e-12 {
			t.Errorf("index %d: got %v want %v", i, d.Values[i], want)
		}
		if d.Values[i] <= 0 {
			t.Errorf("index %d: std should be positive for noisy data", i)
		}
	}
}

func TestTransformRiskIsAbsoluteValue(t *testing.T) {
	series := oneDaySeries()
	d, err := Transform(series, models.ModeRisk)
	if err != nil {
		t.Fatal(err)
	}
	if d.Label != "Risk" {
		t.Errorf("label = %q", d.Label)
	}
	for i, p := range series.Samples {
		if d.Values[i] != math.Abs(p.Value) {
			t.Fatalf("index %d: got %v want %v", i, d.Values[i], math.Abs(p.Value))
		}
		if d.Raw[i] != p.Value {
			t.Fatalf("raw value %d not preserved", i)
		}
	}
}

func TestTransformUnsupportedMode(t *testing.T) {
	_, err := Transform(oneDaySeries(), models.DisplayMode(42))
	var modeErr *helpers.UnsupportedModeError
	if !errors.As(err, &modeErr) {
		t.Fatalf("expected UnsupportedModeError, got %v", err)
	}
}

func TestTransformEmptySeries(t *testing.T) {
	for _, mode := range models.AllModes() {
		d, err := Transform(models.MTimeSeries{}, mode)
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}
		if d.Len() != 0 || d.ValidCount() != 0 {
			t.Errorf("%v: expected empty derived series", mode)
		}
	}
}

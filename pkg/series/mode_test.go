package series

import (
	"math"
	"testing"

	"github.com/matzehuels/barstack/pkg/errors"
)

func TestValidateMode(t *testing.T) {
	for _, mode := range []Mode{ModeBasic, ModeClustered, ModeStacked, ModeStacked100} {
		if err := ValidateMode(mode); err != nil {
			t.Errorf("ValidateMode(%q) error: %v", mode, err)
		}
	}

	err := ValidateMode("grouped")
	if !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("ValidateMode(grouped) = %v, want code %v", err, errors.ErrCodeInvalidMode)
	}
}

func TestModeStacked(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeBasic, false},
		{ModeClustered, false},
		{ModeStacked, true},
		{ModeStacked100, true},
	}
	for _, tt := range tests {
		if got := tt.mode.Stacked(); got != tt.want {
			t.Errorf("%q.Stacked() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestModeAllowsWhiskers(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeBasic, true},
		{ModeClustered, true},
		{ModeStacked, false},
		{ModeStacked100, false},
	}
	for _, tt := range tests {
		if got := tt.mode.AllowsWhiskers(); got != tt.want {
			t.Errorf("%q.AllowsWhiskers() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestResolveSeriesBasic(t *testing.T) {
	rows := []NormalizedRow{
		{Index: 0, Label: "a", Values: []float64{3}},
		{Index: 1, Label: "b", Values: []float64{5}},
	}

	count, resolved, err := ResolveSeries(rows, ModeBasic)
	if err != nil {
		t.Fatalf("ResolveSeries() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(resolved) != 2 {
		t.Errorf("resolved %d rows, want 2", len(resolved))
	}
}

func TestResolveSeriesBasicRejectsMultiValue(t *testing.T) {
	rows := []NormalizedRow{{Values: []float64{1, 2}}}
	_, _, err := ResolveSeries(rows, ModeBasic)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeInvalidConfig)
	}
}

func TestResolveSeriesInvalidMode(t *testing.T) {
	rows := []NormalizedRow{{Values: []float64{1}}}
	_, _, err := ResolveSeries(rows, "grouped")
	if !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeInvalidMode)
	}
}

func TestResolveSeriesStacked100(t *testing.T) {
	rows := []NormalizedRow{
		{Index: 0, Values: []float64{1, 3}},
		{Index: 1, Values: []float64{2, 2}},
	}

	count, resolved, err := ResolveSeries(rows, ModeStacked100)
	if err != nil {
		t.Fatalf("ResolveSeries() error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	for i, r := range resolved {
		var sum float64
		for _, v := range r.Values {
			sum += v
		}
		if math.Abs(sum-100) > 1e-9 {
			t.Errorf("row %d sums to %v, want 100", i, sum)
		}
	}
	if math.Abs(resolved[0].Values[0]-25) > 1e-9 || math.Abs(resolved[0].Values[1]-75) > 1e-9 {
		t.Errorf("row 0 = %v, want [25 75]", resolved[0].Values)
	}
}

func TestResolveSeriesStacked100ZeroSum(t *testing.T) {
	rows := []NormalizedRow{{Index: 0, Values: []float64{0, 0, 0}}}

	_, resolved, err := ResolveSeries(rows, ModeStacked100)
	if err != nil {
		t.Fatalf("ResolveSeries() error: %v", err)
	}
	for i, v := range resolved[0].Values {
		if v != 0 {
			t.Errorf("value %d = %v, want 0", i, v)
		}
	}
}

func TestResolveSeriesDoesNotMutateInput(t *testing.T) {
	rows := []NormalizedRow{{Index: 0, Values: []float64{1, 3}}}

	_, _, err := ResolveSeries(rows, ModeStacked100)
	if err != nil {
		t.Fatalf("ResolveSeries() error: %v", err)
	}
	if rows[0].Values[0] != 1 || rows[0].Values[1] != 3 {
		t.Errorf("input mutated: %v", rows[0].Values)
	}
}

func TestResolveSeriesEmptyRows(t *testing.T) {
	count, resolved, err := ResolveSeries(nil, ModeStacked)
	if err != nil {
		t.Fatalf("ResolveSeries() error: %v", err)
	}
	if count != 0 || resolved != nil {
		t.Errorf("ResolveSeries(nil) = (%d, %v), want (0, nil)", count, resolved)
	}
}

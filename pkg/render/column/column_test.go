package column

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/series"
)

func salesRows() []any {
	return []any{
		map[string]any{"region": "EU", "q1": 12.5, "q2": 8.0, "e1": 1.0, "e2": 0.5},
		map[string]any{"region": "US", "q1": 9.0, "q2": 11.0, "e1": 0.8, "e2": 0.7},
		map[string]any{"region": "APAC", "q1": 6.0, "q2": 7.5, "e1": 0.4, "e2": 0.6},
	}
}

func TestBuildBasic(t *testing.T) {
	sel := series.Selectors{
		Label:  series.Field("region"),
		Values: []series.Selector{series.Field("q1")},
	}

	g, err := Build(salesRows(), sel, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if g.Mode != series.ModeBasic {
		t.Errorf("Mode = %q, want basic", g.Mode)
	}
	if g.SeriesCount != 1 {
		t.Errorf("SeriesCount = %d, want 1", g.SeriesCount)
	}
	if len(g.Bars) != 3 {
		t.Errorf("got %d bars, want 3", len(g.Bars))
	}
	if len(g.Whiskers) != 0 {
		t.Errorf("got %d whiskers, want 0 without error selectors", len(g.Whiskers))
	}
	if g.XMin != -1 || g.XMax != 3 {
		t.Errorf("x range = (%v, %v), want (-1, 3)", g.XMin, g.XMax)
	}
	if len(g.Ticks) != 3 || g.Ticks[2].Label != "APAC" {
		t.Errorf("ticks = %+v", g.Ticks)
	}
}

func TestBuildClusteredWithWhiskers(t *testing.T) {
	sel := series.Selectors{
		Label:  series.Field("region"),
		Values: []series.Selector{series.Field("q1"), series.Field("q2")},
		Errors: []series.Selector{series.Field("e1"), series.Field("e2")},
	}

	g, err := Build(salesRows(), sel, Options{Mode: series.ModeClustered})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(g.Bars) != 6 {
		t.Errorf("got %d bars, want 6", len(g.Bars))
	}
	if len(g.Whiskers) != 6 {
		t.Errorf("got %d whiskers, want 6", len(g.Whiskers))
	}

	// First bar: q1 of EU, value 12.5, error 1.
	w := g.Whiskers[0]
	if !almostEqual(w.YLow, 11.5) || !almostEqual(w.YHigh, 13.5) {
		t.Errorf("whisker 0 range = [%v, %v], want [11.5, 13.5]", w.YLow, w.YHigh)
	}
}

func TestBuildStacked100SegmentsSum(t *testing.T) {
	sel := series.Selectors{
		Label:  series.Field("region"),
		Values: []series.Selector{series.Field("q1"), series.Field("q2")},
	}

	g, err := Build(salesRows(), sel, Options{Mode: series.ModeStacked100})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Each row's top segment must end at 100.
	tops := map[int]float64{}
	for _, b := range g.Bars {
		if b.Top() > tops[b.Row] {
			tops[b.Row] = b.Top()
		}
	}
	for row, top := range tops {
		if math.Abs(top-100) > 1e-9 {
			t.Errorf("row %d stack top = %v, want 100", row, top)
		}
	}
	if len(g.Whiskers) != 0 {
		t.Errorf("stacked100 whiskers = %d, want 0", len(g.Whiskers))
	}
}

func TestBuildDeterministic(t *testing.T) {
	sel := series.Selectors{
		Label:  series.Field("region"),
		Values: []series.Selector{series.Field("q1"), series.Field("q2")},
	}

	a, err := Build(salesRows(), sel, Options{Mode: series.ModeStacked})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	b, err := Build(salesRows(), sel, Options{Mode: series.ModeStacked})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different geometry")
	}
}

func TestBuildFaults(t *testing.T) {
	tests := []struct {
		name string
		rows []any
		sel  series.Selectors
		opts Options
		code errors.Code
	}{
		{
			name: "missing label key",
			rows: []any{map[string]any{"q1": 1.0}},
			sel: series.Selectors{
				Label:  series.Field("region"),
				Values: []series.Selector{series.Field("q1")},
			},
			code: errors.ErrCodeMissingKey,
		},
		{
			name: "basic with two values",
			rows: salesRows(),
			sel: series.Selectors{
				Label:  series.Field("region"),
				Values: []series.Selector{series.Field("q1"), series.Field("q2")},
			},
			code: errors.ErrCodeInvalidConfig,
		},
		{
			name: "unknown mode",
			rows: salesRows(),
			sel: series.Selectors{
				Label:  series.Field("region"),
				Values: []series.Selector{series.Field("q1")},
			},
			opts: Options{Mode: "grouped"},
			code: errors.ErrCodeInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.rows, tt.sel, tt.opts)
			if g != nil {
				t.Error("faulted build returned partial geometry")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestGeometryYRange(t *testing.T) {
	g := &Geometry{
		Bars: []Bar{
			{YBase: 0, YExtent: 5},
			{YBase: 0, YExtent: -2},
		},
		Whiskers: []Whisker{
			{YLow: -3, YHigh: 6},
		},
	}

	ymin, ymax := g.YRange()
	if ymin != -3 || ymax != 6 {
		t.Errorf("YRange() = (%v, %v), want (-3, 6)", ymin, ymax)
	}
}

func TestGeometryYRangeIncludesZero(t *testing.T) {
	g := &Geometry{
		Bars: []Bar{{YBase: 0, YExtent: 4}},
	}
	ymin, ymax := g.YRange()
	if ymin != 0 || ymax != 4 {
		t.Errorf("YRange() = (%v, %v), want (0, 4)", ymin, ymax)
	}
}

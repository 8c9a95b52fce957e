package series

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/barstack/pkg/errors"
)

func TestNormalizeMapRows(t *testing.T) {
	rows := []any{
		map[string]any{"region": "EU", "q1": 12.5, "q2": 8.0},
		map[string]any{"region": "US", "q1": 9.0, "q2": 11.0},
	}
	sel := Selectors{
		Label:  Field("region"),
		Values: []Selector{Field("q1"), Field("q2")},
	}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	want := []NormalizedRow{
		{Index: 0, Label: "EU", Values: []float64{12.5, 8}},
		{Index: 1, Label: "US", Values: []float64{9, 11}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeSliceRows(t *testing.T) {
	rows := []any{
		[]any{"mon", 3.0},
		[]any{"tue", 5.0},
	}
	sel := Selectors{
		Label:  Index(0),
		Values: []Selector{Index(1)},
	}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got[0].Label != "mon" || got[0].Values[0] != 3 {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].Index != 1 {
		t.Errorf("row 1 index = %d, want 1", got[1].Index)
	}
}

func TestNormalizeMissingLabelKey(t *testing.T) {
	rows := []any{
		map[string]any{"region": "EU", "q1": 1.0},
		map[string]any{"q1": 2.0},
	}
	sel := Selectors{Label: Field("region"), Values: []Selector{Field("q1")}}

	_, err := Normalize(rows, sel)
	if !errors.Is(err, errors.ErrCodeMissingKey) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeMissingKey)
	}
	if !strings.Contains(err.Error(), "row 1") || !strings.Contains(err.Error(), "region") {
		t.Errorf("error should name the row and key: %v", err)
	}
}

func TestNormalizeMissingValueKey(t *testing.T) {
	rows := []any{
		map[string]any{"region": "EU", "q1": 1.0},
		map[string]any{"region": "US"},
	}
	sel := Selectors{Label: Field("region"), Values: []Selector{Field("q1")}}

	_, err := Normalize(rows, sel)
	if !errors.Is(err, errors.ErrCodeMissingKey) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeMissingKey)
	}
	if !strings.Contains(err.Error(), "q1") {
		t.Errorf("error should name the missing key: %v", err)
	}
}

func TestNormalizeMissingErrorKeyDefaultsZero(t *testing.T) {
	rows := []any{
		map[string]any{"region": "EU", "q1": 1.0, "e1": 0.5},
		map[string]any{"region": "US", "q1": 2.0},
	}
	sel := Selectors{
		Label:  Field("region"),
		Values: []Selector{Field("q1")},
		Errors: []Selector{Field("e1")},
	}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got[0].Errors[0] != 0.5 {
		t.Errorf("row 0 error = %v, want 0.5", got[0].Errors[0])
	}
	if got[1].Errors[0] != 0 {
		t.Errorf("row 1 error = %v, want 0", got[1].Errors[0])
	}
}

func TestNormalizeFlattensContainers(t *testing.T) {
	rows := []any{
		map[string]any{"label": "a", "vals": []any{1.0, 2.0, 3.0}},
		map[string]any{"label": "b", "vals": []float64{4, 5, 6}},
	}
	sel := Selectors{Label: Field("label"), Values: []Selector{Field("vals")}}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if !reflect.DeepEqual(got[0].Values, []float64{1, 2, 3}) {
		t.Errorf("row 0 values = %v", got[0].Values)
	}
	if !reflect.DeepEqual(got[1].Values, []float64{4, 5, 6}) {
		t.Errorf("row 1 values = %v", got[1].Values)
	}
}

func TestNormalizeInconsistentFlattenedCount(t *testing.T) {
	rows := []any{
		map[string]any{"label": "a", "vals": []any{1.0, 2.0}},
		map[string]any{"label": "b", "vals": []any{1.0, 2.0, 3.0}},
	}
	sel := Selectors{Label: Field("label"), Values: []Selector{Field("vals")}}

	_, err := Normalize(rows, sel)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestNormalizeNonNumericValue(t *testing.T) {
	rows := []any{
		map[string]any{"label": "a", "v": "not a number"},
	}
	sel := Selectors{Label: Field("label"), Values: []Selector{Field("v")}}

	_, err := Normalize(rows, sel)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want code %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestNormalizeJSONNumbers(t *testing.T) {
	rows := []any{
		map[string]any{"label": json.Number("7"), "v": json.Number("2.25")},
	}
	sel := Selectors{Label: Field("label"), Values: []Selector{Field("v")}}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got[0].Label != "7" {
		t.Errorf("label = %q, want %q", got[0].Label, "7")
	}
	if got[0].Values[0] != 2.25 {
		t.Errorf("value = %v, want 2.25", got[0].Values[0])
	}
}

func TestNormalizeNumericLabels(t *testing.T) {
	rows := []any{
		map[string]any{"year": 2024, "v": 1.0},
		map[string]any{"year": 2025.0, "v": 2.0},
	}
	sel := Selectors{Label: Field("year"), Values: []Selector{Field("v")}}

	got, err := Normalize(rows, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got[0].Label != "2024" {
		t.Errorf("label 0 = %q, want %q", got[0].Label, "2024")
	}
	if got[1].Label != "2025" {
		t.Errorf("label 1 = %q, want %q", got[1].Label, "2025")
	}
}

func TestNormalizeEmptyRows(t *testing.T) {
	sel := Selectors{Label: Field("label"), Values: []Selector{Field("v")}}
	got, err := Normalize(nil, sel)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty", got)
	}
}

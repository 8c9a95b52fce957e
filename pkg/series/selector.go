package series

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/barstack/pkg/errors"
)

// Selector resolves one field from a heterogeneous row.
//
// A selector is chosen once per chart build and applied to every row; the
// second return value reports whether the row carries the field at all.
type Selector interface {
	Resolve(row any) (any, bool)
	String() string
}

// Field selects a named entry from a map-shaped row.
type Field string

// Resolve looks up the field on map rows. Rows of any other shape miss.
func (f Field) Resolve(row any) (any, bool) {
	switch r := row.(type) {
	case map[string]any:
		v, ok := r[string(f)]
		return v, ok
	case map[string]float64:
		v, ok := r[string(f)]
		return v, ok
	case map[string]string:
		v, ok := r[string(f)]
		return v, ok
	}
	return nil, false
}

func (f Field) String() string { return string(f) }

// Index selects a positional entry from a slice-shaped row.
type Index int

// Resolve looks up the position on slice rows. Out-of-range indexes miss.
func (i Index) Resolve(row any) (any, bool) {
	switch r := row.(type) {
	case []any:
		if int(i) < 0 || int(i) >= len(r) {
			return nil, false
		}
		return r[int(i)], true
	case []float64:
		if int(i) < 0 || int(i) >= len(r) {
			return nil, false
		}
		return r[int(i)], true
	case []string:
		if int(i) < 0 || int(i) >= len(r) {
			return nil, false
		}
		return r[int(i)], true
	}
	return nil, false
}

func (i Index) String() string { return fmt.Sprintf("#%d", int(i)) }

// ParseSelector converts a configuration value into a Selector.
// Strings become named [Field] selectors, integers become positional
// [Index] selectors. Anything else is rejected.
func ParseSelector(v any) (Selector, error) {
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "selector cannot be empty")
		}
		return Field(s), nil
	case int:
		return Index(s), nil
	case int64:
		return Index(s), nil
	case float64:
		if s != float64(int(s)) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "selector index must be an integer, got %v", s)
		}
		return Index(int(s)), nil
	case json.Number:
		n, err := s.Int64()
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "selector index must be an integer, got %v", s)
		}
		return Index(n), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "selector must be a field name or index, got %T", v)
}

// ParseSelectors converts a slice of configuration values into selectors,
// preserving order. Order defines series identity and stacking order.
func ParseSelectors(vs []any) ([]Selector, error) {
	sels := make([]Selector, 0, len(vs))
	for _, v := range vs {
		sel, err := ParseSelector(v)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

// Selectors bundles the configured row accessors for one chart.
type Selectors struct {
	Label  Selector   // required, must resolve on every row
	Values []Selector // non-empty; order defines series order
	Errors []Selector // optional; same cardinality as Values when present
}

// Validate checks the selector set against the display mode's cardinality
// rules before any row is touched.
func (s Selectors) Validate(mode Mode) error {
	if s.Label == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "label selector is required")
	}
	if len(s.Values) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one value selector is required")
	}
	if mode == ModeBasic && len(s.Values) > 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"basic mode accepts exactly one value selector, got %d", len(s.Values))
	}
	if len(s.Errors) > 0 && len(s.Errors) != len(s.Values) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"error selectors (%d) must match value selectors (%d)", len(s.Errors), len(s.Values))
	}
	return nil
}

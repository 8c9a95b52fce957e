package series

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/barstack/pkg/errors"
)

// NormalizedRow is the uniform record extracted from one input row.
// Index equals the original row position and anchors the row's x coordinate.
type NormalizedRow struct {
	Index  int       `json:"index" bson:"index"`
	Label  string    `json:"label" bson:"label"`
	Values []float64 `json:"values" bson:"values"`
	Errors []float64 `json:"errors,omitempty" bson:"errors,omitempty"`
}

// Normalize extracts label, values, and errors from every row using the
// configured selectors. Row order is preserved and Index is assigned by
// position.
//
// A row missing the label key or any value key is a fault
// (errors.ErrCodeMissingKey) naming the row and key; normalization stops at
// the first offending row so a chart never silently drops data. Error keys
// are exempt: an absent error key contributes 0 for that row.
//
// Selectors that resolve to a slice are flattened in order, so a row may
// carry grouped series values under a single key. All rows must flatten to
// the same value count.
func Normalize(rows []any, sel Selectors) ([]NormalizedRow, error) {
	out := make([]NormalizedRow, 0, len(rows))

	for i, row := range rows {
		labelVal, ok := sel.Label.Resolve(row)
		if !ok {
			return nil, errors.New(errors.ErrCodeMissingKey,
				"row %d is missing label key %s", i, sel.Label)
		}

		nr := NormalizedRow{Index: i, Label: labelText(labelVal)}

		for _, key := range sel.Values {
			v, ok := key.Resolve(row)
			if !ok {
				return nil, errors.New(errors.ErrCodeMissingKey,
					"row %d is missing value key %s", i, key)
			}
			vals, err := appendScalars(nr.Values, v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err,
					"row %d, value key %s", i, key)
			}
			nr.Values = vals
		}

		for _, key := range sel.Errors {
			v, ok := key.Resolve(row)
			if !ok {
				nr.Errors = append(nr.Errors, 0)
				continue
			}
			errs, err := appendScalars(nr.Errors, v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err,
					"row %d, error key %s", i, key)
			}
			nr.Errors = errs
		}

		if len(out) > 0 && len(nr.Values) != len(out[0].Values) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"row %d yields %d values, row 0 yields %d", i, len(nr.Values), len(out[0].Values))
		}

		out = append(out, nr)
	}

	return out, nil
}

// appendScalars appends v to dst, flattening one level of slice nesting.
func appendScalars(dst []float64, v any) ([]float64, error) {
	switch vv := v.(type) {
	case []any:
		for _, e := range vv {
			f, err := asFloat(e)
			if err != nil {
				return nil, err
			}
			dst = append(dst, f)
		}
		return dst, nil
	case []float64:
		return append(dst, vv...), nil
	case []int:
		for _, e := range vv {
			dst = append(dst, float64(e))
		}
		return dst, nil
	}
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	return append(dst, f), nil
}

// asFloat coerces the numeric kinds rows commonly carry into float64.
func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
}

// labelText renders a label value as display text.
func labelText(v any) string {
	switch l := v.(type) {
	case string:
		return l
	case fmt.Stringer:
		return l.String()
	case json.Number:
		return l.String()
	case float64:
		return strconv.FormatFloat(l, 'g', -1, 64)
	case int:
		return strconv.Itoa(l)
	}
	return fmt.Sprint(v)
}

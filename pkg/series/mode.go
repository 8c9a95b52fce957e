package series

import "github.com/matzehuels/barstack/pkg/errors"

// Mode selects how a row's values map to drawn columns.
type Mode string

const (
	// ModeBasic draws one bar per row from a single value.
	ModeBasic Mode = "basic"
	// ModeClustered draws N side-by-side bars per row sharing a center.
	ModeClustered Mode = "clustered"
	// ModeStacked draws one bar per row segmented into N stacked pieces.
	ModeStacked Mode = "stacked"
	// ModeStacked100 is like stacked with each row renormalized to sum to 100.
	ModeStacked100 Mode = "stacked100"
)

// DefaultMode is used when no display mode is configured.
const DefaultMode = ModeBasic

// ValidModes is the set of supported display modes.
var ValidModes = map[Mode]bool{
	ModeBasic:      true,
	ModeClustered:  true,
	ModeStacked:    true,
	ModeStacked100: true,
}

// ValidateMode checks that a display mode is one of the four variants.
func ValidateMode(mode Mode) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidMode,
			"unknown display mode: %q (must be one of: basic, clustered, stacked, stacked100)", mode)
	}
	return nil
}

// Stacked reports whether the mode stacks segments into a single column.
func (m Mode) Stacked() bool { return m == ModeStacked || m == ModeStacked100 }

// AllowsWhiskers reports whether error whiskers are meaningful for the mode.
// A stacked bar's value is not a single point estimate, so stacked modes
// omit whiskers.
func (m Mode) AllowsWhiskers() bool { return m == ModeBasic || m == ModeClustered }

// ResolveSeries determines the series count for the given rows and applies
// any mode-specific value transform. The returned rows are fresh copies;
// the input is never mutated.
//
// basic requires exactly one value per row. stacked100 divides each row's
// values by the row sum and scales to 100; a zero-sum row yields all zeros
// rather than an error.
func ResolveSeries(rows []NormalizedRow, mode Mode) (int, []NormalizedRow, error) {
	if err := ValidateMode(mode); err != nil {
		return 0, nil, err
	}
	if len(rows) == 0 {
		return 0, nil, nil
	}

	count := len(rows[0].Values)
	if mode == ModeBasic && count != 1 {
		return 0, nil, errors.New(errors.ErrCodeInvalidConfig,
			"basic mode requires exactly one value per row, got %d", count)
	}

	out := make([]NormalizedRow, len(rows))
	for i, r := range rows {
		nr := NormalizedRow{
			Index:  r.Index,
			Label:  r.Label,
			Values: append([]float64(nil), r.Values...),
		}
		if len(r.Errors) > 0 {
			nr.Errors = append([]float64(nil), r.Errors...)
		}
		if mode == ModeStacked100 {
			renormalize(nr.Values)
		}
		out[i] = nr
	}

	return count, out, nil
}

// renormalize scales values in place so they sum to 100.
// A zero sum leaves every value at zero.
func renormalize(values []float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i, v := range values {
		values[i] = v / sum * 100
	}
}

package column

import (
	"github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/series"
)

// Default numeric style values. Bar width and whisker size are fractions
// (of one row slot and of the bar half-width respectively); inset and
// cluster gap are in data units.
const (
	DefaultBarWidth    = 0.8
	DefaultClusterGap  = 0.0
	DefaultInset       = 1.0
	DefaultWhiskerSize = 0.25
)

// Options are the resolved numeric style values the geometry builder
// consumes. Style merging and theming happen upstream; by the time options
// reach this package they are plain numbers owned by the caller.
type Options struct {
	Mode        series.Mode `json:"mode" bson:"mode"`
	BarWidth    float64     `json:"bar_width" bson:"bar_width"`
	ClusterGap  float64     `json:"cluster_gap" bson:"cluster_gap"`
	Inset       float64     `json:"inset" bson:"inset"`
	WhiskerSize float64     `json:"whisker_size" bson:"whisker_size"`

	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once. Zero-valued knobs take their defaults; negative
// values are configuration faults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Mode == "" {
		o.Mode = series.DefaultMode
	}
	if err := series.ValidateMode(o.Mode); err != nil {
		return err
	}

	if o.BarWidth == 0 {
		o.BarWidth = DefaultBarWidth
	}
	if o.BarWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bar width must be positive, got %v", o.BarWidth)
	}
	if o.ClusterGap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cluster gap cannot be negative, got %v", o.ClusterGap)
	}
	if o.Inset == 0 {
		o.Inset = DefaultInset
	}
	if o.Inset < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "inset cannot be negative, got %v", o.Inset)
	}
	if o.WhiskerSize == 0 {
		o.WhiskerSize = DefaultWhiskerSize
	}
	if o.WhiskerSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "whisker size cannot be negative, got %v", o.WhiskerSize)
	}

	o.validated = true
	return nil
}

package layout

import (
	"github.com/matzehuels/stageflow/pkg/errors"
)

// Orientation selects which axis layers advance along.
type Orientation string

const (
	// Horizontal places layers left to right.
	Horizontal Orientation = "horizontal"
	// Vertical places layers top to bottom.
	Vertical Orientation = "vertical"
)

// Ordering names a within-layer ordering strategy.
type Ordering string

const (
	// OrderingInput keeps stages in input order within each layer.
	OrderingInput Ordering = "input"
	// OrderingBarycentric sorts stages by the mean position of their parents.
	OrderingBarycentric Ordering = "barycentric"
)

// Default spacing values, in canvas units.
const (
	DefaultLayerSpacing = 220.0
	DefaultNodeSpacing  = 100.0
	DefaultMargin       = 40.0
)

// Options configures [Compute]. Zero values are replaced by defaults.
type Options struct {
	LayerSpacing float64     // Distance between consecutive layers
	NodeSpacing  float64     // Distance between stages in the same layer
	Margin       float64     // Padding around the drawing
	Orientation  Orientation // Axis layers advance along
	Ordering     Ordering    // Within-layer ordering strategy
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		LayerSpacing: DefaultLayerSpacing,
		NodeSpacing:  DefaultNodeSpacing,
		Margin:       DefaultMargin,
		Orientation:  Horizontal,
		Ordering:     OrderingInput,
	}
}

// normalize fills in defaults and rejects invalid values.
func (o Options) normalize() (Options, error) {
	if o.LayerSpacing < 0 || o.NodeSpacing < 0 || o.Margin < 0 {
		return o, errors.New(errors.ErrCodeInvalidOption,
			"spacing and margin must not be negative (layer=%g node=%g margin=%g)",
			o.LayerSpacing, o.NodeSpacing, o.Margin)
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	switch o.Orientation {
	case "":
		o.Orientation = Horizontal
	case Horizontal, Vertical:
	default:
		return o, errors.New(errors.ErrCodeInvalidOption, "unknown orientation: %s", o.Orientation)
	}
	switch o.Ordering {
	case "":
		o.Ordering = OrderingInput
	case OrderingInput, OrderingBarycentric:
	default:
		return o, errors.New(errors.ErrCodeInvalidOption, "unknown ordering: %s", o.Ordering)
	}
	return o, nil
}

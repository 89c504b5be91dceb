// Package pipeline provides the load → layout → render pipeline for stageflow.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// API. By centralizing this logic, both entry points resolve the current
// stage, report dangling references and render outputs the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read stage records from a [source.Source] (file, Redis, MongoDB)
//  2. Layout: Resolve the current stage and compute positions and edges
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
// Nothing is cached between runs: every call recomputes from its input.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	result, err := runner.Execute(ctx, source.FileSource{Path: "stages.json"}, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := runner.Layout(ctx, input, opts)
//	artifacts, err := runner.Render(ctx, graph.FromLayout(l), opts)
package pipeline

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultOrientation is the default layer direction.
	DefaultOrientation = string(layout.Horizontal)

	// DefaultOrdering is the default within-layer ordering.
	DefaultOrdering = string(layout.OrderingInput)
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests and TOML for
// options files.
type Options struct {
	// Layout options
	LayerSpacing float64 `json:"layer_spacing,omitempty" toml:"layer_spacing"`
	NodeSpacing  float64 `json:"node_spacing,omitempty" toml:"node_spacing"`
	Margin       float64 `json:"margin,omitempty" toml:"margin"`
	Orientation  string  `json:"orientation,omitempty" toml:"orientation"`
	Ordering     string  `json:"ordering,omitempty" toml:"ordering"`

	// Render options
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"` // Detailed node labels in DOT/SVG/PNG

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the loaded stage snapshot.
	Input graph.Input

	// Layout is the serialized layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StageCount int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOrientation checks that an orientation is valid.
func ValidateOrientation(o string) error {
	switch layout.Orientation(o) {
	case layout.Horizontal, layout.Vertical:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidOption, "invalid orientation: %q (must be one of: horizontal, vertical)", o)
}

// ValidateOrdering checks that an ordering strategy is valid.
func ValidateOrdering(o string) error {
	switch layout.Ordering(o) {
	case layout.OrderingInput, layout.OrderingBarycentric:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidOption, "invalid ordering: %q (must be one of: input, barycentric)", o)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.LayerSpacing < 0 || o.NodeSpacing < 0 || o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "spacing and margin must not be negative")
	}
	if o.LayerSpacing == 0 {
		o.LayerSpacing = layout.DefaultLayerSpacing
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = layout.DefaultNodeSpacing
	}
	if o.Margin == 0 {
		o.Margin = layout.DefaultMargin
	}
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.Ordering == "" {
		o.Ordering = DefaultOrdering
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := ValidateOrientation(o.Orientation); err != nil {
		return err
	}
	if err := ValidateOrdering(o.Ordering); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// LayoutOptions converts the options for the layout engine.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		LayerSpacing: o.LayerSpacing,
		NodeSpacing:  o.NodeSpacing,
		Margin:       o.Margin,
		Orientation:  layout.Orientation(o.Orientation),
		Ordering:     layout.Ordering(o.Ordering),
	}
}

// LoadOptionsFile reads options from a TOML file. Unknown keys are rejected
// so typos do not silently fall back to defaults.
func LoadOptionsFile(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "read options %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidOption, "unknown option %q in %s", undecoded[0].String(), path)
	}
	return o, nil
}

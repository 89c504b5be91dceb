package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/layout"
	"github.com/matzehuels/stageflow/pkg/observability"
	"github.com/matzehuels/stageflow/pkg/render/nodelink"
	"github.com/matzehuels/stageflow/pkg/source"
	"github.com/matzehuels/stageflow/pkg/stage"
)

// Runner encapsulates pipeline execution.
// Both CLI and API use this to avoid duplicating pipeline logic.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	result.Input = in
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.StageCount = len(in.Stages)

	opts.Logger.Info("loaded stages",
		"stages", len(in.Stages),
		"current", in.Current,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, err := r.Layout(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = graph.FromLayout(l)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.EdgeCount = len(l.Edges)

	opts.Logger.Info("computed layout",
		"layers", l.LayerCount(),
		"edges", len(l.Edges),
		"crossings", l.Crossings,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, result.Layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout resolves the current stage name of in and computes the layout.
//
// An unknown current stage name is not an error: it is logged and the layout
// shows no progress. Dangling parent references are logged as warnings and
// reported to the layout hooks.
func (r *Runner) Layout(ctx context.Context, in graph.Input, opts Options) (*layout.Layout, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	hooks := observability.Layout()

	current := in.CurrentID()
	if in.Current != "" && current == nil {
		logger.Warn("current stage not found, showing no progress", "name", in.Current)
	}

	hooks.OnLayoutStart(ctx, len(in.Stages))
	start := time.Now()
	l, err := layout.Compute(in.Stages, current, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, len(in.Stages), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	for _, ref := range l.Dangling {
		logger.Warn("skipping dangling parent reference", "stage", ref.Node, "parent", ref.Parent)
		hooks.OnDanglingReference(ctx, ref.Node, ref.Parent)
	}
	logger.Debug("layout",
		"stages", len(l.Nodes),
		"layers", l.LayerCount(),
		"completed", l.Completed.Len(),
		"width", l.Width,
		"height", l.Height)
	return l, nil
}

// Render generates one artifact per requested format from a serialized layout.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Layout()

	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := renderFormat(l, dot, format)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	}
	return artifacts, nil
}

func renderFormat(l graph.Layout, dot, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = graph.MarshalLayout(l)
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(dot)
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}

// Select maps a selected stage id back to its name, which the caller stores
// on its entity record to move it to that stage. No update is performed here.
func (r *Runner) Select(in graph.Input, id int) (string, error) {
	name, ok := stage.NameOf(in.Stages, id)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "stage %d not found", id)
	}
	if r.Logger != nil {
		r.Logger.Debug("selected stage", "id", id, "name", name)
	}
	return name, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

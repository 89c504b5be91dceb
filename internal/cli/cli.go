// Package cli implements the stageflow command-line interface.
//
// # Commands
//
//   - layout: compute positions, states and edges for a stage graph
//   - render: write the layout as JSON, DOT, SVG or PNG
//   - serve: run the HTTP API
//   - pick: choose a stage interactively and print its name
//   - completion: generate shell completion scripts
//
// Stage records come from a file argument or, with --redis-url or
// --mongo-uri, from the store that holds them.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging via
// charmbracelet/log.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stageflow/pkg/buildinfo"
	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/layout"
	"github.com/matzehuels/stageflow/pkg/pipeline"
	"github.com/matzehuels/stageflow/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "stageflow"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a timestamped logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stageflow lays out workflow stage graphs",
		Long:         `Stageflow computes layered layouts of workflow stage graphs: which stages are completed, where each stage sits, and which transitions are active.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Options Flags
// =============================================================================

// optionFlags binds layout options to flags. Values from --config are used
// unless the matching flag was set explicitly.
type optionFlags struct {
	config string
	opts   pipeline.Options
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "options file (TOML)")
	fl.Float64Var(&f.opts.LayerSpacing, "layer-spacing", layout.DefaultLayerSpacing, "distance between adjacent layers")
	fl.Float64Var(&f.opts.NodeSpacing, "node-spacing", layout.DefaultNodeSpacing, "distance between stages in a layer")
	fl.Float64Var(&f.opts.Margin, "margin", layout.DefaultMargin, "canvas margin")
	fl.StringVar(&f.opts.Orientation, "orientation", pipeline.DefaultOrientation, "layer direction: horizontal, vertical")
	fl.StringVar(&f.opts.Ordering, "ordering", pipeline.DefaultOrdering, "within-layer order: input, barycentric")
}

// resolve merges the options file with explicitly set flags.
func (f *optionFlags) resolve(cmd *cobra.Command) (pipeline.Options, error) {
	if f.config == "" {
		return f.opts, nil
	}
	opts, err := pipeline.LoadOptionsFile(f.config)
	if err != nil {
		return pipeline.Options{}, err
	}

	fl := cmd.Flags()
	if fl.Changed("layer-spacing") {
		opts.LayerSpacing = f.opts.LayerSpacing
	}
	if fl.Changed("node-spacing") {
		opts.NodeSpacing = f.opts.NodeSpacing
	}
	if fl.Changed("margin") {
		opts.Margin = f.opts.Margin
	}
	if fl.Changed("orientation") {
		opts.Orientation = f.opts.Orientation
	}
	if fl.Changed("ordering") {
		opts.Ordering = f.opts.Ordering
	}
	return opts, nil
}

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags selects where stage records are loaded from.
type sourceFlags struct {
	current string
	redis   source.RedisConfig
	mongo   source.MongoConfig
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.current, "current", "", "current stage name (overrides the source)")
	fl.StringVar(&f.redis.URL, "redis-url", "", "load stages from Redis (redis://host:port/db)")
	fl.StringVar(&f.redis.Key, "redis-key", "", "Redis key holding the stage array")
	fl.StringVar(&f.redis.CurrentKey, "redis-current-key", "", "Redis key holding the current stage name")
	fl.StringVar(&f.mongo.URI, "mongo-uri", "", "load stages from MongoDB (mongodb://host:port)")
	fl.StringVar(&f.mongo.Database, "mongo-db", "", "MongoDB database")
	fl.StringVar(&f.mongo.Collection, "mongo-collection", "", "MongoDB collection of stage documents")
	fl.StringVar(&f.mongo.SortField, "mongo-sort", source.DefaultSortField, "field defining stage input order")
}

// open returns the selected source and a function releasing it.
func (f *sourceFlags) open(ctx context.Context, args []string) (source.Source, func(), error) {
	var (
		src     source.Source
		release = func() {}
	)
	switch {
	case f.redis.URL != "":
		rs, err := source.NewRedisSource(ctx, f.redis)
		if err != nil {
			return nil, nil, err
		}
		src, release = rs, func() { _ = rs.Close() }
	case f.mongo.URI != "":
		cfg := f.mongo
		cfg.Current = f.current
		ms, err := source.NewMongoSource(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		src, release = ms, func() { _ = ms.Close(context.Background()) }
	case len(args) == 1:
		src = source.FileSource{Path: args[0]}
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no stage source: pass a file, --redis-url or --mongo-uri")
	}

	if f.current != "" {
		src = currentOverride{Source: src, current: f.current}
	}
	return src, release, nil
}

// inputName names the loaded graph for default output paths.
func (f *sourceFlags) inputName(args []string) string {
	switch {
	case len(args) == 1:
		return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	case f.redis.Key != "":
		return sanitizeName(f.redis.Key)
	case f.mongo.Collection != "":
		return sanitizeName(f.mongo.Collection)
	}
	return "stages"
}

func sanitizeName(s string) string {
	return strings.NewReplacer(":", "_", "/", "_", " ", "_").Replace(s)
}

// currentOverride replaces the current stage name reported by a source.
type currentOverride struct {
	source.Source
	current string
}

func (s currentOverride) Load(ctx context.Context) (graph.Input, error) {
	in, err := s.Source.Load(ctx)
	if err != nil {
		return graph.Input{}, err
	}
	in.Current = s.current
	return in, nil
}

// =============================================================================
// Paths
// =============================================================================

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

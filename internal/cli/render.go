package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stageflow/pkg/pipeline"
	"github.com/matzehuels/stageflow/pkg/source"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		detailed bool
		options  optionFlags
		sources  sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "render [stages.json|stages.toml]",
		Short: "Render a stage graph to JSON, DOT, SVG or PNG",
		Long: `Render a stage graph to JSON, DOT, SVG or PNG.

Node positions come from the layered layout and are pinned in the Graphviz
output. Completed stages are filled green, the current stage yellow, and
active transitions are drawn bold.

With a single format, -o names the output file. With several formats, -o is
a base path and each file gets its format's extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
				opts.Formats = parseFormats(formats)
			}
			if cmd.Flags().Changed("detailed") {
				opts.Detailed = detailed
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			src, release, err := sources.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer release()

			base := basePath(output, sources.inputName(args))
			single := len(opts.Formats) == 1 && output != ""
			return c.runRender(cmd.Context(), src, opts, base, output, single)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add layer and coordinates to node labels")
	options.register(cmd)
	sources.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, src source.Source, opts pipeline.Options, base, output string, single bool) error {
	opts.Logger = c.Logger

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spin.start()
	result, err := c.newRunner().Execute(ctx, src, opts)
	if err != nil {
		spin.stopWithError("Render failed")
		return err
	}
	spin.stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Rendered %d stages", result.Stats.StageCount)
	for _, format := range opts.Formats {
		path := base + "." + format
		if single {
			path = output
		}
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Layout)
	printDangling(result.Layout.Dangling)
	return nil
}

// parseFormats splits a comma-separated format list, dropping blanks and
// repeats. An empty list selects svg.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return out
}

// basePath derives the base output path. A known format extension on
// output is stripped; an empty output falls back to the input name.
func basePath(output, input string) string {
	if output == "" {
		return input
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/pipeline"
	"github.com/matzehuels/stageflow/pkg/source"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		options optionFlags
		sources sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [stages.json|stages.toml]",
		Short: "Compute a layered layout for a stage graph",
		Long: `Compute a layered layout for a stage graph.

Every stage is placed in the layer one past its deepest parent. Stages that
precede the current stage are marked completed, and transitions between
completed stages (or into the current one) are marked active.

Without -o the layout is printed as a table. With -o it is written as JSON
(use -o - for stdout).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options.resolve(cmd)
			if err != nil {
				return err
			}
			src, release, err := sources.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer release()
			return c.runLayout(cmd.Context(), src, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write layout JSON to file (- for stdout)")
	options.register(cmd)
	sources.register(cmd)

	return cmd
}

// runLayout loads stages, computes the layout and prints or writes it.
func (c *CLI) runLayout(ctx context.Context, src source.Source, opts pipeline.Options, output string) error {
	prog := newProgress(c.Logger)

	in, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	opts.Logger = c.Logger
	l, err := c.newRunner().Layout(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	out := graph.FromLayout(l)
	prog.done("Layout computed")

	if output != "" {
		data, err := graph.MarshalLayout(out)
		if err != nil {
			return err
		}
		if err := writeOutput(output, data); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		if output != "-" {
			printSuccess("Layout complete")
			printFile(output)
			printStats(out)
		}
		return nil
	}

	if in.Current != "" && out.CurrentID == nil {
		printWarning("current stage %q not found, showing no progress", in.Current)
	}
	printDangling(out.Dangling)
	fmt.Fprintln(stdout, layoutTable(out))
	printStats(out)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/render/treeviz"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags    pipelineFlags
		output   string
		format   string
		detailed bool
		rewrite  bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [spec.json]",
		Short: "Draw a spec's unit tree",
		Long: `Draw the unit tree of a chart spec as Graphviz DOT or SVG.

Frames appear as dashed clusters under their owner. With --rewrite the tree
is drawn after one pipeline pass, which shows the panes the layers plugin
produced. The format defaults to the output file's extension, else DOT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			if format == "" {
				format = formatDOT
			}
			if format != formatDOT && format != formatSVG {
				return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
			}
			return c.runVisualize(cmd.Context(), args[0], flags, rewrite, treeviz.Options{Detailed: detailed}, format, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show transformations and guide keys")
	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "draw the tree after one pipeline pass")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input string, flags pipelineFlags, rewrite bool, opts treeviz.Options, format, output string) error {
	runner, err := c.newRunner(input, flags)
	if err != nil {
		return err
	}
	s := runner.Spec()
	if rewrite {
		result, err := runner.Execute(ctx)
		if err != nil {
			return err
		}
		s = result.Spec
	}

	dot, err := treeviz.ToDOT(s, opts)
	if err != nil {
		return err
	}
	data := []byte(dot)
	if format == formatSVG {
		if data, err = treeviz.RenderSVG(dot); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	if output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess(c.Out, "Visualized %s", input)
	printFile(c.Out, output)
	return nil
}

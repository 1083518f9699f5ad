package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/errors"
)

// rewriteCommand creates the rewrite command.
func (c *CLI) rewriteCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite [spec.json]",
		Short: "Run one pipeline pass and write the rewritten spec",
		Long: `Run one pipeline pass over a chart spec and write the result.

The spec is read as JSON. Plugin settings come from a TOML file:

  [pipeline]
  plugins = ["layers"]

  [plugins.layers]
  mode = "dock"

  [[plugins.layers.layers]]
  type = "line"
  y = "cost"

Without --output the rewritten spec is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRewrite(cmd.Context(), args[0], flags, output, strict)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a plugin reports diagnostics")

	return cmd
}

func (c *CLI) runRewrite(ctx context.Context, input string, flags pipelineFlags, output string, strict bool) error {
	prog := newProgress(loggerFromContext(ctx))

	runner, err := c.newRunner(input, flags)
	if err != nil {
		return err
	}

	sp := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rewriting %s...", input))
	if output != "" {
		sp.Start()
	}
	result, err := runner.Execute(ctx)
	if err != nil {
		sp.StopWithError("Rewrite failed")
		return fmt.Errorf("rewrite %s: %w", input, err)
	}
	sp.Stop()

	if err := c.writeSpec(result.Spec, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rewrote %s", input))

	// Status goes to stderr when the spec itself went to stdout.
	status := c.Out
	if output == "" {
		status = os.Stderr
	} else {
		printSuccess(status, "Rewrote %s", input)
		printFile(status, output)
		printStats(status, result.Stats)
	}
	if result.HasDiagnostics() {
		printDiagnostics(status, result.Diagnostics)
		if strict {
			return errors.New(errors.ErrCodeNotApplicable, "plugins reported diagnostics")
		}
	}
	return nil
}

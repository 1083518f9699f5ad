package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	specio "github.com/matzehuels/layerspec/pkg/io"
	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		rewrite bool
	)

	cmd := &cobra.Command{
		Use:   "query [spec.json] [jsonpath]",
		Short: "Evaluate a JSONPath selector against a spec",
		Long: `Evaluate a JSONPath selector against a chart spec and print the matches
as JSON, one per line.

Examples:
  layerspec query chart.json '$.scales.y.dim'
  layerspec query chart.json '$..units[*].type'
  layerspec query chart.json --rewrite -c layers.toml '$.unit.frames[*].key'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   *spec.Spec
				err error
			)
			if rewrite {
				runner, err := c.newRunner(args[0], flags)
				if err != nil {
					return err
				}
				result, err := runner.Execute(cmd.Context())
				if err != nil {
					return err
				}
				s = result.Spec
			} else if s, err = specio.ImportSpec(args[0]); err != nil {
				return err
			}
			return c.runQuery(s, args[1])
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "query the spec after one pipeline pass")

	return cmd
}

func (c *CLI) runQuery(s *spec.Spec, selector string) error {
	matches, err := sdk.Query(s, selector)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.Out)
	for _, m := range matches {
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode match: %w", err)
		}
	}
	return nil
}

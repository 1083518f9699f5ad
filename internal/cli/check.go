package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/errors"
	specio "github.com/matzehuels/layerspec/pkg/io"
	"github.com/matzehuels/layerspec/pkg/layers"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var config string

	cmd := &cobra.Command{
		Use:   "check [spec.json]",
		Short: "Report whether layers can apply to a spec",
		Long: `Report whether the layers plugin can apply to a chart spec.

Layers need a rectangular chart whose elements plot a measure on y and are
not nested inside facets. With --config the layer descriptors are validated
as well. The command exits non-zero when anything is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], config)
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "plugin configuration file (TOML)")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input, config string) error {
	logger := loggerFromContext(ctx)

	s, err := specio.ImportSpec(input)
	if err != nil {
		return err
	}
	diags, err := layers.CheckApplicable(s)
	if err != nil {
		return err
	}

	if config != "" {
		cfgFile, err := specio.ImportConfig(config)
		if err != nil {
			return err
		}
		cfg := layers.DefaultConfig()
		if err := cfgFile.Decoder(layers.PluginName)(&cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", config)
		}
		cfg.SetDefaults()
		diags = append(diags, cfg.Validate()...)
	}

	logger.Debug("checked spec", "spec", input, "diagnostics", len(diags))
	if len(diags) == 0 {
		printSuccess(c.Out, "Layers apply to %s", input)
		return nil
	}
	printWarning(c.Out, "%s: %d problem(s)", input, len(diags))
	fmt.Fprintln(c.Out, diagnosticsTable(diags))
	return errors.New(diags[0].Code, "%s", diags[0].Message)
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/buildinfo"
	specio "github.com/matzehuels/layerspec/pkg/io"
	"github.com/matzehuels/layerspec/pkg/layers"
	"github.com/matzehuels/layerspec/pkg/pipeline"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "layerspec"

	// EnvMode overrides the layout mode of the layers plugin.
	EnvMode = "LAYERSPEC_MODE"

	// EnvAddr is the default listen address of the serve command.
	EnvAddr = "LAYERSPEC_ADDR"
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

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Layerspec rewrites chart specs into multi-layer charts",
		Long:         `Layerspec runs chart specs through a plugin pipeline. The layers plugin overlays extra measures on a chart by docking, splitting, or merging their y axes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.rewriteCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// pipelineFlags are the flags shared by every command that runs a pass.
type pipelineFlags struct {
	config  string
	plugins []string
	mode    string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "plugin configuration file (TOML)")
	cmd.Flags().StringSliceVarP(&f.plugins, "plugins", "p", nil, "plugins to run, in order (default from config, else layers)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", os.Getenv(EnvMode), "layers mode override: dock, split, merge")
}

// newRunner loads the spec at path and builds a runner configured by flags.
func (c *CLI) newRunner(path string, flags pipelineFlags) (*pipeline.Runner, error) {
	s, err := specio.ImportSpec(path)
	if err != nil {
		return nil, err
	}
	opts, cfg, err := c.pipelineOptions(flags)
	if err != nil {
		return nil, err
	}
	runner, err := pipeline.NewRunner(s, opts)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		for _, key := range cfg.Undecoded() {
			c.Logger.Warn("unknown config key", "key", key)
		}
	}
	return runner, nil
}

// pipelineOptions translates flags and the optional config file into runner
// options. The loaded config is returned so callers can report unused keys
// once the plugins have decoded their tables.
func (c *CLI) pipelineOptions(flags pipelineFlags) (pipeline.Options, *specio.Config, error) {
	opts := pipeline.Options{
		Plugins:  flags.plugins,
		Decoders: map[string]pipeline.Decoder{},
		Logger:   c.Logger,
	}
	var cfg *specio.Config
	if flags.config != "" {
		var err error
		cfg, err = specio.ImportConfig(flags.config)
		if err != nil {
			return opts, nil, err
		}
		if len(opts.Plugins) == 0 {
			opts.Plugins = cfg.Plugins
		}
		for name, d := range cfg.Decoders() {
			opts.Decoders[name] = d
		}
	}
	if flags.mode != "" {
		mode := layers.Mode(flags.mode)
		if !mode.Valid() {
			return opts, nil, fmt.Errorf("invalid mode: %q (must be one of: %v)", flags.mode, layers.Modes)
		}
		opts.Decoders[layers.PluginName] = withMode(opts.Decoders[layers.PluginName], mode)
	}
	return opts, cfg, nil
}

// withMode wraps a layers decoder so the decoded config uses mode.
func withMode(base pipeline.Decoder, mode layers.Mode) pipeline.Decoder {
	return func(v any) error {
		if base != nil {
			if err := base(v); err != nil {
				return err
			}
		}
		if cfg, ok := v.(*layers.Config); ok {
			cfg.Mode = mode
		}
		return nil
	}
}

// layersPlugin returns the running layers plugin, if the runner has one.
func layersPlugin(r *pipeline.Runner) (*layers.Plugin, bool) {
	p, ok := r.Plugin(layers.PluginName)
	if !ok {
		return nil, false
	}
	lp, ok := p.(*layers.Plugin)
	return lp, ok
}

// writeSpec writes s as JSON to path, or to the CLI output when path is empty.
func (c *CLI) writeSpec(s *spec.Spec, path string) error {
	if path == "" {
		return specio.WriteSpec(s, c.Out)
	}
	return specio.ExportSpec(s, path)
}

package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for layerspec.

To load completions:

Bash:
  $ source <(layerspec completion bash)

  # To load completions for each session, execute once:
  $ layerspec completion bash > /etc/bash_completion.d/layerspec

Zsh:
  # To load completions for each session, execute once:
  $ layerspec completion zsh > "${fpath[1]}/_layerspec"

Fish:
  $ layerspec completion fish | source

  # To load completions for each session, execute once:
  $ layerspec completion fish > ~/.config/fish/completions/layerspec.fish

PowerShell:
  PS> layerspec completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> layerspec completion powershell > layerspec.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

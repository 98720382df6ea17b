package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/zone"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for zonemap.

Bash:
  $ source <(zonemap completion bash)

Zsh:
  $ zonemap completion zsh > "${fpath[1]}/_zonemap"

Fish:
  $ zonemap completion fish > ~/.config/fish/completions/zonemap.fish

PowerShell:
  PS> zonemap completion powershell | Out-String | Invoke-Expression

Preset names complete for --preset.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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
}

// completePresets offers the built-in zone presets for --preset.
func completePresets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return zone.Presets(), cobra.ShellCompDirectiveNoFileComp
}

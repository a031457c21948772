package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Factory names
// complete for build, netlist and difftest.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for photonkit.

Bash:
  $ source <(photonkit completion bash)

Zsh:
  $ photonkit completion zsh > "${fpath[1]}/_photonkit"

Fish:
  $ photonkit completion fish > ~/.config/fish/completions/photonkit.fish

PowerShell:
  PS> photonkit completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := c.stdout()
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

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/render"
)

// commonZones are offered for --tz; any IANA name is accepted.
var commonZones = []string{
	"UTC", "Local", "Asia/Shanghai", "Asia/Tokyo", "Asia/Singapore",
	"Europe/London", "Europe/Berlin", "America/New_York", "America/Los_Angeles",
}

// completionCommand prints shell completion scripts to the command's output.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kgview.

Completions cover commands and flags, the --format, --layout and --tz
values, and payload files (*.json) for transform and browse.

  source <(kgview completion bash)
  kgview completion zsh > "${fpath[1]}/_kgview"
  kgview completion fish | source
  kgview completion powershell | Out-String | Invoke-Expression`,
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

// completeFormats offers the export formats.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, f := range render.Formats {
		if strings.HasPrefix(string(f), toComplete) {
			names = append(names, string(f))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completePayloadFile completes the single payload file argument.
func completePayloadFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeOutputFile completes --output with the writable extensions.
func completeOutputFile(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	exts := make([]string, 0, len(render.Formats)+1)
	for _, f := range render.Formats {
		exts = append(exts, string(f))
	}
	return append(exts, "yml"), cobra.ShellCompDirectiveFilterFileExt
}

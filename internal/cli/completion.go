package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackgrid/pkg/pipeline"
)

// shells maps each supported shell to its completion script generator.
var shells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func shellNames() []string {
	names := make([]string, 0, len(shells))
	for name := range shells {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *CLI) completionCommand() *cobra.Command {
	names := shellNames()
	return &cobra.Command{
		Use:   "completion [" + strings.Join(names, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for ` + appName + `.

Document arguments complete to .toml and .json files, and the --format,
--flow, --packing and --mode flags complete to their accepted values.`,
		Example: `  source <(trackgrid completion bash)
  trackgrid completion zsh > "${fpath[1]}/_trackgrid"
  trackgrid completion fish > ~/.config/fish/completions/trackgrid.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             names,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := shells[args[0]]
			if err := gen(cmd.Root(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("generate %s completion: %w", args[0], err)
			}
			return nil
		},
	}
}

// completeDocument completes the single input argument of arrange, render
// and preview. Layout files end in .json, so they are offered too.
func completeDocument(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes a comma-separated format list, offering only
// formats that are not listed yet.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	listed := pipeline.ParseFormats(prefix)

	var out []string
	for f := range pipeline.ValidFormats {
		if !slices.Contains(listed, f) {
			out = append(out, prefix+f)
		}
	}
	slices.Sort(out)
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// registerDocCompletions attaches value completions to the document
// override flags registered by docFlags.
func registerDocCompletions(cmd *cobra.Command) {
	values := map[string][]string{
		"flow":    {"columns", "rows"},
		"packing": {"sparse", "dense"},
		"mode":    {"fill", "scroll"},
	}
	for flag, v := range values {
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(v, cobra.ShellCompDirectiveNoFileComp))
	}
}

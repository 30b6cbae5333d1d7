package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var completionsCmd = &cobra.Command{
	Use:       "completions [bash|zsh|fish|powershell|elvish]",
	Short:     "Generate shell completion scripts",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell", "elvish"},
	RunE:      runCompletions,
}

func runCompletions(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	case "elvish":
		return genElvishCompletion(os.Stdout)
	default:
		return fmt.Errorf("unsupported shell %q", args[0])
	}
}

// genElvishCompletion writes a minimal elvish completer. Cobra has no
// built-in elvish generator, so subcommand names are inlined directly
// rather than walking the command tree.
func genElvishCompletion(w io.Writer) error {
	const tmpl = `
edit:completion:arg-completer[nomad] = [@words]{
    put sync ls purge init completions version
}
`
	_, err := w.Write([]byte(tmpl))
	return err
}

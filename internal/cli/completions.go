package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validShells = []string{"bash", "fish", "powershell", "zsh"}

func isValidShell(shell string) bool {
	for _, s := range validShells {
		if s == shell {
			return true
		}
	}
	return false
}

func writeCompletions(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	case "zsh":
		return root.GenZshCompletion(w)
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/stand/internal/environment"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var showValues bool

func init() {
	showCmd.Flags().BoolVar(&showValues, "values", false, "decrypt and expand values instead of showing them as stored")
}

func resetShowCommandState() {
	showValues = false
}

var showCmd = &cobra.Command{
	Use:   "show [environment]",
	Short: "Show the variables of an environment and where each comes from",
	Long: `Shows every variable of an environment after inheritance, with its
source: common, local, or inherited from a parent.

By default values are shown as stored: placeholders are not expanded and
encrypted values stay hidden, so no private key is needed. Use --values to
see the final values; those that were decrypted are tagged (decrypted).

Without an environment, the project's default environment is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")

		opts := workflows.ResolveOptions{Raw: !showValues}
		if len(args) == 1 {
			opts.Environment = args[0]
		}

		result, err := workflows.Resolve(cmd.Context(), session, opts)
		if err != nil {
			return printFailure(err)
		}

		printResolved(result.Environment)
		return nil
	},
}

func printResolved(r *environment.Resolved) {
	header := ui.Environment(r.Color).Sprint(r.Environment)
	if len(r.Chain) > 1 {
		header += " " + ui.Muted.Sprint(strings.Join(r.Chain, " -> "))
	}
	if r.RequiresConfirmation {
		header += " " + ui.Warning.Sprint("[confirm]")
	}
	fmt.Println(header)

	if r.Len() == 0 {
		fmt.Println("  " + ui.Muted.Sprint("no variables"))
		return
	}

	for _, e := range r.Entries() {
		value := e.Value
		if e.Raw.IsEncrypted() && !e.Decrypted {
			value = ui.Secret.Sprint("encrypted")
		}
		line := fmt.Sprintf("  %s=%s  %s", e.Name, value, ui.Muted.Sprint(string(e.Source)))
		if e.Decrypted {
			line += " " + ui.Muted.Sprint("decrypted")
		}
		fmt.Println(line)
	}
}

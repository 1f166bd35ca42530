package cmd

import (
	"fmt"

	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration document for problems",
	Long: `Checks the document and reports every problem at once: a missing version,
environments without a description, unknown parents or default environment,
circular inheritance and empty common values.

Exits with status 1 when any problem is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting validate command")

		spinner, cleanup := startSpinner("Validating configuration...", verbose)
		defer cleanup()

		result, err := workflows.Validate(cmd.Context(), session)
		if err != nil {
			return fail(spinner, err)
		}

		if len(result.Problems) == 0 {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " " + ui.Path.Sprint(result.DocumentPath) + " is valid"
			return nil
		}

		msg := ui.Error.Sprint("✗") + fmt.Sprintf(" Found %d problem%s in ", len(result.Problems), plural(len(result.Problems))) +
			ui.Path.Sprint(result.DocumentPath)
		for _, p := range result.Problems {
			msg += "\n  - " + p.Error()
		}
		spinner.FinalMSG = msg
		return errReported
	},
}

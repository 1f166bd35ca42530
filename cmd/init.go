package cmd

import (
	"strings"

	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing .stand.toml")
}

func resetInitCommandState() {
	initForce = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .stand.toml in the current directory",
	Long: `Creates a .stand.toml with a common section and dev, staging and prod
environments. Production asks for confirmation before running commands.

A directory that still uses the .stand/config.yaml layout is not
initialized again; run 'stand migrate' instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")

		if !verbose && !debug {
			figure.NewColorFigure("stand", "alligator2", "green", true).Print()
		}

		spinner, cleanup := startSpinner("Initializing stand...", verbose)
		defer cleanup()

		result, err := workflows.Init(cmd.Context(), session, workflows.InitOptions{Force: initForce})
		if err != nil {
			return fail(spinner, err)
		}
		Logger.Infof("Wrote %s", result.DocumentPath)

		action := "Created "
		if result.Overwritten {
			action = "Replaced "
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " " + action + ui.Path.Sprint(configs.PrimaryFileName) +
			" with environments " + ui.Highlight.Sprint(strings.Join(result.Environments, ", ")) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("stand show dev") + " to see the resolved variables"
		return nil
	},
}

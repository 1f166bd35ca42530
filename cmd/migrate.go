package cmd

import (
	"strings"

	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/utils"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a .stand/config.yaml project to .stand.toml",
	Long: `Converts the legacy layout, a .stand/config.yaml whose environments list
dotenv files, into a single .stand.toml. The .stand directory is copied to a
timestamped backup first. Dotenv files are read but left in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting migrate command")

		spinner, cleanup := startSpinner("Migrating configuration...", verbose)
		defer cleanup()

		result, err := workflows.Migrate(cmd.Context(), session, workflows.MigrateOptions{})
		if err != nil {
			return fail(spinner, err)
		}

		msg := ui.Success.Sprint("✓") + " Migrated " + ui.Highlight.Sprintf("%d", result.Environments) +
			" environment" + plural(result.Environments) + " to " + ui.Path.Sprint(configs.PrimaryFileName) + "\n" +
			ui.Info.Sprint("→") + " Backup: " + ui.Path.Sprint(result.BackupPath)
		if len(result.ImportedFiles) > 0 {
			msg += "\n" + ui.Info.Sprint("→") + " Imported these files, which are no longer read and can be removed:" +
				strings.TrimSuffix(utils.FormatPaths(result.ImportedFiles), "\n")
		}
		spinner.FinalMSG = msg
		return nil
	},
}

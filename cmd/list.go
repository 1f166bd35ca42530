package cmd

import (
	"fmt"

	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the environments in this project",
	Long: `Lists every environment with its parent, variable counts and colour.
The default environment is marked with *. No private key is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		result, err := workflows.List(cmd.Context(), session)
		if err != nil {
			return printFailure(err)
		}
		Logger.Debugf("Found %d environments in %s", len(result.Environments), result.ProjectPath)

		printEnvironmentList(result)
		return nil
	},
}

func printEnvironmentList(result *workflows.ListResult) {
	fmt.Printf("Project: %s\n", ui.Path.Sprint(result.ProjectPath))
	if result.Format == configs.FormatLegacy {
		fmt.Println(ui.Warning.Sprint("⚠") + " Using the legacy layout; run " + ui.Code.Sprint("stand migrate") + " to convert it")
	}
	if result.EncryptionEnabled {
		fmt.Println("Encryption: " + ui.Success.Sprint("enabled"))
	}
	fmt.Println()

	if len(result.Environments) == 0 {
		fmt.Println(ui.Warning.Sprint("⚠") + " No environments defined")
		return
	}

	for _, env := range result.Environments {
		marker := " "
		if env.IsDefault {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, ui.Environment(env.Color).Sprint(env.Name))
		if env.Extends != "" {
			line += " " + ui.Muted.Sprint("extends "+env.Extends)
		}
		line += fmt.Sprintf("  %d variable%s", env.Variables, plural(env.Variables))
		if env.Encrypted > 0 {
			line += " " + ui.Muted.Sprintf("%d encrypted", env.Encrypted)
		}
		if env.RequiresConfirmation {
			line += " " + ui.Warning.Sprint("[confirm]")
		}
		fmt.Println(line)
		if env.Description != "" {
			fmt.Println("    " + ui.Muted.Sprint(env.Description))
		}
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

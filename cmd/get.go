package cmd

import (
	"fmt"

	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <environment> <name>",
	Short: "Print the final value of one variable",
	Long: `Resolves the environment, decrypting and expanding as needed, and prints
the value of one variable followed by a newline. Nothing else is written to
stdout, so the output can be captured by scripts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting get command")

		value, err := workflows.Get(cmd.Context(), session, workflows.GetOptions{
			Environment: args[0],
			Name:        args[1],
		})
		if err != nil {
			return printFailure(err)
		}

		fmt.Println(value)
		return nil
	},
}

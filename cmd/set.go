package cmd

import (
	"fmt"

	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/secrets"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/utils"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	setEncrypt  bool
	setCommon   bool
	unsetCommon bool
)

func init() {
	setCmd.Flags().BoolVarP(&setEncrypt, "encrypt", "e", false, "store the value encrypted with the project key")
	setCmd.Flags().BoolVar(&setCommon, "common", false, "write to the common section shared by all environments")
	unsetCmd.Flags().BoolVar(&unsetCommon, "common", false, "remove from the common section")
}

func resetSetCommandState() {
	setEncrypt = false
	setCommon = false
	unsetCommon = false
}

var setCmd = &cobra.Command{
	Use:   "set <environment> <name> [value]",
	Short: "Add or replace a variable",
	Long: `Sets a variable in one environment, or with --common in the section shared
by all environments.

With --encrypt the value is sealed with the project public key; the private
key is not needed. When the value argument is omitted it is read from stdin,
or prompted for without echo when --encrypt is given on a terminal. Prefer
that over passing secrets on the command line, where they end up in shell
history.

Examples:
  stand set dev LOG_LEVEL debug
  stand set --common APP_NAME shop
  stand set --encrypt prod API_KEY`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting set command")

		target, rest, err := parseTarget(args, setCommon)
		if err != nil {
			return printFailure(err)
		}
		if len(rest) > 1 {
			return printFailure(fmt.Errorf("too many arguments"))
		}

		var value logger.Secret
		if len(rest) == 1 {
			value = logger.Secret(rest[0])
		} else {
			value, err = readValue(target)
			if err != nil {
				return printFailure(err)
			}
		}
		Logger.Debugf("Setting %s (encrypt=%t)", target, setEncrypt)

		spinner, cleanup := startSpinner("Writing "+target.String()+"...", verbose)
		defer cleanup()

		result, err := workflows.Set(cmd.Context(), session, workflows.SetOptions{
			Target:  target,
			Value:   value,
			Encrypt: setEncrypt,
		})
		if err != nil {
			return fail(spinner, err)
		}

		verb := "Updated "
		if result.Created {
			verb = "Added "
		}
		msg := ui.Success.Sprint("✓") + " " + verb + ui.Highlight.Sprint(target.String())
		if result.Encrypted {
			msg += " " + ui.Secret.Sprint("encrypted")
		}
		spinner.FinalMSG = msg
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <environment> <name>",
	Short: "Remove a variable",
	Long: `Removes a variable from one environment, or with --common from the common
section. Inherited variables must be removed where they are defined.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unset command")

		target, rest, err := parseTarget(args, unsetCommon)
		if err != nil {
			return printFailure(err)
		}
		if len(rest) > 0 {
			return printFailure(fmt.Errorf("too many arguments"))
		}

		spinner, cleanup := startSpinner("Removing "+target.String()+"...", verbose)
		defer cleanup()

		if _, err := workflows.Unset(cmd.Context(), session, workflows.UnsetOptions{Target: target}); err != nil {
			return fail(spinner, err)
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Removed " + ui.Highlight.Sprint(target.String())
		return nil
	},
}

// parseTarget reads "<environment> <name>", or "<name>" when common is set,
// and returns the remaining arguments.
func parseTarget(args []string, common bool) (secrets.VarRef, []string, error) {
	if common {
		ref, err := secrets.ParseVarRef(args[0])
		if err == nil && ref.Environment != "" {
			err = fmt.Errorf("--common takes a bare variable name, got %q", args[0])
		}
		return ref, args[1:], err
	}
	if len(args) < 2 {
		return secrets.VarRef{}, nil, fmt.Errorf("expected an environment and a variable name (or --common and a name)")
	}
	ref, err := secrets.ParseVarRef(args[0] + ":" + args[1])
	return ref, args[2:], err
}

// readValue takes the value from stdin, or prompts for it without echo when
// an encrypted value is set from a terminal.
func readValue(target secrets.VarRef) (logger.Secret, error) {
	if utils.IsTerminal() {
		if !setEncrypt {
			return "", fmt.Errorf("no value given for %s", target)
		}
		value, err := utils.ReadSecret("Value for " + target.String() + ": ")
		return logger.Secret(value), err
	}
	value, err := utils.ReadStdin()
	return logger.Secret(value), err
}

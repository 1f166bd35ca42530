package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/stand/internal/secrets"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/utils"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	encryptValues []string
	disableYes    bool
)

func init() {
	encryptEnableCmd.Flags().StringArrayVar(&encryptValues, "value", nil, "encrypt this value right away, as env:NAME or NAME for common (repeatable)")
	encryptDisableCmd.Flags().BoolVarP(&disableYes, "yes", "y", false, "do not ask for confirmation")

	encryptCmd.AddCommand(encryptEnableCmd)
	encryptCmd.AddCommand(encryptDisableCmd)
}

func resetEncryptCommandState() {
	encryptValues = nil
	disableYes = false
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Manage per-value encryption for this project",
	Long: `Encryption is opt-in per value. Enabling it creates a key pair: the public
key is stored in .stand.toml and the private key in .stand.keys, which is
added to .gitignore. Values named with --value, or later set with
'stand set --encrypt', are stored as ciphertext.`,
}

var encryptEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Create the project key pair and encrypt the named values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt enable command")

		targets := make([]secrets.VarRef, 0, len(encryptValues))
		for _, v := range encryptValues {
			ref, err := secrets.ParseVarRef(v)
			if err != nil {
				return printFailure(err)
			}
			targets = append(targets, ref)
		}
		Logger.Debugf("Encrypting %d values", len(targets))

		spinner, cleanup := startSpinner("Generating project key...", verbose)
		defer cleanup()

		result, err := workflows.EnableEncryption(cmd.Context(), session, workflows.EnableEncryptionOptions{Targets: targets})
		if err != nil {
			return fail(spinner, err)
		}

		msg := ui.Success.Sprint("✓") + " Encryption enabled" + "\n" +
			"  Public key:  " + ui.Highlight.Sprint(result.PublicKey) + "\n" +
			"  Private key: " + ui.Path.Sprint(result.KeyFile)
		if result.Encrypted > 0 {
			msg += "\n" + ui.Success.Sprint("✓") + fmt.Sprintf(" Encrypted %d value%s", result.Encrypted, plural(result.Encrypted))
		}
		if result.GitignoreUpdated {
			msg += "\n" + ui.Success.Sprint("✓") + " Added the key file to " + ui.Path.Sprint(".gitignore")
		}
		msg += "\n" + ui.Warning.Sprint("⚠") + " Keep the private key safe and out of version control. Without it, encrypted values cannot be recovered." +
			"\n" + ui.Info.Sprint("→") + " Share it with " + ui.Flag.Sprint("STAND_PRIVATE_KEY") + " in CI"
		spinner.FinalMSG = msg
		return nil
	},
}

var encryptDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Decrypt every value and remove the project key",
	Long: `Decrypts every encrypted value back into plain text in .stand.toml, removes
the [encryption] table and deletes the private key file. If any value
cannot be decrypted nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt disable command")

		if !disableYes {
			if !utils.IsTerminal() {
				return printFailure(fmt.Errorf("disabling encryption writes secrets to .stand.toml in plain text; pass --yes to confirm"))
			}
			ok, err := utils.Confirm(os.Stdin, os.Stderr, "Write every encrypted value to .stand.toml in plain text?")
			if err != nil {
				return printFailure(err)
			}
			if !ok {
				fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" Aborted")
				return errReported
			}
		}

		spinner, cleanup := startSpinner("Decrypting values...", verbose)
		defer cleanup()

		result, err := workflows.DisableEncryption(cmd.Context(), session, workflows.DisableEncryptionOptions{})
		if err != nil {
			return fail(spinner, err)
		}

		msg := ui.Success.Sprint("✓") + fmt.Sprintf(" Encryption disabled, %d value%s decrypted", result.Decrypted, plural(result.Decrypted))
		if result.KeyRemoved {
			msg += "\n" + ui.Success.Sprint("✓") + " Removed " + ui.Path.Sprint(result.KeyFile)
		}
		spinner.FinalMSG = msg
		return nil
	},
}

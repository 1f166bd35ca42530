package cmd

import (
	"github.com/PolarWolf314/stand/internal/configs"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	projectDir string
	keyFile    string
	noAudit    bool
	Logger     logger.Logger

	// session is rebuilt for every invocation in PersistentPreRunE.
	session *workflows.Session

	RootCmd = &cobra.Command{
		Use:   "stand",
		Short: "stand - Per-environment variables with inheritance and per-value encryption.",
		Long: `stand resolves the variables of one environment from a single .stand.toml.

Environments may extend one another, values may reference the host
environment with ${NAME}, and individual values may be encrypted with the
project key so the document can be committed.

Usage:
  stand <command> [flags]

Run 'stand help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing stand with verbose=%t, debug=%t", verbose, debug)

			opts, err := configs.BuildOptions(configs.Options{
				ProjectDir: projectDir,
				KeyFile:    keyFile,
				NoAudit:    noAudit,
			})
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read options: %v", err)
			}
			Logger.Debugf("Project directory: %s", opts.ProjectDir)
			session = workflows.NewSession(opts, Logger)
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "run as if stand was started in this directory")
	RootCmd.PersistentFlags().StringVar(&keyFile, "key-file", "", "path to the project private key (default: .stand.keys in the project root)")
	RootCmd.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "do not append to the audit log")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(unsetCmd)
	RootCmd.AddCommand(execCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(migrateCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	projectDir = ""
	keyFile = ""
	noAudit = false
	session = nil
	resetInitCommandState()
	resetShowCommandState()
	resetSetCommandState()
	resetExecCommandState()
	resetEncryptCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears the Changed mark on every flag to prevent test pollution.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}

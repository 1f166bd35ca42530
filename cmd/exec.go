package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/PolarWolf314/stand/internal/environment"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/PolarWolf314/stand/internal/utils"
	"github.com/PolarWolf314/stand/internal/workflows"
	"github.com/spf13/cobra"
)

var execYes bool

func init() {
	execCmd.Flags().BoolVarP(&execYes, "yes", "y", false, "skip the confirmation prompt for protected environments")
}

func resetExecCommandState() {
	execYes = false
}

var execCmd = &cobra.Command{
	Use:   "exec [environment] -- <command> [args...]",
	Short: "Run a command with an environment's variables",
	Long: `Resolves the environment and runs the command with its variables added to
the current process environment. Resolved variables win over inherited ones.

Environments with requires_confirmation ask before running. Pass --yes to
skip the prompt; without a terminal the prompt cannot be answered and --yes
is required.

The command's exit status becomes stand's exit status.`,
	Args: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash < 0 || dash == len(args) {
			return fmt.Errorf("missing command: use 'stand exec [environment] -- <command>'")
		}
		if dash > 1 {
			return fmt.Errorf("expected at most one environment before --, got %d", dash)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting exec command")

		dash := cmd.ArgsLenAtDash()
		opts := workflows.ResolveOptions{}
		if dash == 1 {
			opts.Environment = args[0]
		}
		command := args[dash:]

		result, err := workflows.Resolve(cmd.Context(), session, opts)
		if err != nil {
			return printFailure(err)
		}
		resolved := result.Environment
		Logger.Infof("Resolved %d variables for %s", resolved.Len(), resolved.Environment)

		if resolved.RequiresConfirmation && !execYes {
			ok, err := confirmEnvironment(resolved)
			if err != nil {
				return printFailure(err)
			}
			if !ok {
				fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" Aborted")
				return errReported
			}
		}

		child := exec.CommandContext(cmd.Context(), command[0], command[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		child.Env = mergeEnviron(os.Environ(), resolved.Map())

		Logger.Debugf("Running %s", command[0])
		if err := child.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExitError{Code: exitErr.ExitCode()}
			}
			return printFailure(fmt.Errorf("failed to run %s: %w", command[0], err))
		}
		return nil
	},
}

func confirmEnvironment(r *environment.Resolved) (bool, error) {
	if !utils.IsTerminal() {
		return false, fmt.Errorf("environment '%s' requires confirmation; pass --yes to run without a terminal", r.Environment)
	}
	prompt := "Run in " + ui.Environment(r.Color).Sprint(r.Environment) + "?"
	return utils.Confirm(os.Stdin, os.Stderr, prompt)
}

// mergeEnviron overlays vars on base, a list of KEY=VALUE pairs. Keys from
// vars replace existing entries and new keys are appended in sorted order.
func mergeEnviron(base []string, vars map[string]string) []string {
	out := make([]string, 0, len(base)+len(vars))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := vars[key]; ok {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}
	return out
}

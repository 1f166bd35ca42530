package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/PolarWolf314/stand/internal/ui"
	"github.com/briandowns/spinner"
)

// ExitError ends the process with Code. The command has already told the
// user what went wrong, so main prints nothing more.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// errReported is returned after a failure message has been printed.
var errReported = &ExitError{Code: 1}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// fail puts the user-facing description of err on the spinner and returns
// errReported.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = describeError(err)
	return errReported
}

// printFailure is fail for commands whose stdout carries data.
func printFailure(err error) error {
	Logger.Errorf("%v", err)
	fmt.Fprint(os.Stderr, ui.EnsureNewline(describeError(err)))
	return errReported
}

// describeError renders err with a hint for the errors users can fix.
// Error messages never carry variable values, so err is printed as is.
func describeError(err error) string {
	msg := ui.Error.Sprint("✗") + " " + err.Error()
	if hint := errorHint(err); hint != "" {
		msg += "\n" + ui.Info.Sprint("→") + " " + hint
	}
	return msg
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrProjectNotInitialized):
		return "Run " + ui.Code.Sprint("stand init") + " first"
	case errors.Is(err, kerrors.ErrLegacyFormat):
		return "Run " + ui.Code.Sprint("stand migrate") + " to convert it"
	case errors.Is(err, kerrors.ErrMissingKey):
		return "Set " + ui.Flag.Sprint("STAND_PRIVATE_KEY") + " or pass " + ui.Flag.Sprint("--key-file")
	case errors.Is(err, kerrors.ErrEncryptionNotEnabled):
		return "Run " + ui.Code.Sprint("stand encrypt enable") + " first"
	case errors.Is(err, kerrors.ErrEnvironmentNotFound):
		return "Run " + ui.Code.Sprint("stand list") + " to see the environments"
	case errors.Is(err, kerrors.ErrValidation):
		return "Run " + ui.Code.Sprint("stand validate") + " for details"
	case kerrors.IsRetryable(err):
		return "Another stand command is running; try again"
	}
	return ""
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/PolarWolf314/envault/internal/ui"
	"github.com/PolarWolf314/envault/internal/utils"
	"github.com/PolarWolf314/envault/internal/workflows"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Printed to stdout for tests to capture.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported returns true if err was already printed by a command.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// fail puts a formatted error into the spinner's final message and returns
// err so the process exits with its kind's code.
func fail(s *spinner.Spinner, err error) error {
	Logger.Debugf("Command failed with %s error: %v", kerrors.KindOf(err), err)
	s.FinalMSG = formatError(err)
	return reportedError{err}
}

// formatError formats an error for display to the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrProjectNotInitialized):
		return ui.Failed("envault has not been initialized") + "\n" +
			ui.Hint("Run %s first, or pass %s", ui.Code.Sprint("envault init"), ui.Flag.Sprint("--key"))

	case errors.Is(err, kerrors.ErrProjectAlreadyInitialized):
		return ui.Failed("envault is already initialized in this project") + "\n" +
			ui.Hint("Run %s to start encrypting", ui.Code.Sprint("envault encrypt"))

	case errors.Is(err, kerrors.ErrKeyNotFound):
		return ui.Failed("No key found") + "\n" +
			ui.Hint("Run %s or pass %s", ui.Code.Sprint("envault keygen"), ui.Flag.Sprint("--key")) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrAuthentication):
		return ui.Failed("Artifact could not be opened with this key") + "\n" +
			ui.Info.Sprint("→") + " It was sealed under another key or has been modified\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrRotationConflict):
		return ui.Failed("Another envault operation holds the lock") + "\n" +
			ui.Hint("Retry later, or wait for it with %s", ui.Flag.Sprint("--lock-policy block")) + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Failed("No matching files found") + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	default:
		return ui.Failed("%s", err.Error()) + "\n" +
			ui.Muted.Sprint("kind: "+kerrors.KindOf(err))
	}
}

// keyFlagOptions builds the shared workflow options from the global flags
// and a --key value. A key of "-" is read from stdin as base64.
func keyFlagOptions(keyFlag string) (workflows.CommonOptions, error) {
	opts := workflows.CommonOptions{
		LockPolicy:  lockPolicy,
		LockTimeout: lockTimeout,
		Logger:      Logger,
	}

	switch keyFlag {
	case "":
	case "-":
		Logger.Debugf("Reading key from stdin")
		data, err := utils.ReadStdin()
		if err != nil {
			return opts, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
		}
		opts.KeyData = data
	default:
		opts.KeyPath = keyFlag
	}
	return opts, nil
}

package cli

import (
	"context"
	"errors"
	"io"

	"github.com/roach88/mahasiswa/internal/failure"
)

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported through the output formatter: JSON on stdout, text on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// cobra's own errors: unknown command, bad flag, missing argument.
		exitErr = WrapExitError(ExitCommandError, "invalid command", err)
	}

	format, _ := cmd.PersistentFlags().GetString("format")
	if !isValidFormat(format) {
		format = "text"
	}
	verbose, _ := cmd.PersistentFlags().GetBool("verbose")

	out := &OutputFormatter{Format: format, Writer: stderr, Verbose: verbose}
	if format == "json" {
		out.Writer = stdout
	}
	_ = out.Error(errorCode(exitErr), exitErr.Error(), errorDetails(exitErr))

	return exitErr.Code
}

// errorDetails collects failure context for error output, or nil when there is none.
func errorDetails(err error) any {
	var fe *failure.Error
	if !errors.As(err, &fe) {
		return nil
	}
	details := make(map[string]string, len(fe.Details)+2)
	for k, v := range fe.Details {
		details[k] = v
	}
	if fe.Op != "" {
		details["op"] = fe.Op
	}
	if fe.Table != "" {
		details["table"] = fe.Table
	}
	return details
}

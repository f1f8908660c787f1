// Package main provides the toggl-fetch CLI entrypoint.
//
// fetch is the only command that writes; everything else is read-only.
//
// Usage:
//
//	toggl-fetch <command> [options]
//
// Exit codes for `fetch`:
//   - 0: success
//   - 1: invalid arguments
//   - 2: invalid configuration file
//   - 3: API failure
//   - 4: internal error (state, timezone)
//   - 5: output artifact failure
package main

import (
	"errors"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/cli/cmd"
	"github.com/pithecene-io/toggl-fetch/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "toggl-fetch",
		Usage:          "Fetch Toggl summary reports and save them locally or to S3",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.FetchCommand(),
			cmd.WorkspacesCommand(),
			cmd.HistoryCommand(),
			cmd.StatusCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from
// cli.Exit() so scripts wrapping the tool can dispatch on $?.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	// Check for ExitCoder (from cli.Exit), handles wrapped errors
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// Only print if there's a real message (not just "exit status N")
		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	// Unexpected error - print and exit with code 1
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

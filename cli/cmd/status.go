package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/cli/render"
	"github.com/pithecene-io/toggl-fetch/enddate"
	"github.com/pithecene-io/toggl-fetch/fetch"
)

// StatusCommand returns the status command.
// Read-only: shows the stored end date per workspace and which state file
// it came from.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the stored end date for each workspace",
		Flags:  ReadOnlyFlags(),
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for the status command
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for the status command", fetch.ExitArgs)
	}

	entries, err := enddate.NewStore().Entries()
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read end date state: %v", err), fetch.ExitInternal)
	}

	return r.Render(entries)
}

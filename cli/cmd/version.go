package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/cli/render"
	"github.com/pithecene-io/toggl-fetch/fetch"
	"github.com/pithecene-io/toggl-fetch/types"
)

// VersionResponse is the response for the version command.
// Version is the canonical project version, in lockstep with the user-agent
// product identifier.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
// It must not contact the API.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		// TUI not supported for the version command
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for the version command", fetch.ExitArgs)
		}

		resp := VersionResponse{
			Name:    "toggl-fetch",
			Version: types.Version,
			Commit:  commit,
		}

		return r.Render(resp)
	}
}

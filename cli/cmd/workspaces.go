package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/api"
	"github.com/pithecene-io/toggl-fetch/cli/config"
	"github.com/pithecene-io/toggl-fetch/cli/render"
	"github.com/pithecene-io/toggl-fetch/fetch"
)

// WorkspacesCommand returns the workspaces command.
// Read-only: lists the workspaces visible to the API token, so users can
// find the ID or exact name to pass to fetch.
func WorkspacesCommand() *cli.Command {
	return &cli.Command{
		Name:   "workspaces",
		Usage:  "List the workspaces the API token can access",
		Flags:  append(ReadOnlyFlags(), APITokenFlag, ConfigFlag),
		Action: workspacesAction,
	}
}

func workspacesAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for the workspaces command
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for the workspaces command", fetch.ExitArgs)
	}

	env, err := config.ReadEnv()
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitArgs)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), fetch.ExitConfig)
	}

	token := resolveString(c, "api-token", env.APIToken, cfg.APIToken, "")
	if token == "" {
		return cli.Exit("API token is required: set --api-token, TOGGL_FETCH_API_TOKEN, or api_token in the config file", fetch.ExitArgs)
	}

	registry := api.NewSessionRegistry(api.RegistryConfig{Timeout: cfg.Timeout.Duration})
	toggl := api.NewToggl(registry, api.Credential{Token: token}, api.Options{
		MaxAttempts: cfg.Retry.Attempts,
		RetryDelay:  cfg.Retry.Delay.Duration,
	})

	workspaces, err := toggl.Workspaces(context.Background())
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitAPI)
	}

	return r.Render(workspaces)
}

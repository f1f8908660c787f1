package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/api"
	"github.com/pithecene-io/toggl-fetch/cli/config"
	"github.com/pithecene-io/toggl-fetch/enddate"
	"github.com/pithecene-io/toggl-fetch/fetch"
	"github.com/pithecene-io/toggl-fetch/iox"
	"github.com/pithecene-io/toggl-fetch/journal"
	"github.com/pithecene-io/toggl-fetch/metrics"
	"github.com/pithecene-io/toggl-fetch/notify"
	"github.com/pithecene-io/toggl-fetch/types"
)

// FetchCommand returns the fetch command.
// This is the only command that writes: it fetches a report, saves the
// artifact, and advances the end date store. Everything else is read-only.
func FetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch a summary report and save it",
		Flags: []cli.Flag{
			// Date range flags
			&cli.StringFlag{
				Name:    "start-date",
				Aliases: []string{"s"},
				Usage:   "Report start date (default: stored end date + 1 day, or 4 weeks back)",
			},
			&cli.StringFlag{
				Name:    "end-date",
				Aliases: []string{"e"},
				Usage:   "Report end date (default: now)",
			},
			// Account flags
			APITokenFlag,
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace ID or exact name",
			},
			// Output flags
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path template (default: " + DefaultTemplate + ")",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing output file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Save the parsed JSON summary instead of the PDF export",
			},
			&cli.StringFlag{
				Name:  "order-field",
				Usage: "Report sort column (default: title)",
			},
			// State flags
			&cli.BoolFlag{
				Name:    "no-update",
				Aliases: []string{"x"},
				Usage:   "Do not record the end date for the next run",
			},
			// Config and logging flags
			ConfigFlag,
			VerboseFlag,
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress result output",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	env, err := config.ReadEnv()
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitArgs)
	}

	logger, err := buildLogger(c, env)
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitArgs)
	}
	defer iox.DiscardErr(logger.Sync)

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), fetch.ExitConfig)
	}

	s, err := resolveSettings(c, env, cfg)
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitArgs)
	}

	// One registry, one credential, two API surfaces sharing the session.
	runID := uuid.NewString()
	collector := metrics.NewCollector(runID)
	registry := api.NewSessionRegistry(api.RegistryConfig{Timeout: cfg.Timeout.Duration})
	cred := api.Credential{Token: s.apiToken}
	opts := api.Options{
		MaxAttempts: cfg.Retry.Attempts,
		RetryDelay:  cfg.Retry.Delay.Duration,
		Collector:   collector,
	}
	toggl := api.NewToggl(registry, cred, opts)
	reports := api.NewReports(registry, cred, logger, opts)

	// Local state: the end date store and the journal share the data dir.
	store := enddate.NewStore()
	jnl := journal.New(store.WriteDir)

	// Optional completion webhook
	var notifier notify.Notifier
	if cfg.Notify.URL != "" {
		webhook, err := notify.NewWebhook(cfg.Webhook())
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid notify config: %v", err), fetch.ExitConfig)
		}
		defer iox.DiscardClose(webhook)
		notifier = webhook
	}

	runner, err := fetch.NewRunner(fetch.Config{
		Toggl:     toggl,
		Reports:   reports,
		Store:     store,
		Journal:   jnl,
		Notifier:  notifier,
		Collector: collector,
		Logger:    logger,
		RunID:     runID,
		S3:        cfg.S3(),
	})
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitInternal)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := runner.Execute(ctx, fetch.Request{
		Workspace:  s.workspace,
		StartDate:  s.startDate,
		EndDate:    s.endDate,
		Template:   s.template,
		Format:     s.format,
		Force:      s.force,
		NoUpdate:   s.noUpdate,
		OrderField: s.orderField,
	})
	if err != nil {
		return cli.Exit(err.Error(), fetch.ExitCodeFor(err))
	}

	if !c.Bool("quiet") {
		printFetchResult(result)
	}

	return nil
}

func printFetchResult(result *fetch.Result) {
	rec := result.Record

	fmt.Printf("\nrun_id=%s, workspace=%s, output=%s, duration=%s\n",
		rec.RunID,
		workspaceDisplay(rec),
		rec.Output,
		result.Duration.Round(time.Millisecond),
	)

	fmt.Printf("\n=== Fetch Result ===\n")
	fmt.Printf("Run ID:       %s\n", rec.RunID)
	fmt.Printf("Workspace:    %s\n", workspaceDisplay(rec))
	fmt.Printf("Since:        %s\n", rec.Since)
	fmt.Printf("Until:        %s\n", rec.Until)
	fmt.Printf("Output:       %s\n", rec.Output)
	fmt.Printf("Format:       %s\n", rec.Format)
	fmt.Printf("Size:         %d bytes\n", rec.SizeBytes)
	if result.StateUpdated {
		fmt.Printf("Next start:   %s + 1 day (recorded)\n", rec.Until)
	} else {
		fmt.Printf("Next start:   unchanged (--no-update)\n")
	}

	fmt.Printf("\n=== Requests ===\n")
	fmt.Printf("Total:            %d\n", result.Snapshot.Requests)
	fmt.Printf("Retried:          %d\n", result.Snapshot.Retries)
	fmt.Printf("Rate limit hits:  %d\n", result.Snapshot.RateLimitHits)
	fmt.Printf("Bytes fetched:    %d\n", result.Snapshot.BytesFetched)
}

// workspaceDisplay formats the workspace as "name (id)", or just the id when
// the name is unknown.
func workspaceDisplay(rec types.FetchRecord) string {
	if rec.WorkspaceName != "" {
		return fmt.Sprintf("%s (%d)", rec.WorkspaceName, rec.WorkspaceID)
	}
	return fmt.Sprintf("%d", rec.WorkspaceID)
}

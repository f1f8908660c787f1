package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/toggl-fetch/cli/render"
	"github.com/pithecene-io/toggl-fetch/enddate"
	"github.com/pithecene-io/toggl-fetch/fetch"
	"github.com/pithecene-io/toggl-fetch/journal"
	"github.com/pithecene-io/toggl-fetch/types"
)

// listWarningThreshold is the number of records above which we warn about using --limit.
const listWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// HistoryCommand returns the history command.
// Read-only: lists completed fetches from the local journal, newest first.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List completed fetches from the local journal",
		Flags: append(TUIReadOnlyFlags(),
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Filter by workspace ID or exact name",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// The journal lives next to the end date store in the data dir.
	store := enddate.NewStore()
	records, err := journal.New(store.WriteDir).Records()
	if errors.Is(err, journal.ErrTruncated) {
		// A crash mid-append leaves a torn tail; the records before it are
		// still valid.
		fmt.Fprintln(os.Stderr, "Warning: journal ends mid-record; showing the records before the torn tail.")
	} else if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read journal: %v", err), fetch.ExitInternal)
	}

	records = newestFirst(records)
	if ws := c.String("workspace"); ws != "" {
		records = filterByWorkspace(records, ws)
	}
	limit := c.Int("limit")
	records = limitRecords(records, limit)

	// Handle TUI mode
	if c.Bool("tui") {
		if c.Bool("no-color") {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return r.RenderTUI("history", records)
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(records) > listWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d records. Consider using --limit to reduce output.\n\n", len(records))
	}

	return r.Render(records)
}

// newestFirst reverses journal append order, which is chronological.
func newestFirst(records []types.FetchRecord) []types.FetchRecord {
	out := make([]types.FetchRecord, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec
	}
	return out
}

// filterByWorkspace keeps records matching the selector, by decimal ID or by
// exact name.
func filterByWorkspace(records []types.FetchRecord, selector string) []types.FetchRecord {
	id, idErr := strconv.ParseInt(selector, 10, 64)
	var out []types.FetchRecord
	for _, rec := range records {
		if idErr == nil && rec.WorkspaceID == id {
			out = append(out, rec)
			continue
		}
		if rec.WorkspaceName == selector {
			out = append(out, rec)
		}
	}
	return out
}

// limitRecords truncates to the first n records; 0 means no limit.
func limitRecords(records []types.FetchRecord, n int) []types.FetchRecord {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[:n]
}

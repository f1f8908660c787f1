// Package fetch orchestrates a single summary fetch end to end: resolve the
// workspace and date range, fetch the report, write the artifact, then record
// the run.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/toggl-fetch/api"
	"github.com/pithecene-io/toggl-fetch/enddate"
	"github.com/pithecene-io/toggl-fetch/journal"
	"github.com/pithecene-io/toggl-fetch/log"
	"github.com/pithecene-io/toggl-fetch/metrics"
	"github.com/pithecene-io/toggl-fetch/notify"
	"github.com/pithecene-io/toggl-fetch/output"
	"github.com/pithecene-io/toggl-fetch/types"
)

// MetadataClient is the metadata API surface the runner needs.
// *api.Toggl implements it; tests substitute stubs.
type MetadataClient interface {
	UserInfo(ctx context.Context) (*api.UserInfo, error)
}

// ReportClient is the reporting API surface the runner needs.
type ReportClient interface {
	Summary(ctx context.Context, req api.SummaryRequest) (*api.SummaryReport, error)
	SummaryPDF(ctx context.Context, req api.SummaryRequest) ([]byte, error)
}

// WriterFactory resolves a rendered destination into an output writer.
// Used for test injection; the default is output.For.
type WriterFactory func(ctx context.Context, dest, contentType string, cfg output.S3Config) (output.Writer, error)

// Config wires the runner's collaborators.
type Config struct {
	// Toggl is the metadata API client (required).
	Toggl MetadataClient
	// Reports is the reporting API client (required).
	Reports ReportClient
	// Store persists per-workspace end dates (required).
	Store *enddate.Store
	// Journal records completed fetches. If nil, journaling is disabled.
	Journal *journal.Journal
	// Notifier publishes completion events. If nil, notification is disabled.
	Notifier notify.Notifier
	// Collector accumulates request metrics for this run.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Logger receives progress and best-effort failure logs (required).
	Logger *log.Logger
	// RunID identifies this invocation. Empty generates one.
	RunID string
	// S3 configures the object storage backend for s3:// destinations.
	S3 output.S3Config
	// WriterFor overrides output writer construction (for testing).
	WriterFor WriterFactory
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Request describes one fetch.
type Request struct {
	// Workspace selects the workspace: a name, or a decimal id.
	Workspace string
	// StartDate overrides the resolved start date. Nil resolves from the
	// end date store.
	StartDate *time.Time
	// EndDate overrides the report end date. Nil means now.
	EndDate *time.Time
	// Template is the destination path template.
	Template string
	// Format is the artifact form (default pdf).
	Format types.ReportFormat
	// Force overwrites an existing artifact at the destination.
	Force bool
	// NoUpdate leaves the end date store untouched after the fetch.
	NoUpdate bool
	// OrderField overrides the report sort column.
	OrderField string
}

// Result describes a completed fetch.
type Result struct {
	// Record is the journal record for this fetch.
	Record types.FetchRecord
	// Workspace is the resolved workspace.
	Workspace api.Workspace
	// Snapshot holds the request counters accumulated during the fetch.
	Snapshot metrics.Snapshot
	// Duration is the end-to-end fetch duration.
	Duration time.Duration
	// StateUpdated reports whether the end date store was advanced.
	StateUpdated bool
}

// Runner executes fetches against a fixed set of collaborators.
type Runner struct {
	config Config
}

// NewRunner validates the configuration and returns a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Toggl == nil || cfg.Reports == nil {
		return nil, errors.New("fetch: API clients are required")
	}
	if cfg.Store == nil {
		return nil, errors.New("fetch: end date store is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("fetch: logger is required")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.WriterFor == nil {
		cfg.WriterFor = output.For
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Runner{config: cfg}, nil
}

// Execute runs one fetch end-to-end.
//
// Execution flow:
//  1. Look up the authenticated user (workspaces + timezone)
//  2. Resolve the workspace selector
//  3. Resolve the date range (explicit > stored end + 1 day > now - 4 weeks)
//  4. Render the destination template and refuse to overwrite without Force
//  5. Fetch the report and write the artifact
//  6. Journal the record (best effort)
//  7. Advance the end date store (unless NoUpdate), then publish the
//     completion event (best effort)
//
// Failures return a *StepError naming the stage; ExitCodeFor maps it to a
// process exit code.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	logger := r.config.Logger

	if req.Format == "" {
		req.Format = types.FormatPDF
	}
	if req.Template == "" {
		return nil, &StepError{Step: StepTemplate, Err: errors.New("output template is empty")}
	}

	logger.Info("starting fetch", map[string]any{
		"run_id":    r.config.RunID,
		"workspace": req.Workspace,
		"format":    string(req.Format),
	})

	info, err := r.config.Toggl.UserInfo(ctx)
	if err != nil {
		return nil, &StepError{Step: StepUserInfo, Err: err}
	}

	ws, err := resolveWorkspace(info, req.Workspace)
	if err != nil {
		return nil, &StepError{Step: StepWorkspace, Err: err}
	}

	// Report boundaries are calendar dates in the user's profile timezone,
	// not the machine's.
	loc, err := time.LoadLocation(info.Data.Timezone)
	if err != nil {
		return nil, &StepError{Step: StepRange, Err: fmt.Errorf("timezone %q: %w", info.Data.Timezone, err)}
	}

	startDate, err := r.resolveStartDate(req, ws.ID)
	if err != nil {
		return nil, &StepError{Step: StepRange, Err: err}
	}
	endDate := r.config.Clock()
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	since := startDate.In(loc).Format(time.DateOnly)
	until := endDate.In(loc).Format(time.DateOnly)
	logger.Sugar().Infof("fetching summary for workspace %d: %s to %s", ws.ID, since, until)

	dest, err := output.RenderPath(req.Template, startDate.In(loc), endDate.In(loc))
	if err != nil {
		return nil, &StepError{Step: StepTemplate, Err: err}
	}

	writer, err := r.config.WriterFor(ctx, dest, req.Format.ContentType(), r.config.S3)
	if err != nil {
		return nil, &StepError{Step: StepOutput, Err: err}
	}
	if !req.Force {
		exists, err := writer.Exists(ctx)
		if err != nil {
			return nil, &StepError{Step: StepOutput, Err: err}
		}
		if exists {
			return nil, &StepError{
				Step: StepOutput,
				Err:  fmt.Errorf("%s already exists (use --force to overwrite)", writer.Destination()),
			}
		}
	}

	data, err := r.fetchReport(ctx, api.SummaryRequest{
		WorkspaceID: ws.ID,
		Since:       since,
		Until:       until,
		OrderField:  req.OrderField,
	}, req.Format)
	if err != nil {
		return nil, &StepError{Step: StepFetch, Err: err}
	}
	logger.Info("report fetched", map[string]any{
		"bytes":  len(data),
		"format": string(req.Format),
	})

	if err := writer.Write(ctx, data); err != nil {
		return nil, &StepError{Step: StepWrite, Err: err}
	}
	logger.Sugar().Infof("report written to %s", writer.Destination())

	duration := time.Since(startTime)
	snap := r.config.Collector.Snapshot()
	rec := types.FetchRecord{
		RunID:         r.config.RunID,
		WorkspaceID:   ws.ID,
		WorkspaceName: ws.Name,
		Since:         since,
		Until:         until,
		Output:        writer.Destination(),
		Format:        req.Format,
		SizeBytes:     int64(len(data)),
		Requests:      snap.Requests,
		Retries:       snap.Retries,
		DurationMs:    duration.Milliseconds(),
		CompletedAt:   r.config.Clock().Format(time.RFC3339),
	}

	// The artifact is already written; journal and webhook failures are
	// logged, not returned. The journal lands before the state update so a
	// state failure cannot hide a fetch that did produce an artifact.
	if r.config.Journal != nil {
		if err := r.config.Journal.Append(rec); err != nil {
			logger.Warn("journal append failed (best effort)", map[string]any{
				"error": err.Error(),
			})
		}
	}

	stateUpdated := false
	if !req.NoUpdate {
		if err := r.config.Store.SetLastEndDate(ws.ID, endDate); err != nil {
			return nil, &StepError{Step: StepState, Err: err}
		}
		stateUpdated = true
	}

	if r.config.Notifier != nil {
		// Use WithoutCancel so a canceled parent does not drop the event for
		// an already-completed fetch.
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		if err := r.config.Notifier.Publish(notifyCtx, notify.EventFromRecord(rec)); err != nil {
			logger.Warn("completion webhook failed (best effort)", map[string]any{
				"error": err.Error(),
			})
		}
		cancel()
	}

	logger.Info("fetch completed", map[string]any{
		"run_id":       r.config.RunID,
		"workspace_id": ws.ID,
		"destination":  writer.Destination(),
		"duration":     duration.String(),
		"requests":     snap.Requests,
		"retries":      snap.Retries,
	})

	return &Result{
		Record:       rec,
		Workspace:    ws,
		Snapshot:     snap,
		Duration:     duration,
		StateUpdated: stateUpdated,
	}, nil
}

// resolveStartDate applies the precedence: explicit request value, stored end
// date plus one day, now minus four weeks.
func (r *Runner) resolveStartDate(req Request, workspaceID int64) (time.Time, error) {
	if req.StartDate != nil {
		return *req.StartDate, nil
	}
	return r.config.Store.DetermineStartDate(workspaceID)
}

// fetchReport fetches the summary in the requested artifact form.
func (r *Runner) fetchReport(ctx context.Context, sreq api.SummaryRequest, format types.ReportFormat) ([]byte, error) {
	if format == types.FormatJSON {
		report, err := r.config.Reports.Summary(ctx, sreq)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(report, "", "  ")
	}
	return r.config.Reports.SummaryPDF(ctx, sreq)
}

// resolveWorkspace maps a selector to a workspace. An all-digit selector is
// an id and passes through unvalidated; the report API is the authority on
// whether it exists. A name must match one of the profile's workspaces
// exactly, case included.
func resolveWorkspace(info *api.UserInfo, selector string) (api.Workspace, error) {
	if selector == "" {
		return api.Workspace{}, errors.New("workspace is required")
	}

	if isAllDigits(selector) {
		id, err := strconv.ParseInt(selector, 10, 64)
		if err != nil {
			return api.Workspace{}, fmt.Errorf("workspace id %q: %w", selector, err)
		}
		for _, ws := range info.Data.Workspaces {
			if ws.ID == id {
				return ws, nil
			}
		}
		return api.Workspace{ID: id}, nil
	}

	ws, ok := info.WorkspaceByName(selector)
	if !ok {
		return api.Workspace{}, fmt.Errorf("workspace %q not found", selector)
	}
	return ws, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Verify the concrete API clients satisfy the runner's interfaces.
var (
	_ MetadataClient = (*api.Toggl)(nil)
	_ ReportClient   = (*api.Reports)(nil)
)

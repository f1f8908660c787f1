package types

// ReportFormat selects the artifact form of a summary export.
type ReportFormat string

// Report format constants.
const (
	FormatPDF  ReportFormat = "pdf"
	FormatJSON ReportFormat = "json"
)

// ContentType returns the MIME type for the artifact form.
func (f ReportFormat) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/pdf"
}

// Ext returns the file extension for the artifact form, with leading dot.
func (f ReportFormat) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".pdf"
}

// FetchRecord describes one completed summary fetch.
// It is appended to the local journal (msgpack tags) and embedded in the
// webhook completion event (json tags).
type FetchRecord struct {
	// RunID is a unique identifier for this invocation.
	RunID string `json:"run_id" msgpack:"run_id"`
	// WorkspaceID is the numeric Toggl workspace identifier.
	WorkspaceID int64 `json:"workspace_id" msgpack:"workspace_id"`
	// WorkspaceName is the resolved workspace name, empty if unknown.
	WorkspaceName string `json:"workspace_name,omitempty" msgpack:"workspace_name"`
	// Since is the first report day, ISO 8601 date.
	Since string `json:"since" msgpack:"since"`
	// Until is the last report day, ISO 8601 date.
	Until string `json:"until" msgpack:"until"`
	// Output is the artifact destination (local path or s3:// URL).
	Output string `json:"output" msgpack:"output"`
	// Format is the artifact form, "pdf" or "json".
	Format ReportFormat `json:"format" msgpack:"format"`
	// SizeBytes is the artifact size as written.
	SizeBytes int64 `json:"size_bytes" msgpack:"size_bytes"`
	// Requests is the number of HTTP requests issued, retries included.
	Requests int64 `json:"requests" msgpack:"requests"`
	// Retries is the number of retried requests.
	Retries int64 `json:"retries" msgpack:"retries"`
	// DurationMs is the end-to-end fetch duration in milliseconds.
	DurationMs int64 `json:"duration_ms" msgpack:"duration_ms"`
	// CompletedAt is the completion timestamp, RFC 3339.
	CompletedAt string `json:"completed_at" msgpack:"completed_at"`
}

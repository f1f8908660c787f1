package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pithecene-io/toggl-fetch/log"
)

// ReportsBaseURL is the reporting API base.
const ReportsBaseURL = "https://www.toggl.com/reports/api/v2/"

// DefaultOrderField is the grouping column reports are sorted by.
const DefaultOrderField = "title"

// SummaryRequest parameterizes a summary report.
type SummaryRequest struct {
	// WorkspaceID selects the workspace.
	WorkspaceID int64
	// Since and Until are ISO 8601 dates (no time component), inclusive.
	Since string
	Until string
	// OrderField selects the sort column (default DefaultOrderField).
	OrderField string
	// Params are additional query parameters passed through verbatim.
	Params url.Values
}

func (r SummaryRequest) values() url.Values {
	order := r.OrderField
	if order == "" {
		order = DefaultOrderField
	}
	out := url.Values{
		"workspace_id": []string{strconv.FormatInt(r.WorkspaceID, 10)},
		"since":        []string{r.Since},
		"until":        []string{r.Until},
		"order_field":  []string{order},
	}
	for k, v := range r.Params {
		out[k] = v
	}
	return out
}

// CurrencyTotal is a per-currency amount in a summary report.
type CurrencyTotal struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// SummaryItem is a single row within a summary group.
type SummaryItem struct {
	Title map[string]string `json:"title"`
	Time  int64             `json:"time"`
	Cur   string            `json:"cur,omitempty"`
	Sum   float64           `json:"sum,omitempty"`
	Rate  float64           `json:"rate,omitempty"`
}

// SummaryGroup is one grouping bucket (project, client or user) in a
// summary report.
type SummaryGroup struct {
	ID              *int64            `json:"id"`
	Title           map[string]string `json:"title"`
	Time            int64             `json:"time"`
	TotalCurrencies []CurrencyTotal   `json:"total_currencies"`
	Items           []SummaryItem     `json:"items"`
}

// SummaryReport is the parsed JSON form of a summary report. Durations are
// milliseconds.
type SummaryReport struct {
	TotalGrand      int64           `json:"total_grand"`
	TotalBillable   int64           `json:"total_billable"`
	TotalCurrencies []CurrencyTotal `json:"total_currencies"`
	Data            []SummaryGroup  `json:"data"`
}

// Reports is the reporting API facade: the summary export in parsed JSON or
// binary PDF form.
type Reports struct {
	client *Client
}

// NewReports creates a reporting client using the registry session for cred.
// Server warnings are logged through logger (nil disables warning logs).
func NewReports(reg *SessionRegistry, cred Credential, logger *log.Logger, opts Options) *Reports {
	return &Reports{
		client: newClient(ReportsBaseURL, reg.Session(cred), checkReportsResponse(logger), opts),
	}
}

// Summary fetches the summary report as parsed JSON.
func (r *Reports) Summary(ctx context.Context, req SummaryRequest) (*SummaryReport, error) {
	var report SummaryReport
	if err := r.client.getJSON(ctx, "summary", req.values(), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SummaryPDF fetches the summary report as raw PDF bytes.
func (r *Reports) SummaryPDF(ctx context.Context, req SummaryRequest) ([]byte, error) {
	return r.client.get(ctx, "summary.pdf", req.values())
}

// remoteError is the structured error body the reporting surface returns.
type remoteError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Tip     string `json:"tip"`
}

// checkReportsResponse builds the reporting surface classifier. A Warning
// header is logged non-fatally before any status check; a structured error
// body fails the request even when the status looks successful.
func checkReportsResponse(logger *log.Logger) CheckResponse {
	return func(r *Response) error {
		if w := r.Header.Get("Warning"); w != "" && logger != nil {
			logger.Warn("server warning", map[string]any{
				"url":           r.URL,
				"requested_url": r.RequestURL,
				"warning":       w,
			})
		}

		if r.Status == http.StatusTooManyRequests {
			return &Error{Kind: ErrRateLimited, Surface: surfaceReports, Status: r.Status, Message: "request limit reached"}
		}

		var envelope struct {
			Error *remoteError `json:"error"`
		}
		if err := json.Unmarshal(r.Body, &envelope); err == nil && envelope.Error != nil {
			return &Error{
				Surface: surfaceReports,
				Status:  r.Status,
				Code:    envelope.Error.Code,
				Message: envelope.Error.Message,
				Tip:     envelope.Error.Tip,
			}
		}

		if r.Status >= 400 {
			return &Error{Surface: surfaceReports, Status: r.Status}
		}

		return nil
	}
}

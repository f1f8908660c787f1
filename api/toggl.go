package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// APIBaseURL is the metadata API base.
const APIBaseURL = "https://www.toggl.com/api/v8/"

// Workspace is a named grouping entity under which time entries and reports
// are organized.
type Workspace struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Premium bool   `json:"premium"`
	At      string `json:"at,omitempty"`
}

// UserInfo is the authenticated user's profile as returned by GET me.
type UserInfo struct {
	Since int64    `json:"since"`
	Data  UserData `json:"data"`
}

// UserData holds the profile fields this tool consumes.
type UserData struct {
	ID               int64       `json:"id"`
	Email            string      `json:"email"`
	Fullname         string      `json:"fullname"`
	Timezone         string      `json:"timezone"`
	DefaultWorkspace int64       `json:"default_wid"`
	Workspaces       []Workspace `json:"workspaces"`
}

// WorkspaceByName scans the profile's workspace list for an exact,
// case-sensitive name match. The second return value is false when no
// workspace matches.
func (u *UserInfo) WorkspaceByName(name string) (Workspace, bool) {
	for _, ws := range u.Data.Workspaces {
		if ws.Name == name {
			return ws, true
		}
	}
	return Workspace{}, false
}

// Toggl is the metadata API facade: user profile and workspace listing.
type Toggl struct {
	client *Client
}

// NewToggl creates a metadata client using the registry session for cred.
func NewToggl(reg *SessionRegistry, cred Credential, opts Options) *Toggl {
	return &Toggl{
		client: newClient(APIBaseURL, reg.Session(cred), checkAPIResponse, opts),
	}
}

// UserInfo fetches the authenticated user's profile, including the workspace
// list and the account timezone name.
func (t *Toggl) UserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	params := url.Values{"with_related_data": []string{"true"}}
	if err := t.client.getJSON(ctx, "me", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Workspaces lists the workspaces the authenticated user belongs to.
func (t *Toggl) Workspaces(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	if err := t.client.getJSON(ctx, "workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkAPIResponse classifies metadata surface responses. The surface
// reports 404 failures as a JSON array of messages.
func checkAPIResponse(r *Response) error {
	switch {
	case r.Status == http.StatusNotFound:
		var msgs []string
		if err := json.Unmarshal(r.Body, &msgs); err == nil && len(msgs) > 0 {
			return &Error{Surface: surfaceAPI, Status: r.Status, Message: strings.Join(msgs, "; ")}
		}
		return &Error{Surface: surfaceAPI, Status: r.Status}

	case r.Status == http.StatusForbidden:
		return &Error{Kind: ErrAuthentication, Surface: surfaceAPI, Status: r.Status, Message: "invalid API token"}

	case r.Status == http.StatusTooManyRequests:
		return &Error{Kind: ErrRateLimited, Surface: surfaceAPI, Status: r.Status, Message: "request limit reached"}

	case r.Status >= 400:
		return &Error{Surface: surfaceAPI, Status: r.Status}
	}

	return nil
}

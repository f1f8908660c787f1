package api

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pithecene-io/toggl-fetch/types"
)

// UserAgent is the product identifier sent with every request, both as the
// User-Agent header and as the user_agent query parameter Toggl asks
// integrations to provide. Versioned in lockstep with types.Version.
const UserAgent = "toggl-fetch/" + types.Version + " (+https://github.com/pithecene-io/toggl-fetch)"

// authPassword is the fixed basic-auth password Toggl expects when the
// username is an API token.
const authPassword = "api_token"

// DefaultTimeout is the default per-request timeout. Report generation can
// take a while on large workspaces.
const DefaultTimeout = 30 * time.Second

// Credential identifies an account. Immutable; used as the registry key.
type Credential struct {
	// Token is the Toggl API token.
	Token string
}

// Session is the per-credential transport state: one HTTP client plus the
// default headers and query parameters applied to every request.
// Sessions are created by a SessionRegistry and never mutated afterwards.
type Session struct {
	client     *http.Client
	credential Credential
	userAgent  string
	params     url.Values
}

// apply sets the session's authentication and identity headers on req.
func (s *Session) apply(req *http.Request) {
	req.SetBasicAuth(s.credential.Token, authPassword)
	req.Header.Set("User-Agent", s.userAgent)
}

// defaultParams returns a copy of the session's default query parameters.
func (s *Session) defaultParams() url.Values {
	out := make(url.Values, len(s.params))
	for k, v := range s.params {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// RegistryConfig configures a SessionRegistry.
type RegistryConfig struct {
	// Timeout is the per-request timeout for sessions created by this
	// registry (default DefaultTimeout).
	Timeout time.Duration
	// BaseAgent is an optional pre-existing client identifier. When set,
	// the product identifier is prefixed onto it, mirroring how the tool
	// identifies itself when embedded.
	BaseAgent string
}

// SessionRegistry hands out one Session per credential, creating it lazily
// on first use and returning the same instance afterwards. No eviction; the
// registry lives for the process lifetime. Owned by the command layer and
// passed to clients explicitly.
type SessionRegistry struct {
	mu       sync.Mutex
	config   RegistryConfig
	sessions map[Credential]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(cfg RegistryConfig) *SessionRegistry {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SessionRegistry{
		config:   cfg,
		sessions: make(map[Credential]*Session),
	}
}

// Session returns the session for cred, constructing it on first use.
func (r *SessionRegistry) Session(cred Credential) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[cred]; ok {
		return s
	}

	agent := UserAgent
	if r.config.BaseAgent != "" {
		agent += " " + r.config.BaseAgent
	}

	s := &Session{
		client:     &http.Client{Timeout: r.config.Timeout},
		credential: cred,
		userAgent:  agent,
		params:     url.Values{"user_agent": []string{UserAgent}},
	}
	r.sessions[cred] = s
	return s
}

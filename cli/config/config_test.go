package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"

	"github.com/pithecene-io/toggl-fetch/notify"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `api_token: secret-token
workspace: ACME
output: reports/summary_{end_date:%Y}-{end_date:%m}.pdf
order_field: duration
no_update: true
timeout: 30s

retry:
  attempts: 5
  delay: 2s

storage:
  region: us-east-1
  endpoint: https://example.com
  path_style: true

notify:
  url: https://hooks.example.com/toggl
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Top-level fields
	assertEqual(t, "api_token", cfg.APIToken, "secret-token")
	assertEqual(t, "workspace", cfg.Workspace, "ACME")
	assertEqual(t, "output", cfg.Output, "reports/summary_{end_date:%Y}-{end_date:%m}.pdf")
	assertEqual(t, "order_field", cfg.OrderField, "duration")
	if !cfg.NoUpdate {
		t.Error("expected no_update=true")
	}
	if cfg.Timeout.Duration != 30*time.Second {
		t.Errorf("expected timeout=30s, got %v", cfg.Timeout.Duration)
	}

	// Retry
	if cfg.Retry.Attempts != 5 {
		t.Errorf("expected retry.attempts=5, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Delay.Duration != 2*time.Second {
		t.Errorf("expected retry.delay=2s, got %v", cfg.Retry.Delay.Duration)
	}

	// Storage
	assertEqual(t, "storage.region", cfg.Storage.Region, "us-east-1")
	assertEqual(t, "storage.endpoint", cfg.Storage.Endpoint, "https://example.com")
	if !cfg.Storage.PathStyle {
		t.Error("expected storage.path_style=true")
	}

	// Notify
	assertEqual(t, "notify.url", cfg.Notify.URL, "https://hooks.example.com/toggl")
	if cfg.Notify.Timeout.Duration != 10*time.Second {
		t.Errorf("expected notify.timeout=10s, got %v", cfg.Notify.Timeout.Duration)
	}
	if cfg.Notify.Retries == nil || *cfg.Notify.Retries != 3 {
		t.Errorf("expected notify.retries=3")
	}
	if cfg.Notify.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("expected Authorization header")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIToken != "" {
		t.Errorf("expected empty api_token, got %q", cfg.APIToken)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_TOKEN", "expanded-token")

	yaml := `api_token: ${TEST_TOKEN}`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "api_token", cfg.APIToken, "expanded-token")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	yaml := `api_token: secret
bogus_key: should_fail
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_UnknownNestedKeyRejected(t *testing.T) {
	yaml := `storage:
  region: us-east-1
  unknown_field: bad
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown nested key, got nil")
	}
	if !strings.Contains(err.Error(), "unknown_field") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_WhitespaceOnlyConfig(t *testing.T) {
	path := writeTemp(t, "   \n  \n  \n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed for whitespace-only config: %v", err)
	}
	if cfg.APIToken != "" {
		t.Errorf("expected empty api_token, got %q", cfg.APIToken)
	}
}

func TestLoad_CommentsOnlyConfig(t *testing.T) {
	path := writeTemp(t, "# This is a comment\n# Another comment\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed for comments-only config: %v", err)
	}
	if cfg.APIToken != "" {
		t.Errorf("expected empty api_token, got %q", cfg.APIToken)
	}
}

func TestLoad_RetriesZeroDistinctFromNil(t *testing.T) {
	// retries: 0 should parse as *int(0), not nil.
	yaml := `notify:
  url: https://example.com
  retries: 0
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notify.Retries == nil {
		t.Fatal("expected retries to be non-nil (*int(0)), got nil")
	}
	if *cfg.Notify.Retries != 0 {
		t.Errorf("expected retries=0, got %d", *cfg.Notify.Retries)
	}
}

func TestLoad_RetriesOmittedIsNil(t *testing.T) {
	// Omitting retries should leave the pointer nil.
	yaml := `notify:
  url: https://example.com
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notify.Retries != nil {
		t.Errorf("expected retries to be nil, got %d", *cfg.Notify.Retries)
	}
}

func TestDuration_InvalidFormat(t *testing.T) {
	yaml := `timeout: not-a-duration`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error should mention invalid duration, got: %v", err)
	}
}

func TestDuration_EmptyIsZero(t *testing.T) {
	yaml := `notify:
  url: https://example.com
  timeout: ""
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notify.Timeout.Duration != 0 {
		t.Errorf("expected zero duration, got %v", cfg.Notify.Timeout.Duration)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	path := writeTemp(t, "timeout: 30s")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timeout.Duration != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.Timeout.Duration)
	}
}

func TestS3_Conversion(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			Region:    "eu-central-1",
			Endpoint:  "https://minio.example.com",
			PathStyle: true,
		},
	}

	s3 := cfg.S3()
	assertEqual(t, "region", s3.Region, "eu-central-1")
	assertEqual(t, "endpoint", s3.Endpoint, "https://minio.example.com")
	if !s3.UsePathStyle {
		t.Error("expected path-style addressing")
	}
}

func TestWebhook_Conversion(t *testing.T) {
	retries := 5
	cfg := &Config{
		Notify: NotifyConfig{
			URL:     "https://hooks.example.com/toggl",
			Headers: map[string]string{"X-Token": "abc"},
			Timeout: Duration{2 * time.Second},
			Retries: &retries,
		},
	}

	wc := cfg.Webhook()
	assertEqual(t, "url", wc.URL, "https://hooks.example.com/toggl")
	assertEqual(t, "headers", wc.Headers["X-Token"], "abc")
	if wc.Timeout != 2*time.Second {
		t.Errorf("expected timeout=2s, got %v", wc.Timeout)
	}
	if wc.Retries != 5 {
		t.Errorf("expected retries=5, got %d", wc.Retries)
	}
}

func TestWebhook_NilRetriesUsesDefault(t *testing.T) {
	cfg := &Config{Notify: NotifyConfig{URL: "https://example.com"}}
	if got := cfg.Webhook().Retries; got != notify.DefaultRetries {
		t.Errorf("expected default retries %d, got %d", notify.DefaultRetries, got)
	}
}

func TestWebhook_ZeroRetriesDisables(t *testing.T) {
	zero := 0
	cfg := &Config{Notify: NotifyConfig{URL: "https://example.com", Retries: &zero}}
	if got := cfg.Webhook().Retries; got != 0 {
		t.Errorf("expected retries=0, got %d", got)
	}
}

func TestLoadDefault_MissingConfigIsNotError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if cfg.APIToken != "" {
		t.Errorf("expected zero config, got api_token %q", cfg.APIToken)
	}
}

func TestLoadDefault_ReadsXDGConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()

	dir := filepath.Join(home, "toggl-fetch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("workspace: ACME\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := DefaultPath(); got != filepath.Join(dir, "config.yml") {
		t.Errorf("DefaultPath = %q, want %q", got, filepath.Join(dir, "config.yml"))
	}

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	assertEqual(t, "workspace", cfg.Workspace, "ACME")
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/toggl-fetch/cli/config"
	"github.com/pithecene-io/toggl-fetch/log"
	"github.com/pithecene-io/toggl-fetch/types"
)

// defaultTemplateStem is the built-in output template without its extension;
// the extension follows the selected report format.
const defaultTemplateStem = "summary_{end_date:%Y}-{end_date:%m}"

// DefaultTemplate is the output path template used when neither --output nor
// the config file provide one, in its PDF form.
const DefaultTemplate = defaultTemplateStem + ".pdf"

// loadConfig loads the config file. An explicit --config path must exist;
// the default XDG search treats a missing file as an empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// buildLogger selects the log level: --verbose wins, then TOGGL_FETCH_LOGLVL,
// then info.
func buildLogger(c *cli.Context, env *config.Env) (*log.Logger, error) {
	if c.Bool("verbose") {
		return log.New(zapcore.DebugLevel), nil
	}
	level, err := log.ParseLevel(env.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid TOGGL_FETCH_LOGLVL: %w", err)
	}
	return log.New(level), nil
}

// resolveString applies the flag > environment > config file > default
// precedence. The flag wins only when set on the command line, so an empty
// flag default cannot shadow the other sources.
func resolveString(c *cli.Context, name, envValue, fileValue, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if envValue != "" {
		return envValue
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

// parseDateFlag parses a date flag leniently. A value without a zone is
// interpreted in the local zone. An unset flag returns nil.
func parseDateFlag(c *cli.Context, name string) (*time.Time, error) {
	raw := c.String(name)
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value %q: %v", name, raw, err)
	}
	return &t, nil
}

// settings holds the merged fetch options after precedence resolution.
type settings struct {
	apiToken   string
	workspace  string
	template   string
	orderField string
	format     types.ReportFormat
	force      bool
	noUpdate   bool
	startDate  *time.Time
	endDate    *time.Time
}

// resolveSettings merges flags, environment, and config file into the
// effective fetch settings, and validates the required ones.
func resolveSettings(c *cli.Context, env *config.Env, cfg *config.Config) (settings, error) {
	s := settings{
		apiToken:   resolveString(c, "api-token", env.APIToken, cfg.APIToken, ""),
		workspace:  resolveString(c, "workspace", env.Workspace, cfg.Workspace, ""),
		orderField: resolveString(c, "order-field", "", cfg.OrderField, ""),
		force:      c.Bool("force"),
		noUpdate:   c.Bool("no-update") || cfg.NoUpdate,
	}

	s.format = types.FormatPDF
	if c.Bool("json") {
		s.format = types.FormatJSON
	}
	// The built-in template's extension follows the format; explicit
	// templates are taken as given.
	s.template = resolveString(c, "output", "", cfg.Output, defaultTemplateStem+s.format.Ext())

	if s.apiToken == "" {
		return s, errors.New("API token is required: set --api-token, TOGGL_FETCH_API_TOKEN, or api_token in the config file")
	}
	if s.workspace == "" {
		return s, errors.New("workspace is required: set --workspace, TOGGL_FETCH_WORKSPACE, or workspace in the config file")
	}

	start, err := parseDateFlag(c, "start-date")
	if err != nil {
		return s, err
	}
	s.startDate = start

	end, err := parseDateFlag(c, "end-date")
	if err != nil {
		return s, err
	}
	s.endDate = end

	return s, nil
}

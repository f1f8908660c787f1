package fetch

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/toggl-fetch/api"
)

// Process exit codes. Every failure category maps to exactly one code so
// scripts wrapping the tool can dispatch on $?.
const (
	ExitOK       = 0 // fetch completed
	ExitArgs     = 1 // invalid arguments (unknown workspace, bad template)
	ExitConfig   = 2 // invalid configuration file
	ExitAPI      = 3 // remote API failure
	ExitInternal = 4 // local state or timezone failure
	ExitOutput   = 5 // output destination failure
)

// Step names the pipeline stage a fetch failed in.
type Step string

// Pipeline steps in execution order.
const (
	StepUserInfo  Step = "user lookup"
	StepWorkspace Step = "workspace selection"
	StepRange     Step = "date range resolution"
	StepTemplate  Step = "output template"
	StepOutput    Step = "output destination"
	StepFetch     Step = "report fetch"
	StepWrite     Step = "artifact write"
	StepState     Step = "state update"
)

// StepError wraps a failure with the pipeline step it occurred in. The step
// determines the process exit code; the wrapped error keeps the taxonomy
// (api.Error etc.) reachable through errors.As.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCodeFor maps an Execute error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var step *StepError
	if errors.As(err, &step) {
		switch step.Step {
		case StepWorkspace, StepTemplate:
			return ExitArgs
		case StepUserInfo, StepFetch:
			return ExitAPI
		case StepOutput, StepWrite:
			return ExitOutput
		default:
			return ExitInternal
		}
	}

	// Bare API errors surface when callers hit the client outside Execute.
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return ExitAPI
	}
	return ExitInternal
}

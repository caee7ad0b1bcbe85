package fab

import (
	"errors"
	"fmt"
)

// Step identifies a stage of an export run.
type Step string

const (
	StepSetup     Step = "setup"
	StepGerber    Step = "gerber"
	StepBOM       Step = "bom"
	StepPlacement Step = "placement"
)

// ExportFailure wraps any host or filesystem error that aborted a run.
type ExportFailure struct {
	Step Step
	Err  error
}

func (e *ExportFailure) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Step, e.Err)
}

func (e *ExportFailure) Unwrap() error {
	return e.Err
}

// Result is the outcome of one export run: either a success summary or a
// failure carrying the error that stopped it.
type Result struct {
	OutputDir     string
	Layers        []string // tokens of the plotted Gerber layers
	BOMFile       string
	BOMRows       int
	PlacementFile string
	PlacementRows int

	Err error // nil on success, *ExportFailure otherwise
}

// OK reports whether the run completed every step.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns the failure message, or "" for a successful run.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// FailedStep returns the step that aborted the run, if any.
func (r Result) FailedStep() (Step, bool) {
	var failure *ExportFailure
	if errors.As(r.Err, &failure) {
		return failure.Step, true
	}
	return "", false
}

func failed(r Result, step Step, err error) Result {
	r.Err = &ExportFailure{Step: step, Err: err}
	return r
}

package pipeline

import "fmt"

// Kind classifies which pipeline step a failure belongs to.
type Kind string

const (
	// KindBuild is a compiler toolchain failure.
	KindBuild Kind = "build"
	// KindVerify is a compiled-artifact validation failure.
	KindVerify Kind = "verify"
	// KindBindgen is a bindings generator failure.
	KindBindgen Kind = "bindgen"
	// KindStage is a static asset staging failure.
	KindStage Kind = "stage"
	// KindServe is a failure to launch the static file server.
	KindServe Kind = "serve"
)

// StepError wraps the failure of one pipeline step, carrying the external
// process's exit code and captured stderr where available.
type StepError struct {
	Step     string
	Kind     Kind
	ExitCode int
	Stderr   string
	Err      error
}

func (e *StepError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s failed (exit %d): %v", e.Step, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

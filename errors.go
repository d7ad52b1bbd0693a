package lod

import (
	"errors"
	"fmt"
)

// Program errors. A failed Program.Execute always returns a *ProgramError
// whose Kind is one of these.
var (
	// ErrIO indicates the program could not be spawned or its output read
	ErrIO = errors.New("lod: program i/o")

	// ErrNoStatusCode indicates the program ended without a resolvable exit
	// code, for example because it was killed by a signal
	ErrNoStatusCode = errors.New("lod: no status code")

	// ErrUnexpectedStatusCode indicates the program exited with a code other
	// than the expected one
	ErrUnexpectedStatusCode = errors.New("lod: unexpected status code")
)

// Config and platform errors
var (
	// ErrMissingKey indicates a required key is absent from config.toml
	ErrMissingKey = errors.New("lod: config key missing")

	// ErrMalformedKey indicates a config key has the wrong type
	ErrMalformedKey = errors.New("lod: config key malformed")

	// ErrConfigNotDir indicates the config directory path is not a directory
	ErrConfigNotDir = errors.New("lod: config dir is not a directory")

	// ErrConfigNotFile indicates the config file path is not a regular file
	ErrConfigNotFile = errors.New("lod: config path is not a file")

	// ErrDetectUnsupported indicates mode detection is unavailable on this platform
	ErrDetectUnsupported = errors.New("lod: mode detection not supported on this platform")

	// ErrUnexpectedAutohide indicates the Dock autohide preference could not be parsed
	ErrUnexpectedAutohide = errors.New("lod: unexpected autohide value")

	// ErrSupervisorStopped indicates the supervisor no longer accepts work
	ErrSupervisorStopped = errors.New("lod: supervisor stopped")
)

// ProgramError describes why running an external program failed
type ProgramError struct {
	// Program is the name of the program that was run
	Program string
	// Kind is ErrIO, ErrNoStatusCode or ErrUnexpectedStatusCode
	Kind error
	// Output is the captured output, set only for ErrUnexpectedStatusCode
	Output *Output
	// Err is the underlying cause, set only for ErrIO
	Err error
}

// Error returns a formatted error message
func (e *ProgramError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUnexpectedStatusCode) && e.Output != nil:
		return fmt.Sprintf("%s: unexpected status code: %d", e.Program, e.Output.StatusCode)
	case errors.Is(e.Kind, ErrNoStatusCode):
		return fmt.Sprintf("%s: unable to get status code", e.Program)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Program, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Program, e.Kind)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is matches ErrIO as well as e.g. exec.ErrNotFound
func (e *ProgramError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Detail renders the error together with any captured output. The exit
// status alone rarely explains a failure.
func (e *ProgramError) Detail() string {
	if e.Output == nil {
		return e.Error()
	}
	return fmt.Sprintf("%s | stdout: %q | stderr: %q",
		e.Error(), string(e.Output.Stdout), string(e.Output.Stderr))
}

// ConfigError represents an error loading or materialising the configuration
type ConfigError struct {
	// Key is the config key involved, if any
	Key string
	// Path is the file path involved
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("lod config %q in %q: %v", e.Key, e.Path, e.Err)
	}
	return fmt.Sprintf("lod config %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from teardown
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Unwrap returns the accumulated errors for errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
